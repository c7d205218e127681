package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// NanoidSize is the length of record, session and seed identifiers.
const NanoidSize = 32

// alphanumeric only, so ids can sit in object keys, cookies and paths as is
const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func NanoID() string {
	return NanoIDSize(NanoidSize)
}

// NanoIDSize returns an id of the given length. Sizes below one fall back
// to NanoidSize.
func NanoIDSize(size int) string {
	if size < 1 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(idAlphabet, size)
}
