package types

import "errors"

var (
	ErrPropertyNotFound    = errors.New("property not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrContractNotFound    = errors.New("contract not found")

	// ErrDuplicateApplication is returned when a second non-withdrawn
	// application is created for the same property and applicant.
	ErrDuplicateApplication = errors.New("an active application already exists for this property")
)
