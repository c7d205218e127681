package types

import (
	"io"
	"time"
)

// Document represents a file uploaded in support of an application
type Document struct {
	ID            string           `db:"id" json:"id"`
	ApplicationID string           `db:"application_id" json:"applicationId"`
	Category      DocumentCategory `db:"category" json:"category"`
	FileName      string           `db:"file_name" json:"fileName"`
	FileSizeBytes int64            `db:"file_size_bytes" json:"fileSizeBytes"`
	MimeType      string           `db:"mime_type" json:"mimeType"`
	StorageKey    string           `db:"storage_key" json:"storageKey"`
	Description   *string          `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
}

type DocumentCategory string

const (
	DocumentCategoryReference  DocumentCategory = "reference"
	DocumentCategoryEmployment DocumentCategory = "employment"
	DocumentCategoryCredit     DocumentCategory = "credit"
	DocumentCategoryAdditional DocumentCategory = "additional"
)

// DocumentCategories lists every category in upload order.
var DocumentCategories = []DocumentCategory{
	DocumentCategoryReference,
	DocumentCategoryEmployment,
	DocumentCategoryCredit,
	DocumentCategoryAdditional,
}

func (c DocumentCategory) Valid() bool {
	for _, v := range DocumentCategories {
		if c == v {
			return true
		}
	}
	return false
}

func (c DocumentCategory) Label() string {
	switch c {
	case DocumentCategoryReference:
		return "Reference letter"
	case DocumentCategoryEmployment:
		return "Employment verification"
	case DocumentCategoryCredit:
		return "Credit report"
	case DocumentCategoryAdditional:
		return "Additional document"
	default:
		return "Document"
	}
}

// UploadRequest is a single file headed for document storage.
type UploadRequest struct {
	ApplicationID string
	Category      DocumentCategory
	FileName      string
	SizeBytes     int64
	MimeType      string
	Description   string
	Body          io.Reader
}
