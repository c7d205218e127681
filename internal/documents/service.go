package documents

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"rentapply/internal/utils"
	"rentapply/pkg/types"

	"github.com/sirupsen/logrus"
)

type objectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type documentRepository interface {
	DocumentByID(ctx context.Context, id string) (*types.Document, error)
	CreateDocument(ctx context.Context, doc *types.Document) error
	DocumentsByApplicationID(ctx context.Context, applicationID string) ([]types.Document, error)
}

// Service stores document bodies in object storage and their metadata in
// the database.
type Service struct {
	objects objectStore
	repo    documentRepository
	logger  logrus.FieldLogger
}

func NewService(objects objectStore, repo documentRepository, logger logrus.FieldLogger) *Service {
	return &Service{objects: objects, repo: repo, logger: logger}
}

// StorageKey builds the object key for a document.
func StorageKey(applicationID string, category types.DocumentCategory, fileName string) string {
	return fmt.Sprintf("applications/%s/%s/%s-%s", applicationID, category, utils.NanoIDSize(12), cleanFileName(fileName))
}

func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, name)
}

// Upload puts the body in object storage and records the document. The
// object is removed again when the record cannot be written.
func (s *Service) Upload(ctx context.Context, req types.UploadRequest) (*types.Document, error) {

	if req.ApplicationID == "" {
		return nil, fmt.Errorf("upload requires an application id")
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("unknown document category %q", req.Category)
	}

	key := StorageKey(req.ApplicationID, req.Category, req.FileName)

	err := s.objects.Put(ctx, key, req.Body, req.SizeBytes, req.MimeType)
	if err != nil {
		return nil, err
	}

	doc := &types.Document{
		ApplicationID: req.ApplicationID,
		Category:      req.Category,
		FileName:      req.FileName,
		FileSizeBytes: req.SizeBytes,
		MimeType:      req.MimeType,
		StorageKey:    key,
		Description:   utils.NonEmptyStringPtr(req.Description),
	}

	err = s.repo.CreateDocument(ctx, doc)
	if err != nil {
		if derr := s.objects.Delete(ctx, key); derr != nil {
			s.logger.WithError(derr).WithField("storage_key", key).Error("failed to remove orphaned document object")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": req.ApplicationID,
		"document_id":    doc.ID,
		"category":       req.Category,
	}).Info("document stored")

	return doc, nil
}

func (s *Service) List(ctx context.Context, applicationID string) ([]types.Document, error) {
	return s.repo.DocumentsByApplicationID(ctx, applicationID)
}

// Open returns a stored document with its body. Documents of other
// applications read as missing. The caller closes the body.
func (s *Service) Open(ctx context.Context, applicationID, documentID string) (*types.Document, io.ReadCloser, error) {
	doc, err := s.repo.DocumentByID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	if doc.ApplicationID != applicationID {
		return nil, nil, types.ErrDocumentNotFound
	}

	body, err := s.objects.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, err
	}

	return doc, body, nil
}
