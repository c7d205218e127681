package workflow

import (
	"context"
	"mime"
	"strings"

	"rentapply/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	MaxFileSizeBytes    = 10 << 20
	MaxFilesPerCategory = 5
)

var documentMimeTypes = map[string]bool{}

func init() {
	for _, mt := range []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.oasis.opendocument.text",
		"application/rtf",
		"text/rtf",
		"text/plain",
	} {
		documentMimeTypes[mt] = true
	}
}

// AcceptFile reports whether f passes the pre-upload filter.
func AcceptFile(f File) bool {
	if f.Size < 0 || f.Size > MaxFileSizeBytes {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(f.ContentType)
	if err != nil {
		return false
	}

	return documentMimeTypes[mediaType] || strings.HasPrefix(mediaType, "image/")
}

// UploadResult is the outcome of a single file in a batch.
type UploadResult struct {
	Category types.DocumentCategory
	FileName string
	Document *types.Document
	Err      error
}

type BatchReport struct {
	ApplicationID string
	Results       []UploadResult
	Uploaded      int
	Failed        int

	// Documents is the authoritative list fetched after the batch.
	Documents []types.Document

	// ReconcileErr and StatusErr record failures of the follow-up calls
	// made after the uploads.
	ReconcileErr error
	StatusErr    error
}

// DocumentCoordinator collects categorized file selections and uploads them
// as one batch against the application record.
type DocumentCoordinator struct {
	state    *State
	records  *RecordManager
	apps     ApplicationService
	docs     DocumentService
	recorder Recorder
	logger   logrus.FieldLogger
}

// Add filters files and appends them to the category selection. Files that
// fail the filter are dropped silently. When the cap is exceeded the files
// already selected are kept and the overflow is dropped. It returns how many
// of the given files were retained and how many were dropped by the cap.
func (c *DocumentCoordinator) Add(category types.DocumentCategory, files []File) (accepted, dropped int, err error) {
	if !category.Valid() {
		return 0, 0, ErrUnknownCategory
	}

	if c.state.Selections == nil {
		c.state.Selections = make(map[types.DocumentCategory][]File)
	}

	filtered := make([]File, 0, len(files))
	for _, f := range files {
		if !AcceptFile(f) {
			c.logger.WithFields(logrus.Fields{
				"category":     category,
				"file_name":    f.Name,
				"size":         f.Size,
				"content_type": f.ContentType,
			}).Debug("excluding file from upload batch")
			continue
		}
		filtered = append(filtered, f)
	}

	existing := c.state.Selections[category]
	combined := append(append(make([]File, 0, len(existing)+len(filtered)), existing...), filtered...)
	if len(combined) > MaxFilesPerCategory {
		dropped = len(combined) - MaxFilesPerCategory
		combined = combined[:MaxFilesPerCategory]
	}

	c.state.Selections[category] = combined

	return len(filtered) - dropped, dropped, nil
}

// Selected returns the number of files selected per category.
func (c *DocumentCoordinator) Selected() map[types.DocumentCategory]int {
	out := make(map[types.DocumentCategory]int, len(types.DocumentCategories))
	for _, category := range types.DocumentCategories {
		out[category] = len(c.state.Selections[category])
	}
	return out
}

func (c *DocumentCoordinator) pending() int {
	total := 0
	for _, files := range c.state.Selections {
		total += len(files)
	}
	return total
}

// Clear empties the selection buffers.
func (c *DocumentCoordinator) Clear() {
	c.state.Selections = make(map[types.DocumentCategory][]File)
}

// Submit uploads every selected file, one at a time in category order. A
// failed file does not stop the batch. Afterwards the document list is
// re-fetched, the buffers are cleared and the application is moved to
// under_review whatever the tally.
func (c *DocumentCoordinator) Submit(ctx context.Context) (*BatchReport, error) {
	done, err := begin(&c.state.IsSubmitting)
	if err != nil {
		return nil, err
	}
	defer done()

	if c.pending() == 0 {
		return nil, ErrNoFiles
	}

	applicationID, err := c.records.CreateMinimal(ctx, c.state.Fields)
	if err != nil {
		return nil, err
	}

	logger := c.logger.WithField("application_id", applicationID)

	report := &BatchReport{ApplicationID: applicationID}
	for _, category := range types.DocumentCategories {
		for _, f := range c.state.Selections[category] {
			result := c.upload(ctx, applicationID, category, f)
			if result.Err != nil {
				report.Failed++
				logger.WithError(result.Err).WithFields(logrus.Fields{
					"category":  category,
					"file_name": f.Name,
				}).Error("failed to upload document")
			} else {
				report.Uploaded++
			}
			c.recorder.DocumentUploaded(category, result.Err == nil)
			report.Results = append(report.Results, result)
		}
	}

	// the follow-up calls run even when the caller has gone away
	ctx = context.WithoutCancel(ctx)

	docs, err := c.docs.List(ctx, applicationID)
	if err != nil {
		report.ReconcileErr = backendError("list documents", err)
		logger.WithError(err).Error("failed to reconcile document list after upload")
	} else {
		c.state.Documents = docs
		report.Documents = docs
	}

	c.Clear()

	err = c.apps.SetStatus(ctx, applicationID, types.ApplicationStatusUnderReview)
	if err != nil {
		report.StatusErr = backendError("set application status", err)
		logger.WithError(err).Error("failed to move application to under review")
	} else {
		c.state.ApplicationStatus = types.ApplicationStatusUnderReview
	}

	logger.WithFields(logrus.Fields{
		"uploaded": report.Uploaded,
		"failed":   report.Failed,
	}).Info("document batch complete")

	return report, nil
}

func (c *DocumentCoordinator) upload(ctx context.Context, applicationID string, category types.DocumentCategory, f File) UploadResult {
	result := UploadResult{Category: category, FileName: f.Name}

	doc, err := c.docs.Upload(ctx, types.UploadRequest{
		ApplicationID: applicationID,
		Category:      category,
		FileName:      f.Name,
		SizeBytes:     f.Size,
		MimeType:      f.ContentType,
		Description:   category.Label(),
		Body:          f.Body,
	})
	if err != nil {
		result.Err = backendError("upload "+f.Name, err)
		return result
	}

	result.Document = doc
	return result
}
