package workflow

import (
	"context"
	"errors"
	"time"

	"rentapply/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	tierMinimal = "minimal"
	tierFull    = "full"
)

// RecordManager owns the application record of the workflow: finding an
// existing one, creating it at either validation tier, saving drafts and
// loading it back for resumption.
type RecordManager struct {
	state    *State
	apps     ApplicationService
	docs     DocumentService
	recorder Recorder
	logger   logrus.FieldLogger
	now      func() time.Time
}

// FindExisting returns the most recent non-withdrawn application for the
// pair, or nil when there is none.
func (m *RecordManager) FindExisting(ctx context.Context, propertyID, applicantID string) (*types.Application, error) {
	app, err := m.apps.LatestActive(ctx, propertyID, applicantID)
	if errors.Is(err, types.ErrApplicationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, backendError("find existing application", err)
	}

	return app, nil
}

// CreateMinimal creates a draft record from name, email and phone so
// documents can be submitted before the full application. When the workflow
// already has a record its id is returned unchanged.
func (m *RecordManager) CreateMinimal(ctx context.Context, fields types.ApplicationFields) (string, error) {
	if m.state.ApplicationID != "" {
		return m.state.ApplicationID, nil
	}

	if errs := ValidateMinimal(fields); len(errs) > 0 {
		return "", newValidationError(errs)
	}

	if !m.state.hasContext() {
		return "", ErrMissingContext
	}

	if err := m.ensureNoActive(ctx); err != nil {
		return "", err
	}

	app := &types.Application{
		PropertyID:       m.state.PropertyID,
		ApplicantID:      m.state.ApplicantID,
		ApplicantProfile: profileFromFields(fields),
		Status:           types.ApplicationStatusDraft,
	}

	if err := m.apps.Create(ctx, app); err != nil {
		return "", backendError("create application", err)
	}

	if err := m.state.bindApplication(app.ID); err != nil {
		return "", err
	}
	m.state.ApplicationStatus = app.Status
	m.state.Fields = fields
	m.recorder.ApplicationCreated(tierMinimal)

	m.logger.WithField("application_id", app.ID).Info("created draft application")

	return app.ID, nil
}

// CreateFull validates the complete field set and submits the application.
// A record created earlier by document submission is updated in place.
func (m *RecordManager) CreateFull(ctx context.Context, fields types.ApplicationFields) (string, error) {
	done, err := begin(&m.state.IsSubmitting)
	if err != nil {
		return "", err
	}
	defer done()

	if errs := ValidateFull(fields); len(errs) > 0 {
		return "", newValidationError(errs)
	}

	if !m.state.hasContext() {
		m.logger.Warn("full submission attempted without property or applicant")
		return "", ErrMissingContext
	}

	now := m.now()
	submitted := types.ApplicationStatusSubmitted

	if id := m.state.ApplicationID; id != "" {
		patch := patchFromFields(fields)
		patch.Status = &submitted
		patch.SubmittedAt = &now

		if err := m.apps.Update(ctx, id, patch); err != nil {
			return "", backendError("submit application", err)
		}

		m.state.ApplicationStatus = submitted
		m.state.Fields = fields

		m.logger.WithField("application_id", id).Info("submitted existing application")

		return id, nil
	}

	if err := m.ensureNoActive(ctx); err != nil {
		return "", err
	}

	app := &types.Application{
		PropertyID:       m.state.PropertyID,
		ApplicantID:      m.state.ApplicantID,
		ApplicantProfile: profileFromFields(fields),
		Status:           submitted,
		SubmittedAt:      &now,
	}

	if err := m.apps.Create(ctx, app); err != nil {
		return "", backendError("create application", err)
	}

	if err := m.state.bindApplication(app.ID); err != nil {
		return "", err
	}
	m.state.ApplicationStatus = app.Status
	m.state.Fields = fields
	m.recorder.ApplicationCreated(tierFull)

	m.logger.WithField("application_id", app.ID).Info("created submitted application")

	return app.ID, nil
}

// SaveDraft writes the filled-in fields to the existing record. Only the
// minimal tier is checked.
func (m *RecordManager) SaveDraft(ctx context.Context, fields types.ApplicationFields) error {
	done, err := begin(&m.state.IsSaving)
	if err != nil {
		return err
	}
	defer done()

	if errs := ValidateMinimal(fields); len(errs) > 0 {
		return newValidationError(errs)
	}

	id := m.state.ApplicationID
	if id == "" {
		return ErrNoApplication
	}

	if err := m.apps.Update(ctx, id, patchFromFields(fields)); err != nil {
		return backendError("save draft", err)
	}

	m.state.Fields = fields

	return nil
}

// Load fetches the record and its documents and folds both into the state.
func (m *RecordManager) Load(ctx context.Context, applicationID string) (*types.Application, []types.Document, error) {
	app, err := m.apps.Application(ctx, applicationID)
	if err != nil {
		if errors.Is(err, types.ErrApplicationNotFound) {
			return nil, nil, err
		}
		return nil, nil, backendError("load application", err)
	}

	// a session only ever sees its own applicant's records, for its own
	// property
	if m.state.ApplicantID != "" && app.ApplicantID != m.state.ApplicantID {
		m.logger.WithField("application_id", applicationID).Warn("refusing to load application owned by another applicant")
		return nil, nil, types.ErrApplicationNotFound
	}
	if m.state.PropertyID != "" && app.PropertyID != m.state.PropertyID {
		m.logger.WithFields(logrus.Fields{
			"application_id": applicationID,
			"property_id":    m.state.PropertyID,
		}).Warn("refusing to load application for another property")
		return nil, nil, types.ErrApplicationNotFound
	}

	docs, err := m.docs.List(ctx, applicationID)
	if err != nil {
		return nil, nil, backendError("load documents", err)
	}

	if err := m.state.bindApplication(app.ID); err != nil {
		return nil, nil, err
	}

	if m.state.PropertyID == "" {
		m.state.PropertyID = app.PropertyID
	}
	if m.state.ApplicantID == "" {
		m.state.ApplicantID = app.ApplicantID
	}
	m.state.ApplicationStatus = app.Status
	m.state.Fields = fieldsFromApplication(app)
	m.state.ContractSigned = app.ContractSigned
	m.state.PaymentCompleted = app.PaymentCompleted
	m.state.Documents = docs

	return app, docs, nil
}

func (m *RecordManager) ensureNoActive(ctx context.Context) error {
	existing, err := m.FindExisting(ctx, m.state.PropertyID, m.state.ApplicantID)
	if err != nil {
		return err
	}
	if existing != nil {
		m.state.AlreadyApplied = true
		m.state.ExistingApplicationID = existing.ID
		return types.ErrDuplicateApplication
	}
	return nil
}
