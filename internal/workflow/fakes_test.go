package workflow

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"rentapply/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
)

// ----- test doubles -----

type fakeApps struct {
	CreateFn       func(ctx context.Context, app *types.Application) error
	UpdateFn       func(ctx context.Context, id string, patch *types.ApplicationPatch) error
	ApplicationFn  func(ctx context.Context, id string) (*types.Application, error)
	SetStatusFn    func(ctx context.Context, id string, status types.ApplicationStatus) error
	LatestActiveFn func(ctx context.Context, propertyID, applicantID string) (*types.Application, error)

	creates  int
	updates  []*types.ApplicationPatch
	statuses []types.ApplicationStatus
}

func (f *fakeApps) Create(ctx context.Context, app *types.Application) error {
	f.creates++
	if f.CreateFn != nil {
		return f.CreateFn(ctx, app)
	}
	app.ID = "app-1"
	return nil
}

func (f *fakeApps) Update(ctx context.Context, id string, patch *types.ApplicationPatch) error {
	f.updates = append(f.updates, patch)
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, id, patch)
	}
	return nil
}

func (f *fakeApps) Application(ctx context.Context, id string) (*types.Application, error) {
	if f.ApplicationFn != nil {
		return f.ApplicationFn(ctx, id)
	}
	return nil, types.ErrApplicationNotFound
}

func (f *fakeApps) SetStatus(ctx context.Context, id string, status types.ApplicationStatus) error {
	f.statuses = append(f.statuses, status)
	if f.SetStatusFn != nil {
		return f.SetStatusFn(ctx, id, status)
	}
	return nil
}

func (f *fakeApps) LatestActive(ctx context.Context, propertyID, applicantID string) (*types.Application, error) {
	if f.LatestActiveFn != nil {
		return f.LatestActiveFn(ctx, propertyID, applicantID)
	}
	return nil, types.ErrApplicationNotFound
}

// fakeDocs keeps uploaded documents in memory so List reflects what
// actually succeeded.
type fakeDocs struct {
	UploadFn func(ctx context.Context, req types.UploadRequest) (*types.Document, error)
	ListFn   func(ctx context.Context, applicationID string) ([]types.Document, error)

	stored  []types.Document
	uploads []string
}

func (f *fakeDocs) Upload(ctx context.Context, req types.UploadRequest) (*types.Document, error) {
	f.uploads = append(f.uploads, req.FileName)
	if f.UploadFn != nil {
		doc, err := f.UploadFn(ctx, req)
		if err != nil {
			return nil, err
		}
		f.stored = append(f.stored, *doc)
		return doc, nil
	}

	if req.Body != nil {
		if _, err := io.Copy(io.Discard, req.Body); err != nil {
			return nil, err
		}
	}

	doc := types.Document{
		ID:            "doc-" + req.FileName,
		ApplicationID: req.ApplicationID,
		Category:      req.Category,
		FileName:      req.FileName,
		FileSizeBytes: req.SizeBytes,
		MimeType:      req.MimeType,
	}
	f.stored = append(f.stored, doc)
	return &doc, nil
}

func (f *fakeDocs) List(ctx context.Context, applicationID string) ([]types.Document, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, applicationID)
	}
	out := make([]types.Document, 0, len(f.stored))
	for _, d := range f.stored {
		if d.ApplicationID == applicationID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeContracts struct {
	GenerateFn func(ctx context.Context, req types.GenerateContractRequest) (*types.Contract, error)
	SignFn     func(ctx context.Context, contractID string, sig types.TenantSignature) (*types.Contract, error)
	RenderFn   func(ctx context.Context, contractID string) (*types.ContractFile, error)

	generated []types.GenerateContractRequest
	signed    []types.TenantSignature
}

func (f *fakeContracts) Generate(ctx context.Context, req types.GenerateContractRequest) (*types.Contract, error) {
	f.generated = append(f.generated, req)
	if f.GenerateFn != nil {
		return f.GenerateFn(ctx, req)
	}
	return &types.Contract{
		ID:            "contract-1",
		ApplicationID: req.ApplicationID,
		FormSnapshot:  req.FormSnapshot,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        types.ContractStatusDraft,
	}, nil
}

func (f *fakeContracts) SignAsTenant(ctx context.Context, contractID string, sig types.TenantSignature) (*types.Contract, error) {
	f.signed = append(f.signed, sig)
	if f.SignFn != nil {
		return f.SignFn(ctx, contractID, sig)
	}
	return &types.Contract{
		ID:              contractID,
		Status:          types.ContractStatusTenantSigned,
		TenantSignature: &sig.Signature,
	}, nil
}

func (f *fakeContracts) RenderDownload(ctx context.Context, contractID string) (*types.ContractFile, error) {
	if f.RenderFn != nil {
		return f.RenderFn(ctx, contractID)
	}
	return &types.ContractFile{FileName: contractID + ".pdf", ContentType: "application/pdf", Body: []byte("%PDF")}, nil
}

type fakeAuthority struct {
	CreateIntentFn func(ctx context.Context, req types.IntentRequest) (*types.PaymentIntent, error)
	calls          []types.IntentRequest
}

func (f *fakeAuthority) CreateIntent(ctx context.Context, req types.IntentRequest) (*types.PaymentIntent, error) {
	f.calls = append(f.calls, req)
	if f.CreateIntentFn != nil {
		return f.CreateIntentFn(ctx, req)
	}
	return &types.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret_abc"}, nil
}

type fakeProcessor struct {
	ConfirmFn func(ctx context.Context, secret string, card types.CardPresentation) (*types.PaymentConfirmation, error)
	calls     int
}

func (f *fakeProcessor) Confirm(ctx context.Context, secret string, card types.CardPresentation) (*types.PaymentConfirmation, error) {
	f.calls++
	if f.ConfirmFn != nil {
		return f.ConfirmFn(ctx, secret, card)
	}
	return &types.PaymentConfirmation{ID: "pi_123", Status: types.PaymentStatusSucceeded}, nil
}

type fakeProperties struct {
	PropertyFn func(ctx context.Context, id string) (*types.Property, error)
}

func (f *fakeProperties) Property(ctx context.Context, id string) (*types.Property, error) {
	if f.PropertyFn != nil {
		return f.PropertyFn(ctx, id)
	}
	return &types.Property{
		ID:               id,
		Address:          "12 Elm St",
		City:             "Austin",
		State:            "TX",
		ZipCode:          "78701",
		MonthlyRentCents: 185000,
	}, nil
}

type recordedStep struct{ from, to Step }

type fakeRecorder struct {
	created   []string
	uploaded  map[bool]int
	contracts map[bool]int
	payments  []string
	steps     []recordedStep
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{uploaded: map[bool]int{}, contracts: map[bool]int{}}
}

func (r *fakeRecorder) ApplicationCreated(tier string) { r.created = append(r.created, tier) }
func (r *fakeRecorder) DocumentUploaded(_ types.DocumentCategory, ok bool) {
	r.uploaded[ok]++
}
func (r *fakeRecorder) ContractSigned(ok bool)        { r.contracts[ok]++ }
func (r *fakeRecorder) PaymentFinished(result string) { r.payments = append(r.payments, result) }
func (r *fakeRecorder) StepChanged(from, to Step) {
	r.steps = append(r.steps, recordedStep{from, to})
}

// ----- harness -----

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type harness struct {
	wf         *Workflow
	apps       *fakeApps
	docs       *fakeDocs
	contracts  *fakeContracts
	authority  *fakeAuthority
	processor  *fakeProcessor
	properties *fakeProperties
	recorder   *fakeRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger, _ := test.NewNullLogger()

	h := &harness{
		apps:       &fakeApps{},
		docs:       &fakeDocs{},
		contracts:  &fakeContracts{},
		authority:  &fakeAuthority{},
		processor:  &fakeProcessor{},
		properties: &fakeProperties{},
		recorder:   newFakeRecorder(),
	}

	h.wf = New(Deps{
		Properties:   h.properties,
		Applications: h.apps,
		Documents:    h.docs,
		Contracts:    h.contracts,
		Authority:    h.authority,
		Processor:    h.processor,
		Recorder:     h.recorder,
		Logger:       logger,
		Now:          func() time.Time { return fixedNow },
	}, &State{PropertyID: "prop-1", ApplicantID: "user-1"})

	return h
}

func completeFields() types.ApplicationFields {
	return types.ApplicationFields{
		FullName:      "Dana Reyes",
		Email:         "dana@example.com",
		Phone:         "555-0100",
		Occupation:    "Nurse",
		MonthlyIncome: "6,200",
		MoveInDate:    "2026-04-01",
	}
}

func pdfFile(name string) File {
	return File{Name: name, Size: 1024, ContentType: "application/pdf", Body: strings.NewReader("%PDF-1.7")}
}

var errRemote = errors.New("upstream unavailable")
