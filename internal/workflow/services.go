package workflow

import (
	"context"

	"rentapply/pkg/types"
)

// The workflow talks to the outside world only through these interfaces.
// Concrete implementations live in internal/store, internal/documents,
// internal/contracts and internal/payments.

type PropertyLookup interface {
	Property(ctx context.Context, propertyID string) (*types.Property, error)
}

type ApplicationService interface {
	// Create persists app and sets app.ID.
	Create(ctx context.Context, app *types.Application) error
	Update(ctx context.Context, applicationID string, patch *types.ApplicationPatch) error
	Application(ctx context.Context, applicationID string) (*types.Application, error)
	SetStatus(ctx context.Context, applicationID string, status types.ApplicationStatus) error
	// LatestActive returns the most recent non-withdrawn application for the
	// pair, or types.ErrApplicationNotFound.
	LatestActive(ctx context.Context, propertyID, applicantID string) (*types.Application, error)
}

type DocumentService interface {
	Upload(ctx context.Context, req types.UploadRequest) (*types.Document, error)
	List(ctx context.Context, applicationID string) ([]types.Document, error)
}

type ContractService interface {
	Generate(ctx context.Context, req types.GenerateContractRequest) (*types.Contract, error)
	SignAsTenant(ctx context.Context, contractID string, sig types.TenantSignature) (*types.Contract, error)
	RenderDownload(ctx context.Context, contractID string) (*types.ContractFile, error)
}

// PaymentAuthority issues payment intents. It is the trusted side of the
// two-phase payment protocol.
type PaymentAuthority interface {
	CreateIntent(ctx context.Context, req types.IntentRequest) (*types.PaymentIntent, error)
}

// PaymentProcessor confirms an intent with the customer's card.
type PaymentProcessor interface {
	Confirm(ctx context.Context, clientSecret string, card types.CardPresentation) (*types.PaymentConfirmation, error)
}

// Recorder receives workflow outcomes for metrics.
type Recorder interface {
	ApplicationCreated(tier string)
	DocumentUploaded(category types.DocumentCategory, ok bool)
	ContractSigned(ok bool)
	PaymentFinished(result string)
	StepChanged(from, to Step)
}

type noopRecorder struct{}

func (noopRecorder) ApplicationCreated(string)                      {}
func (noopRecorder) DocumentUploaded(types.DocumentCategory, bool) {}
func (noopRecorder) ContractSigned(bool)                           {}
func (noopRecorder) PaymentFinished(string)                        {}
func (noopRecorder) StepChanged(Step, Step)                        {}
