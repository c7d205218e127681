package workflow

import (
	"context"
	"errors"
	"time"

	"rentapply/internal/utils"
	"rentapply/pkg/types"

	"github.com/sirupsen/logrus"
)

type Deps struct {
	Properties   PropertyLookup
	Applications ApplicationService
	Documents    DocumentService
	Contracts    ContractService
	Authority    PaymentAuthority
	Processor    PaymentProcessor
	Recorder     Recorder
	Logger       logrus.FieldLogger
	Now          func() time.Time
}

// Workflow bundles the state of one rental application session with the
// coordinators that operate on it.
type Workflow struct {
	State *State

	Steps     *StepController
	Records   *RecordManager
	Uploads   *DocumentCoordinator
	Contracts *ContractCoordinator
	Payments  *PaymentCoordinator

	properties PropertyLookup
	logger     logrus.FieldLogger
}

func New(deps Deps, state *State) *Workflow {
	if state == nil {
		state = new(State)
	}
	if deps.Recorder == nil {
		deps.Recorder = noopRecorder{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}

	records := &RecordManager{
		state:    state,
		apps:     deps.Applications,
		docs:     deps.Documents,
		recorder: deps.Recorder,
		logger:   deps.Logger.WithField("component", "records"),
		now:      deps.Now,
	}

	contracts := &ContractCoordinator{
		state:     state,
		contracts: deps.Contracts,
		recorder:  deps.Recorder,
		logger:    deps.Logger.WithField("component", "contracts"),
		now:       deps.Now,
	}

	return &Workflow{
		State:   state,
		Records: records,
		Steps: &StepController{
			state:     state,
			records:   records,
			contracts: contracts,
			recorder:  deps.Recorder,
			logger:    deps.Logger.WithField("component", "steps"),
		},
		Uploads: &DocumentCoordinator{
			state:    state,
			records:  records,
			apps:     deps.Applications,
			docs:     deps.Documents,
			recorder: deps.Recorder,
			logger:   deps.Logger.WithField("component", "uploads"),
		},
		Contracts: contracts,
		Payments: &PaymentCoordinator{
			state:     state,
			apps:      deps.Applications,
			authority: deps.Authority,
			processor: deps.Processor,
			recorder:  deps.Recorder,
			logger:    deps.Logger.WithField("component", "payments"),
		},
		properties: deps.Properties,
		logger:     deps.Logger,
	}
}

type StartRequest struct {
	PropertyID  string
	ApplicantID string

	// ResumeStep and ResumeApplicationID come from a deep link.
	ResumeStep          *Step
	ResumeApplicationID string
}

// Start begins or resumes the workflow. When the applicant already has an
// active application for the property and no resume id was given, the
// workflow stops at the already-applied view instead of entering the wizard.
func (w *Workflow) Start(ctx context.Context, req StartRequest) error {
	if req.PropertyID == "" || req.ApplicantID == "" {
		return ErrMissingContext
	}

	property, err := w.properties.Property(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, types.ErrPropertyNotFound) {
			return err
		}
		return backendError("load property", err)
	}

	w.State.PropertyID = property.ID
	w.State.ApplicantID = req.ApplicantID
	w.State.Property = property
	w.prefill(property)

	logger := w.logger.WithFields(logrus.Fields{
		"property_id":  property.ID,
		"applicant_id": req.ApplicantID,
	})

	if req.ResumeApplicationID == "" {
		existing, err := w.Records.FindExisting(ctx, property.ID, req.ApplicantID)
		if err != nil {
			return err
		}
		if existing != nil {
			w.State.AlreadyApplied = true
			w.State.ExistingApplicationID = existing.ID
			logger.WithField("application_id", existing.ID).Info("applicant already applied")
			return nil
		}
	}

	if req.ResumeStep == nil && req.ResumeApplicationID == "" {
		w.State.Step = StepOverview
		return nil
	}

	step := StepOverview
	if req.ResumeStep != nil {
		step = *req.ResumeStep
	}

	return w.Steps.Resume(ctx, step, req.ResumeApplicationID)
}

func (w *Workflow) prefill(p *types.Property) {
	lease := &w.State.LeaseForm
	if lease.PropertyAddress == "" {
		lease.PropertyAddress = p.FullAddress()
	}
	if lease.LandlordName == "" {
		lease.LandlordName = utils.PtrString(p.LandlordName)
	}
	if lease.MonthlyRent == "" && p.MonthlyRentCents > 0 {
		lease.MonthlyRent = FormatCents(p.MonthlyRentCents)
	}
	if lease.SecurityDeposit == "" && p.SecurityDepositCents > 0 {
		lease.SecurityDeposit = FormatCents(p.SecurityDepositCents)
	}
	if w.State.Payment.Amount == "" && p.MonthlyRentCents > 0 {
		w.State.Payment.Amount = FormatCents(p.MonthlyRentCents)
	}
}

const contractNotGenerated = "not_generated"

// View is the read model the presentation layer renders.
type View struct {
	Step                  string                         `json:"step"`
	StepIndex             int                            `json:"stepIndex"`
	AlreadyApplied        bool                           `json:"alreadyApplied"`
	ExistingApplicationID string                         `json:"existingApplicationId,omitempty"`
	Property              *types.Property                `json:"property,omitempty"`
	ApplicationID         string                         `json:"applicationId,omitempty"`
	ApplicationStatus     types.ApplicationStatus        `json:"applicationStatus,omitempty"`
	Fields                types.ApplicationFields        `json:"fields"`
	Documents             []types.Document               `json:"documents"`
	Selected              map[types.DocumentCategory]int `json:"selected"`
	LeaseForm             types.LeaseForm                `json:"leaseForm"`
	ContractState         string                         `json:"contractState"`
	Contract              *types.Contract                `json:"contract,omitempty"`
	ContractSigned        bool                           `json:"contractSigned"`
	Payment               types.PaymentForm              `json:"payment"`
	PaymentStatus         types.PaymentStatus            `json:"paymentStatus,omitempty"`
	PaymentCompleted      bool                           `json:"paymentCompleted"`
	CanGoBack             bool                           `json:"canGoBack"`
	CanGoNext             bool                           `json:"canGoNext"`
	Warning               string                         `json:"warning,omitempty"`
}

func (w *Workflow) View() View {
	s := w.State

	v := View{
		Step:                  s.Step.String(),
		StepIndex:             int(s.Step),
		AlreadyApplied:        s.AlreadyApplied,
		ExistingApplicationID: s.ExistingApplicationID,
		Property:              s.Property,
		ApplicationID:         s.ApplicationID,
		ApplicationStatus:     s.ApplicationStatus,
		Fields:                s.Fields,
		Documents:             s.Documents,
		Selected:              w.Uploads.Selected(),
		LeaseForm:             s.LeaseForm,
		ContractState:         contractNotGenerated,
		Contract:              s.Contract,
		ContractSigned:        s.ContractSigned,
		Payment:               s.Payment,
		PaymentStatus:         s.PaymentStatus,
		PaymentCompleted:      s.PaymentCompleted,
		CanGoBack:             !s.AlreadyApplied && s.Step > StepOverview,
		CanGoNext:             !s.AlreadyApplied && s.Step < StepPayment,
	}

	if s.Contract != nil {
		v.ContractState = string(s.Contract.Status)
	}
	if v.Documents == nil {
		v.Documents = []types.Document{}
	}

	return v
}
