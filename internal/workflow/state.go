package workflow

import (
	"io"

	"rentapply/pkg/types"
)

type Step int

const (
	StepOverview Step = iota
	StepApplication
	StepContract
	StepPayment
)

var stepNames = [...]string{"overview", "application", "contract", "payment"}

func (s Step) Valid() bool {
	return s >= StepOverview && s <= StepPayment
}

func (s Step) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return stepNames[s]
}

// File is a document selected for upload. Body is consumed once.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// State is the workflow context shared by every coordinator of a session.
// It is plain data so it can be persisted between requests; selections,
// card details and in-flight flags only live for the current process.
type State struct {
	PropertyID  string          `json:"propertyId"`
	ApplicantID string          `json:"applicantId"`
	Property    *types.Property `json:"property,omitempty"`

	Step                  Step   `json:"step"`
	AlreadyApplied        bool   `json:"alreadyApplied"`
	ExistingApplicationID string `json:"existingApplicationId,omitempty"`

	ApplicationID     string                  `json:"applicationId,omitempty"`
	ApplicationStatus types.ApplicationStatus `json:"applicationStatus,omitempty"`
	Fields            types.ApplicationFields `json:"fields"`
	Documents         []types.Document        `json:"documents"`

	Selections map[types.DocumentCategory][]File `json:"-"`

	LeaseForm      types.LeaseForm `json:"leaseForm"`
	Contract       *types.Contract `json:"contract,omitempty"`
	ContractSigned bool            `json:"contractSigned"`

	Payment          types.PaymentForm   `json:"payment"`
	PaymentStatus    types.PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentCompleted bool                `json:"paymentCompleted"`

	Client types.ClientMeta `json:"client"`

	IsSubmitting        bool `json:"-"`
	IsSaving            bool `json:"-"`
	IsProcessingPayment bool `json:"-"`
}

// bindApplication records the application id. The id is written once;
// rebinding to a different id is refused.
func (s *State) bindApplication(id string) error {
	if s.ApplicationID != "" && s.ApplicationID != id {
		return ErrApplicationBound
	}
	s.ApplicationID = id
	return nil
}

func (s *State) hasContext() bool {
	return s.PropertyID != "" && s.ApplicantID != ""
}

// begin sets an in-flight flag and returns the func that clears it.
func begin(flag *bool) (func(), error) {
	if *flag {
		return nil, ErrInFlight
	}
	*flag = true
	return func() { *flag = false }, nil
}
