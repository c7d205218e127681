package workflow

import (
	"errors"
	"fmt"
	"strings"

	"rentapply/pkg/types"
)

var (
	ErrInFlight         = errors.New("operation already in progress")
	ErrNoApplication    = errors.New("no application has been started")
	ErrMissingContext   = errors.New("property or applicant information is missing")
	ErrApplicationBound = errors.New("workflow is bound to a different application")
	ErrInvalidStep      = errors.New("invalid workflow step")
	ErrAlreadyApplied   = errors.New("an application for this property already exists")
	ErrNoFiles          = errors.New("no documents selected for upload")
	ErrUnknownCategory  = errors.New("unknown document category")
	ErrNoContract       = errors.New("no contract has been generated")
	ErrAlreadyPaid      = errors.New("payment has already been completed")

	ErrAgreementRequired   = errors.New("tenant agreement required")
	ErrMissingClientSecret = errors.New("payment intent returned no client secret")
)

// ValidationError is a local validation failure listing the missing fields.
type ValidationError struct {
	Missing []string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

func newValidationError(fieldErrs map[string]string) *ValidationError {
	return &ValidationError{Missing: MissingLabels(fieldErrs), Fields: fieldErrs}
}

// PaymentValidationError is the first failed payment check. Message is shown
// to the user as is.
type PaymentValidationError struct {
	Field   string
	Message string
}

func (e *PaymentValidationError) Error() string {
	return e.Message
}

// BackendError wraps a failed remote call. The remote message is surfaced
// verbatim.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ProcessorError is a failure reported by the payment processor.
type ProcessorError struct {
	Err error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("payment processor: %v", e.Err)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

func backendError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}

// UserMessage returns the message to show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	var pverr *PaymentValidationError
	var berr *BackendError
	var perr *ProcessorError

	switch {
	case errors.As(err, &verr):
		return "Please complete the required fields: " + strings.Join(verr.Missing, ", ")
	case errors.As(err, &pverr):
		return pverr.Message
	case errors.Is(err, ErrAgreementRequired):
		return "You must agree to sign the contract to proceed"
	case errors.Is(err, ErrMissingClientSecret):
		return "Unable to initialize payment. Please try again."
	case errors.Is(err, ErrAlreadyPaid):
		return "Your payment has already been completed."
	case errors.Is(err, ErrInFlight):
		return "This action is already in progress."
	case errors.Is(err, ErrMissingContext):
		return "Property or applicant information is missing. Please start the application again."
	case errors.Is(err, ErrNoApplication):
		return "Please submit your application details first."
	case errors.Is(err, types.ErrDuplicateApplication), errors.Is(err, ErrAlreadyApplied):
		return "You have already applied for this property."
	case errors.As(err, &berr):
		return berr.Err.Error()
	case errors.As(err, &perr):
		return perr.Err.Error()
	}

	return err.Error()
}
