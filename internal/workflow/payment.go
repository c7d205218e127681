package workflow

import (
	"context"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"

	"rentapply/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	paymentResultSucceeded = "succeeded"
	paymentResultPending   = "pending"
	paymentResultFailed    = "failed"
)

// ParseAmountCents parses a dollar amount such as "1,250.50" into cents.
func ParseAmountCents(raw string) (int64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse amount %q: not a number", raw)
	}
	return int64(math.Round(v * 100)), nil
}

// FormatCents renders cents as a plain dollar amount.
func FormatCents(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}

// ValidatePayment runs the payment checks in order and returns the first
// failure, or nil.
func ValidatePayment(form types.PaymentForm) *PaymentValidationError {
	email := strings.TrimSpace(form.RecipientEmail)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return &PaymentValidationError{Field: "recipient_email", Message: "Please enter a valid recipient email address."}
	}

	if email != strings.TrimSpace(form.ConfirmEmail) {
		return &PaymentValidationError{Field: "confirm_email", Message: "Recipient emails do not match."}
	}

	if !form.ComplianceAck {
		return &PaymentValidationError{Field: "compliance_ack", Message: "Please acknowledge the payment terms to continue."}
	}

	switch form.RecipientType {
	case types.RecipientBusiness:
		if strings.TrimSpace(form.BusinessName) == "" {
			return &PaymentValidationError{Field: "business_name", Message: "Business name is required."}
		}
	default:
		if strings.TrimSpace(form.FirstName) == "" || strings.TrimSpace(form.LastName) == "" {
			return &PaymentValidationError{Field: "first_name", Message: "First and last name are required."}
		}
	}

	cents, err := ParseAmountCents(form.Amount)
	if err != nil || cents <= 0 {
		return &PaymentValidationError{Field: "amount", Message: "Please enter a payment amount greater than zero."}
	}

	return nil
}

type PaymentResult struct {
	ConfirmationID string              `json:"confirmationId"`
	Status         types.PaymentStatus `json:"status"`
	Completed      bool                `json:"completed"`
	Message        string              `json:"message"`
}

// PaymentCoordinator validates the payment dialog and runs the two-phase
// intent/confirm protocol.
type PaymentCoordinator struct {
	state     *State
	apps      ApplicationService
	authority PaymentAuthority
	processor PaymentProcessor
	recorder  Recorder
	logger    logrus.FieldLogger
}

// Pay validates form and, when it passes, creates a payment intent and
// confirms it with the card. PaymentCompleted flips only on a succeeded
// confirmation; on any error the payment state is left as it was and form
// stays in the dialog. A workflow that has already paid is refused.
func (c *PaymentCoordinator) Pay(ctx context.Context, form types.PaymentForm) (*PaymentResult, error) {
	done, err := begin(&c.state.IsProcessingPayment)
	if err != nil {
		return nil, err
	}
	defer done()

	if c.state.PaymentCompleted {
		return nil, ErrAlreadyPaid
	}

	c.state.Payment = form

	if verr := ValidatePayment(form); verr != nil {
		return nil, verr
	}

	applicationID := c.state.ApplicationID
	if applicationID == "" {
		return nil, ErrNoApplication
	}

	method := form.Method
	if method == "" {
		method = types.PaymentMethodCard
	}

	// validated above
	cents, _ := ParseAmountCents(form.Amount)

	logger := c.logger.WithFields(logrus.Fields{
		"application_id": applicationID,
		"amount_cents":   cents,
	})

	intent, err := c.authority.CreateIntent(ctx, types.IntentRequest{
		ApplicationID: applicationID,
		Method:        method,
		AmountCents:   cents,
		Recipient: types.Recipient{
			Type:         form.RecipientType,
			FirstName:    strings.TrimSpace(form.FirstName),
			LastName:     strings.TrimSpace(form.LastName),
			BusinessName: strings.TrimSpace(form.BusinessName),
			Email:        strings.TrimSpace(form.RecipientEmail),
		},
	})
	if err != nil {
		c.recorder.PaymentFinished(paymentResultFailed)
		logger.WithError(err).Error("failed to create payment intent")
		return nil, backendError("create payment intent", err)
	}

	if intent == nil || intent.ClientSecret == "" {
		c.recorder.PaymentFinished(paymentResultFailed)
		logger.Error("payment intent returned without client secret")
		return nil, ErrMissingClientSecret
	}

	// once the intent exists the charge may go through, so confirmation and
	// its bookkeeping are not cut short by the caller going away
	ctx = context.WithoutCancel(ctx)

	confirmation, err := c.processor.Confirm(ctx, intent.ClientSecret, form.Card)
	if err != nil {
		c.recorder.PaymentFinished(paymentResultFailed)
		logger.WithError(err).Error("payment confirmation failed")
		return nil, &ProcessorError{Err: err}
	}
	if confirmation == nil {
		c.recorder.PaymentFinished(paymentResultFailed)
		return nil, &ProcessorError{Err: fmt.Errorf("no confirmation returned")}
	}

	result := &PaymentResult{
		ConfirmationID: confirmation.ID,
		Status:         confirmation.Status,
	}

	c.state.PaymentStatus = confirmation.Status

	if confirmation.Status != types.PaymentStatusSucceeded {
		c.recorder.PaymentFinished(paymentResultPending)
		result.Message = fmt.Sprintf("Payment status: %s. Please complete any additional steps requested by your bank.", confirmation.Status)
		logger.WithField("status", confirmation.Status).Warn("payment not completed")
		return result, nil
	}

	result.Completed = true
	result.Message = "Payment successful."
	c.state.PaymentCompleted = true
	c.state.Payment.Card = types.CardPresentation{}
	c.recorder.PaymentFinished(paymentResultSucceeded)

	// the payment authority is the system of record; a failure here only
	// leaves the application flag behind
	completed := true
	err = c.apps.Update(ctx, applicationID, &types.ApplicationPatch{PaymentCompleted: &completed})
	if err != nil {
		logger.WithError(err).Error("failed to record payment completion on application")
	}

	logger.WithField("confirmation_id", confirmation.ID).Info("payment completed")

	return result, nil
}
