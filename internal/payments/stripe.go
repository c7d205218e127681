package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rentapply/pkg/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v84"
)

var (
	ErrInvalidClientSecret = errors.New("malformed payment intent client secret")
	ErrNoPaymentMethod     = errors.New("no card payment method provided")
)

type intentsAPI interface {
	Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
	Confirm(ctx context.Context, id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error)
}

// Stripe creates and confirms payment intents. It serves as both the
// payment authority and the processor of the workflow.
type Stripe struct {
	intents  intentsAPI
	currency string
	logger   logrus.FieldLogger
}

func NewStripe(secretKey, currency string, logger logrus.FieldLogger) *Stripe {
	sc := stripe.NewClient(secretKey)
	return newStripe(sc.V1PaymentIntents, currency, logger)
}

func newStripe(intents intentsAPI, currency string, logger logrus.FieldLogger) *Stripe {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &Stripe{intents: intents, currency: strings.ToLower(currency), logger: logger}
}

func (s *Stripe) CreateIntent(ctx context.Context, req types.IntentRequest) (*types.PaymentIntent, error) {

	method := req.Method
	if method == "" {
		method = types.PaymentMethodCard
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:             stripe.Int64(req.AmountCents),
		Currency:           stripe.String(s.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{method}),
		ReceiptEmail:       stripe.String(req.Recipient.Email),
		Description:        stripe.String("Rental application " + req.ApplicationID),
		Metadata: map[string]string{
			"application_id": req.ApplicationID,
			"recipient_type": string(req.Recipient.Type),
			"recipient_name": recipientName(req.Recipient),
		},
	}
	params.IdempotencyKey = stripe.String(uuid.NewString())

	intent, err := s.intents.Create(ctx, params)
	if err != nil {
		return nil, stripeError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": req.ApplicationID,
		"intent_id":      intent.ID,
		"amount_cents":   req.AmountCents,
	}).Info("payment intent created")

	return &types.PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil

}

func (s *Stripe) Confirm(ctx context.Context, clientSecret string, card types.CardPresentation) (*types.PaymentConfirmation, error) {

	intentID, err := IntentIDFromSecret(clientSecret)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(card.PaymentMethodID) == "" {
		return nil, ErrNoPaymentMethod
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(card.PaymentMethodID),
	}
	params.IdempotencyKey = stripe.String(uuid.NewString())

	intent, err := s.intents.Confirm(ctx, intentID, params)
	if err != nil {
		return nil, stripeError(err)
	}

	return &types.PaymentConfirmation{ID: intent.ID, Status: types.PaymentStatus(intent.Status)}, nil

}

// IntentIDFromSecret recovers the intent id from a client secret of the
// form {id}_secret_{token}.
func IntentIDFromSecret(secret string) (string, error) {
	id, _, ok := strings.Cut(secret, "_secret_")
	if !ok || id == "" {
		return "", ErrInvalidClientSecret
	}
	return id, nil
}

func recipientName(r types.Recipient) string {
	if r.Type == types.RecipientBusiness {
		return r.BusinessName
	}
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// stripeError keeps the processor message so it can be shown verbatim.
func stripeError(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Msg != "" {
		return fmt.Errorf("%s", serr.Msg)
	}
	return err
}
