package types

type RecipientType string

const (
	RecipientIndividual RecipientType = "individual"
	RecipientBusiness   RecipientType = "business"
)

const PaymentMethodCard = "card"

// PaymentForm is the payment dialog. Card is never serialized.
type PaymentForm struct {
	RecipientType  RecipientType    `form:"recipient_type" json:"recipientType"`
	FirstName      string           `form:"first_name" json:"firstName"`
	LastName       string           `form:"last_name" json:"lastName"`
	BusinessName   string           `form:"business_name" json:"businessName"`
	RecipientEmail string           `form:"recipient_email" json:"recipientEmail"`
	ConfirmEmail   string           `form:"confirm_email" json:"confirmEmail"`
	ComplianceAck  bool             `form:"compliance_ack" json:"complianceAck"`
	Amount         string           `form:"amount" json:"amount"`
	Method         string           `form:"method" json:"method"`
	Card           CardPresentation `form:"-" json:"-"`
}

// CardPresentation references tokenized card details held by the processor.
type CardPresentation struct {
	PaymentMethodID string `form:"payment_method_id"`
}

type Recipient struct {
	Type         RecipientType
	FirstName    string
	LastName     string
	BusinessName string
	Email        string
}

type IntentRequest struct {
	ApplicationID string
	Method        string
	AmountCents   int64
	Recipient     Recipient
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

type PaymentStatus string

const (
	PaymentStatusSucceeded      PaymentStatus = "succeeded"
	PaymentStatusProcessing     PaymentStatus = "processing"
	PaymentStatusRequiresAction PaymentStatus = "requires_action"
	PaymentStatusRequiresMethod PaymentStatus = "requires_payment_method"
	PaymentStatusCanceled       PaymentStatus = "canceled"
)

type PaymentConfirmation struct {
	ID     string
	Status PaymentStatus
}
