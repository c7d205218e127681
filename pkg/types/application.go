package types

import (
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusDraft       ApplicationStatus = "draft"
	ApplicationStatusSubmitted   ApplicationStatus = "submitted"
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn   ApplicationStatus = "withdrawn"
)

type Application struct {
	ID          string `db:"id" json:"id"`
	PropertyID  string `db:"property_id" json:"propertyId"`
	ApplicantID string `db:"applicant_id" json:"applicantId"`

	ApplicantProfile

	Status           ApplicationStatus `db:"status" json:"status"`
	ContractSigned   bool              `db:"contract_signed" json:"contractSigned"`
	PaymentCompleted bool              `db:"payment_completed" json:"paymentCompleted"`
	SubmittedAt      *time.Time        `db:"submitted_at" json:"submittedAt,omitempty"`
	CreatedAt        time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updatedAt"`
}

type ApplicantProfile struct {
	FullName              string     `db:"full_name" json:"fullName"`
	Email                 string     `db:"email" json:"email"`
	Phone                 string     `db:"phone" json:"phone"`
	Occupation            *string    `db:"occupation" json:"occupation,omitempty"`
	MonthlyIncome         *float64   `db:"monthly_income" json:"monthlyIncome,omitempty"`
	MoveInDate            *time.Time `db:"move_in_date" json:"moveInDate,omitempty"`
	EmergencyContactName  *string    `db:"emergency_contact_name" json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string    `db:"emergency_contact_phone" json:"emergencyContactPhone,omitempty"`
}

// ApplicationFields is the applicant form as captured, before any parsing.
type ApplicationFields struct {
	FullName              string `form:"full_name" json:"fullName"`
	Email                 string `form:"email" json:"email"`
	Phone                 string `form:"phone" json:"phone"`
	Occupation            string `form:"occupation" json:"occupation"`
	MonthlyIncome         string `form:"monthly_income" json:"monthlyIncome"`
	MoveInDate            string `form:"move_in_date" json:"moveInDate"`
	EmergencyContactName  string `form:"emergency_contact_name" json:"emergencyContactName"`
	EmergencyContactPhone string `form:"emergency_contact_phone" json:"emergencyContactPhone"`
}

// ApplicationPatch carries a partial update. Nil fields are left untouched.
type ApplicationPatch struct {
	FullName              *string            `db:"full_name"`
	Email                 *string            `db:"email"`
	Phone                 *string            `db:"phone"`
	Occupation            *string            `db:"occupation"`
	MonthlyIncome         *float64           `db:"monthly_income"`
	MoveInDate            *time.Time         `db:"move_in_date"`
	EmergencyContactName  *string            `db:"emergency_contact_name"`
	EmergencyContactPhone *string            `db:"emergency_contact_phone"`
	Status                *ApplicationStatus `db:"status"`
	ContractSigned        *bool              `db:"contract_signed"`
	PaymentCompleted      *bool              `db:"payment_completed"`
	SubmittedAt           *time.Time         `db:"submitted_at"`
}
