package types

import "time"

type ContractStatus string

const (
	ContractStatusDraft          ContractStatus = "draft"
	ContractStatusTenantSigned   ContractStatus = "tenant_signed"
	ContractStatusLandlordSigned ContractStatus = "landlord_signed"
	ContractStatusExecuted       ContractStatus = "executed"
)

type Contract struct {
	ID              string         `db:"id" json:"id"`
	ApplicationID   string         `db:"application_id" json:"applicationId"`
	FormSnapshot    LeaseForm      `db:"form_snapshot" json:"formSnapshot"`
	StartDate       string         `db:"start_date" json:"startDate"`
	EndDate         string         `db:"end_date" json:"endDate"`
	Status          ContractStatus `db:"status" json:"status"`
	TenantSignature *string        `db:"tenant_signature" json:"tenantSignature,omitempty"`
	TenantSignedAt  *time.Time     `db:"tenant_signed_at" json:"tenantSignedAt,omitempty"`
	ClientIP        *string        `db:"client_ip" json:"-"`
	ClientAgent     *string        `db:"client_agent" json:"-"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// LeaseForm is the lease data entered on the contract step. Dates are kept as
// entered (YYYY-MM-DD); LeaseStartDate/LeaseEndDate are the explicit fields and
// TermStart/TermEnd the values derived from the lease term section.
type LeaseForm struct {
	TenantName      string `form:"tenant_name" json:"tenantName"`
	LandlordName    string `form:"landlord_name" json:"landlordName"`
	PropertyAddress string `form:"property_address" json:"propertyAddress"`
	MonthlyRent     string `form:"monthly_rent" json:"monthlyRent"`
	SecurityDeposit string `form:"security_deposit" json:"securityDeposit"`
	LeaseStartDate  string `form:"lease_start_date" json:"leaseStartDate,omitempty"`
	LeaseEndDate    string `form:"lease_end_date" json:"leaseEndDate,omitempty"`
	TermStart       string `form:"term_start" json:"termStart,omitempty"`
	TermEnd         string `form:"term_end" json:"termEnd,omitempty"`
	Occupants       string `form:"occupants" json:"occupants,omitempty"`
	PetsAllowed     bool   `form:"pets_allowed" json:"petsAllowed"`
	UtilitiesNotes  string `form:"utilities_notes" json:"utilitiesNotes,omitempty"`
	SpecialTerms    string `form:"special_terms" json:"specialTerms,omitempty"`
	TenantSignature string `form:"tenant_signature" json:"tenantSignature,omitempty"`
	TenantAgreement bool   `form:"tenant_agreement" json:"tenantAgreement"`
}

type GenerateContractRequest struct {
	ApplicationID string
	FormSnapshot  LeaseForm
	StartDate     string
	EndDate       string
}

type TenantSignature struct {
	Signature   string
	ClientIP    string
	ClientAgent string
}

// ContractFile is a rendered contract ready for download.
type ContractFile struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ClientMeta describes the client that drives the workflow.
type ClientMeta struct {
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
}
