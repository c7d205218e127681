package types

import "time"

type Property struct {
	ID                   string    `db:"id" json:"id"`
	Title                string    `db:"title" json:"title"`
	Address              string    `db:"address" json:"address"`
	City                 string    `db:"city" json:"city"`
	State                string    `db:"state" json:"state"`
	ZipCode              string    `db:"zip_code" json:"zip"`
	MonthlyRentCents     int64     `db:"monthly_rent_cents" json:"monthlyRentCents"`
	SecurityDepositCents int64     `db:"security_deposit_cents" json:"securityDepositCents"`
	LandlordName         *string   `db:"landlord_name" json:"landlordName,omitempty"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedAt"`
}

// FullAddress joins the street address with city, state and zip.
func (p *Property) FullAddress() string {
	out := p.Address
	if p.City != "" {
		out += ", " + p.City
	}
	if p.State != "" {
		out += ", " + p.State
	}
	if p.ZipCode != "" {
		out += " " + p.ZipCode
	}
	return out
}
