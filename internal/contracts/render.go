package contracts

import (
	"bytes"
	"fmt"
	"strings"

	"rentapply/pkg/types"

	"github.com/go-pdf/fpdf"
)

const (
	pageMarginMM = 20.0
	lineHeightMM = 6.0
)

// Render lays the contract out as a letter-size PDF.
func Render(c *types.Contract) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.SetAutoPageBreak(true, pageMarginMM)
	pdf.SetTitle("Residential Lease Agreement", false)
	pdf.AddPage()

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	form := c.FormSnapshot

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Residential Lease Agreement", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, tr("Contract "+c.ID), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section := func(title string) {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	row := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, lineHeightMM, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, lineHeightMM, tr(value), "", "L", false)
	}

	section("Parties")
	row("Tenant", form.TenantName)
	row("Landlord", form.LandlordName)
	row("Premises", form.PropertyAddress)

	section("Term and Rent")
	row("Start date", c.StartDate)
	end := c.EndDate
	if end == "" {
		end = "Month to month"
	}
	row("End date", end)
	row("Monthly rent", money(form.MonthlyRent))
	row("Security deposit", money(form.SecurityDeposit))

	section("Occupancy")
	row("Occupants", form.Occupants)
	pets := "Not allowed"
	if form.PetsAllowed {
		pets = "Allowed"
	}
	row("Pets", pets)
	row("Utilities", form.UtilitiesNotes)

	if strings.TrimSpace(form.SpecialTerms) != "" {
		section("Special Terms")
		pdf.MultiCell(0, lineHeightMM, tr(form.SpecialTerms), "", "L", false)
	}

	section("Signatures")
	row("Status", statusLabel(c.Status))
	if c.TenantSignature != nil {
		signed := *c.TenantSignature
		if c.TenantSignedAt != nil {
			signed += " on " + c.TenantSignedAt.UTC().Format("January 2, 2006 15:04 MST")
		}
		row("Tenant", signed)
	} else {
		row("Tenant", "")
	}
	row("Landlord", "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out contract %s: %w", c.ID, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render contract %s: %w", c.ID, err)
	}

	return buf.Bytes(), nil
}

func money(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "$") {
		return v
	}
	return "$" + v
}

func statusLabel(s types.ContractStatus) string {
	switch s {
	case types.ContractStatusDraft:
		return "Draft"
	case types.ContractStatusTenantSigned:
		return "Signed by tenant"
	case types.ContractStatusLandlordSigned:
		return "Signed by landlord"
	case types.ContractStatusExecuted:
		return "Fully executed"
	}
	return string(s)
}
