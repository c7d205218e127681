package workflow

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"rentapply/internal/utils"
	"rentapply/pkg/types"
)

const dateLayout = "2006-01-02"

const (
	fieldFullName      = "full_name"
	fieldEmail         = "email"
	fieldPhone         = "phone"
	fieldOccupation    = "occupation"
	fieldMonthlyIncome = "monthly_income"
)

var fieldLabels = map[string]string{
	fieldFullName:      "Full Name",
	fieldEmail:         "Email",
	fieldPhone:         "Phone",
	fieldOccupation:    "Occupation",
	fieldMonthlyIncome: "Monthly Income",
}

var fieldOrder = []string{fieldFullName, fieldEmail, fieldPhone, fieldOccupation, fieldMonthlyIncome}

// ValidateMinimal checks the reduced field set needed to create a record
// early. It never looks at occupation or income.
func ValidateMinimal(f types.ApplicationFields) map[string]string {
	errs := map[string]string{}

	requireField(errs, fieldFullName, f.FullName)
	requireField(errs, fieldEmail, f.Email)
	requireField(errs, fieldPhone, f.Phone)

	return errs
}

// ValidateFull checks the complete field set required for final submission.
func ValidateFull(f types.ApplicationFields) map[string]string {
	errs := ValidateMinimal(f)

	requireField(errs, fieldOccupation, f.Occupation)

	if strings.TrimSpace(f.MonthlyIncome) == "" {
		errs[fieldMonthlyIncome] = fieldLabels[fieldMonthlyIncome] + " is required."
	} else if _, ok := parseIncome(f.MonthlyIncome); !ok {
		errs[fieldMonthlyIncome] = fieldLabels[fieldMonthlyIncome] + " must be a positive number."
	}

	return errs
}

// MissingLabels returns the labels of the failed fields in form order.
func MissingLabels(fieldErrs map[string]string) []string {
	out := make([]string, 0, len(fieldErrs))
	for _, field := range fieldOrder {
		if _, ok := fieldErrs[field]; ok {
			out = append(out, fieldLabels[field])
		}
	}

	// anything outside the known order goes last, sorted for stable output
	extra := make([]string, 0)
	for field := range fieldErrs {
		if _, known := fieldLabels[field]; !known {
			extra = append(extra, field)
		}
	}
	sort.Strings(extra)

	return append(out, extra...)
}

func requireField(errs map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = fieldLabels[field] + " is required."
	}
}

func parseIncome(raw string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseDate(raw string) *time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &t
}

func profileFromFields(f types.ApplicationFields) types.ApplicantProfile {
	profile := types.ApplicantProfile{
		FullName:              strings.TrimSpace(f.FullName),
		Email:                 strings.TrimSpace(f.Email),
		Phone:                 strings.TrimSpace(f.Phone),
		Occupation:            utils.NonEmptyStringPtr(f.Occupation),
		MoveInDate:            parseDate(f.MoveInDate),
		EmergencyContactName:  utils.NonEmptyStringPtr(f.EmergencyContactName),
		EmergencyContactPhone: utils.NonEmptyStringPtr(f.EmergencyContactPhone),
	}

	if income, ok := parseIncome(f.MonthlyIncome); ok {
		profile.MonthlyIncome = &income
	}

	return profile
}

// patchFromFields builds an update carrying only the fields the applicant
// filled in.
func patchFromFields(f types.ApplicationFields) *types.ApplicationPatch {
	profile := profileFromFields(f)

	return &types.ApplicationPatch{
		FullName:              utils.NonEmptyStringPtr(profile.FullName),
		Email:                 utils.NonEmptyStringPtr(profile.Email),
		Phone:                 utils.NonEmptyStringPtr(profile.Phone),
		Occupation:            profile.Occupation,
		MonthlyIncome:         profile.MonthlyIncome,
		MoveInDate:            profile.MoveInDate,
		EmergencyContactName:  profile.EmergencyContactName,
		EmergencyContactPhone: profile.EmergencyContactPhone,
	}
}

func fieldsFromApplication(app *types.Application) types.ApplicationFields {
	f := types.ApplicationFields{
		FullName:              app.FullName,
		Email:                 app.Email,
		Phone:                 app.Phone,
		Occupation:            utils.PtrString(app.Occupation),
		EmergencyContactName:  utils.PtrString(app.EmergencyContactName),
		EmergencyContactPhone: utils.PtrString(app.EmergencyContactPhone),
	}

	if app.MonthlyIncome != nil {
		f.MonthlyIncome = strconv.FormatFloat(*app.MonthlyIncome, 'f', -1, 64)
	}
	if app.MoveInDate != nil {
		f.MoveInDate = app.MoveInDate.Format(dateLayout)
	}

	return f
}
