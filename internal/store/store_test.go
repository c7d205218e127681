package store

import (
	"slices"
	"testing"
	"time"

	"rentapply/pkg/types"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	return mock
}

// columnArgs builds the expected arguments of a SetMap statement over
// columns. squirrel sorts SetMap columns by name; known pins the given
// columns to a value and every other column matches anything.
func columnArgs(columns []string, known map[string]any) []any {
	sorted := slices.Clone(columns)
	slices.Sort(sorted)

	args := make([]any, 0, len(sorted))
	for _, column := range sorted {
		if v, ok := known[column]; ok {
			args = append(args, v)
			continue
		}
		args = append(args, pgxmock.AnyArg())
	}
	return args
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func applicationRow(mock pgxmock.PgxPoolIface, app types.Application) *pgxmock.Rows {
	return mock.NewRows(applicationColumns).AddRow(
		app.ID,
		app.PropertyID,
		app.ApplicantID,
		app.FullName,
		app.Email,
		app.Phone,
		app.Occupation,
		app.MonthlyIncome,
		app.MoveInDate,
		app.EmergencyContactName,
		app.EmergencyContactPhone,
		app.Status,
		app.ContractSigned,
		app.PaymentCompleted,
		app.SubmittedAt,
		app.CreatedAt,
		app.UpdatedAt,
	)
}

func contractRow(mock pgxmock.PgxPoolIface, c types.Contract) *pgxmock.Rows {
	return mock.NewRows(contractColumns).AddRow(
		c.ID,
		c.ApplicationID,
		c.FormSnapshot,
		c.StartDate,
		c.EndDate,
		c.Status,
		c.TenantSignature,
		c.TenantSignedAt,
		c.ClientIP,
		c.ClientAgent,
		c.CreatedAt,
		c.UpdatedAt,
	)
}
