package contracts

import (
	"bytes"
	"context"
	"testing"
	"time"

	"rentapply/internal/utils"
	"rentapply/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	contracts map[string]*types.Contract
	signedAt  time.Time
}

func (f *fakeRepo) Contract(_ context.Context, id string) (*types.Contract, error) {
	c, ok := f.contracts[id]
	if !ok {
		return nil, types.ErrContractNotFound
	}
	return c, nil
}

func (f *fakeRepo) CreateContract(_ context.Context, c *types.Contract) error {
	c.ID = "contract-1"
	c.Status = types.ContractStatusDraft
	f.contracts[c.ID] = c
	return nil
}

func (f *fakeRepo) SignAsTenant(_ context.Context, id string, sig types.TenantSignature, signedAt time.Time) (*types.Contract, error) {
	c, ok := f.contracts[id]
	if !ok {
		return nil, types.ErrContractNotFound
	}
	f.signedAt = signedAt
	c.Status = types.ContractStatusTenantSigned
	c.TenantSignature = utils.StringPtr(sig.Signature)
	c.TenantSignedAt = &signedAt
	return c, nil
}

func newTestService() (*Service, *fakeRepo) {
	logger, _ := test.NewNullLogger()
	repo := &fakeRepo{contracts: map[string]*types.Contract{}}
	svc := NewService(repo, logger)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return svc, repo
}

func TestGenerateSignAndDownload(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	generated, err := svc.Generate(ctx, types.GenerateContractRequest{
		ApplicationID: "app-1",
		FormSnapshot: types.LeaseForm{
			TenantName:      "Dana Reyes",
			LandlordName:    "Pat Owner",
			PropertyAddress: "12 Elm St, Austin, TX 78701",
			MonthlyRent:     "1850.00",
			SpecialTerms:    "No smoking on the premises. Ñandú statues stay.",
		},
		StartDate: "2026-04-01",
	})
	require.NoError(t, err)
	assert.Equal(t, types.ContractStatusDraft, generated.Status)

	signed, err := svc.SignAsTenant(ctx, generated.ID, types.TenantSignature{Signature: "Dana Reyes"})
	require.NoError(t, err)
	assert.Equal(t, types.ContractStatusTenantSigned, signed.Status)
	assert.Equal(t, 2026, repo.signedAt.Year())

	file, err := svc.RenderDownload(ctx, generated.ID)
	require.NoError(t, err)
	assert.Equal(t, "lease-contract-1.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF-")))
}

func TestRenderDownload_UnknownContract(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.RenderDownload(context.Background(), "missing")
	require.ErrorIs(t, err, types.ErrContractNotFound)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1850.00", money("1850.00"))
	assert.Equal(t, "$900", money("$900"))
	assert.Equal(t, "", money(" "))
}
