package session

import (
	"context"
	"testing"
	"time"

	"rentapply/internal/workflow"
	"rentapply/pkg/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	rdb, err := OpenRedis(mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, time.Hour), mr
}

func TestSaveAndLoad(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	state := &workflow.State{
		PropertyID:    "prop-1",
		ApplicantID:   "user-1",
		Step:          workflow.StepContract,
		ApplicationID: "app-1",
		Fields:        types.ApplicationFields{FullName: "Dana"},
		LeaseForm:     types.LeaseForm{TenantAgreement: true},
		IsSaving:      true,
		Payment: types.PaymentForm{
			Amount: "1850.00",
			Card:   types.CardPresentation{PaymentMethodID: "pm_secret"},
		},
	}

	require.NoError(t, store.Save(ctx, "s1", state))
	assert.Equal(t, time.Hour, mr.TTL(stateKey("s1")))

	raw, err := mr.Get(stateKey("s1"))
	require.NoError(t, err)
	assert.NotContains(t, raw, "pm_secret")

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, workflow.StepContract, got.Step)
	assert.Equal(t, "app-1", got.ApplicationID)
	assert.Equal(t, "Dana", got.Fields.FullName)
	assert.True(t, got.LeaseForm.TenantAgreement)
	assert.Equal(t, "1850.00", got.Payment.Amount)
	assert.False(t, got.IsSaving)
}

func TestLoad_Missing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_Expired(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", &workflow.State{}))
	mr.FastForward(2 * time.Hour)

	_, err := store.Load(ctx, "s1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLock(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, lockTTL, mr.TTL(lockKey("s1")))

	_, err = store.Lock(ctx, "s1")
	require.ErrorIs(t, err, ErrLocked)

	// sessions are independent
	second, err := store.Lock(ctx, "s2")
	require.NoError(t, err)
	second()

	unlock()
	assert.False(t, mr.Exists(lockKey("s1")))

	again, err := store.Lock(ctx, "s1")
	require.NoError(t, err)
	again()
}

func TestUnlock_LeavesForeignLock(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "s1")
	require.NoError(t, err)

	// lock expired and was taken by someone else
	mr.FastForward(lockTTL + time.Second)
	require.NoError(t, mr.Set(lockKey("s1"), "someone-else"))

	unlock()
	assert.True(t, mr.Exists(lockKey("s1")))
}
