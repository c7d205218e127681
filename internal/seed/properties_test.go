package seed

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"rentapply/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	existing []*types.Property
	upserted []types.Property
	failOn   string
}

func (f *fakeRepo) Properties(ctx context.Context) ([]*types.Property, error) {
	return f.existing, nil
}

func (f *fakeRepo) UpsertProperty(ctx context.Context, p *types.Property) error {
	if p.ID == f.failOn {
		return errors.New("connection reset")
	}
	f.upserted = append(f.upserted, *p)
	return nil
}

func TestSeedProperties(t *testing.T) {
	repo := &fakeRepo{existing: []*types.Property{{ID: Properties[0].ID}, {ID: "legacy"}}}
	var out bytes.Buffer

	require.NoError(t, SeedProperties(context.Background(), repo, &out))

	require.Len(t, repo.upserted, len(Properties))
	for i, p := range Properties {
		assert.Equal(t, p.ID, repo.upserted[i].ID)
	}
	assert.Contains(t, out.String(), "3 upserted, 1 not in seed file")
}

func TestSeedProperties_StopsOnError(t *testing.T) {
	repo := &fakeRepo{failOn: Properties[1].ID}

	err := SeedProperties(context.Background(), repo, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), Properties[1].ID)
	assert.Len(t, repo.upserted, 1)
}

func TestPropertyIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Properties {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		assert.Len(t, p.ID, 32)
	}
}
