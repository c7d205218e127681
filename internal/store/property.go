package store

import (
	"context"
	"fmt"
	"time"

	"rentapply/internal/utils"
	"rentapply/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const propertyTableName = "properties"

var propertyColumns = utils.StructTagValues(types.Property{})

type PropertyRepository struct {
	pool Pool
}

func NewPropertyRepository(pool Pool) *PropertyRepository {
	return &PropertyRepository{pool: pool}
}

func (r *PropertyRepository) Property(ctx context.Context, propertyID string) (*types.Property, error) {

	query, args, err := psql().Select(propertyColumns...).From(propertyTableName).
		Where(sq.Eq{"id": propertyID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate property query: %w", err)
	}

	var property = new(types.Property)
	err = pgxscan.Get(ctx, r.pool, property, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to fetch property %s: %w", propertyID, err)
	}

	return property, nil

}

func (r *PropertyRepository) Properties(ctx context.Context) ([]*types.Property, error) {

	query, args, err := psql().Select(propertyColumns...).From(propertyTableName).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate properties query: %w", err)
	}

	var properties = make([]*types.Property, 0)
	err = pgxscan.Select(ctx, r.pool, &properties, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	return properties, nil

}

// UpsertProperty inserts the property or refreshes it when the id exists.
// Seeding relies on this to stay idempotent.
func (r *PropertyRepository) UpsertProperty(ctx context.Context, property *types.Property) error {

	now := time.Now()
	if property.ID == "" {
		property.ID = utils.NanoID()
	}
	if property.CreatedAt.IsZero() {
		property.CreatedAt = now
	}
	property.UpdatedAt = now

	query, args, err := psql().Insert(propertyTableName).
		SetMap(utils.StructToMap(property)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code,
			monthly_rent_cents = EXCLUDED.monthly_rent_cents,
			security_deposit_cents = EXCLUDED.security_deposit_cents,
			landlord_name = EXCLUDED.landlord_name,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert property query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert property")

}
