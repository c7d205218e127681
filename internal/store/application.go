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

const applicationTableName = "applications"

var applicationColumns = utils.StructTagValues(types.Application{})

type ApplicationRepository struct {
	pool Pool
}

func NewApplicationRepository(pool Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

func (r *ApplicationRepository) Application(ctx context.Context, applicationID string) (*types.Application, error) {

	query, args, err := psql().Select(applicationColumns...).From(applicationTableName).
		Where(sq.Eq{"id": applicationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate application query: %w", err)
	}

	var app = new(types.Application)
	err = pgxscan.Get(ctx, r.pool, app, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to fetch application %s: %w", applicationID, err)
	}

	return app, nil

}

// LatestActive returns the newest application for the pair that has not
// been withdrawn.
func (r *ApplicationRepository) LatestActive(ctx context.Context, propertyID, applicantID string) (*types.Application, error) {

	query, args, err := psql().Select(applicationColumns...).From(applicationTableName).
		Where(sq.Eq{"property_id": propertyID, "applicant_id": applicantID}).
		Where(sq.NotEq{"status": types.ApplicationStatusWithdrawn}).
		OrderBy("created_at desc").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate latest application query: %w", err)
	}

	var app = new(types.Application)
	err = pgxscan.Get(ctx, r.pool, app, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to fetch latest application: %w", err)
	}

	return app, nil

}

func (r *ApplicationRepository) ApplicationsByApplicant(ctx context.Context, applicantID string) ([]*types.Application, error) {

	query, args, err := psql().Select(applicationColumns...).From(applicationTableName).
		Where(sq.Eq{"applicant_id": applicantID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate applications query: %w", err)
	}

	var apps = make([]*types.Application, 0)
	err = pgxscan.Select(ctx, r.pool, &apps, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, nil

}

func (r *ApplicationRepository) Create(ctx context.Context, app *types.Application) error {

	now := time.Now()
	app.ID = utils.NanoID()
	app.CreatedAt = now
	app.UpdatedAt = now

	query, args, err := psql().Insert(applicationTableName).SetMap(utils.StructToMap(app)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert application query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if isUniqueViolation(err) {
		return types.ErrDuplicateApplication
	}

	return utils.ErrorWrapOrNil(err, "failed to create application")

}

// Update applies the non-nil fields of patch.
func (r *ApplicationRepository) Update(ctx context.Context, applicationID string, patch *types.ApplicationPatch) error {

	values := utils.StructToMapNonNil(patch)
	values["updated_at"] = time.Now()

	query, args, err := psql().Update(applicationTableName).SetMap(values).
		Where(sq.Eq{"id": applicationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update application query for application %s: %w", applicationID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrApplicationNotFound
	}

	return nil

}

func (r *ApplicationRepository) SetStatus(ctx context.Context, applicationID string, status types.ApplicationStatus) error {
	return r.Update(ctx, applicationID, &types.ApplicationPatch{Status: &status})
}
