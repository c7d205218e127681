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

const contractTableName = "contracts"

var contractColumns = utils.StructTagValues(types.Contract{})

type ContractRepository struct {
	pool Pool
}

func NewContractRepository(pool Pool) *ContractRepository {
	return &ContractRepository{pool: pool}
}

func (r *ContractRepository) Contract(ctx context.Context, contractID string) (*types.Contract, error) {

	query, args, err := psql().Select(contractColumns...).From(contractTableName).
		Where(sq.Eq{"id": contractID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contract query: %w", err)
	}

	var contract = new(types.Contract)
	err = pgxscan.Get(ctx, r.pool, contract, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrContractNotFound
		}
		return nil, fmt.Errorf("failed to fetch contract %s: %w", contractID, err)
	}

	return contract, nil

}

// CreateContract stores a new draft contract with its lease form snapshot.
func (r *ContractRepository) CreateContract(ctx context.Context, contract *types.Contract) error {

	now := time.Now()
	contract.ID = utils.NanoID()
	contract.Status = types.ContractStatusDraft
	contract.CreatedAt = now
	contract.UpdatedAt = now

	query, args, err := psql().Insert(contractTableName).SetMap(utils.StructToMap(contract)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert contract query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create contract")

}

// SignAsTenant records the tenant signature and flags the owning
// application as signed in the same transaction.
func (r *ContractRepository) SignAsTenant(ctx context.Context, contractID string, sig types.TenantSignature, signedAt time.Time) (*types.Contract, error) {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().Update(contractTableName).
		SetMap(map[string]any{
			"status":           types.ContractStatusTenantSigned,
			"tenant_signature": sig.Signature,
			"tenant_signed_at": signedAt,
			"client_ip":        utils.NonEmptyStringPtr(sig.ClientIP),
			"client_agent":     utils.NonEmptyStringPtr(sig.ClientAgent),
			"updated_at":       signedAt,
		}).
		Where(sq.Eq{"id": contractID, "status": types.ContractStatusDraft}).
		Suffix("RETURNING application_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate sign contract query: %w", err)
	}

	var applicationID string
	err = tx.QueryRow(ctx, query, args...).Scan(&applicationID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrContractNotFound
		}
		return nil, fmt.Errorf("failed to sign contract: %w", err)
	}

	query, args, err = psql().Update(applicationTableName).
		SetMap(map[string]any{
			"contract_signed": true,
			"updated_at":      signedAt,
		}).
		Where(sq.Eq{"id": applicationID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate application signed query: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to flag application as signed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.Contract(ctx, contractID)

}
