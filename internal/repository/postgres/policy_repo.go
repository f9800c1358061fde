package postgres

/*
Каталог политик в PostgreSQL: какие модули загружать, с какими подписками
и включать ли их при старте. Читается один раз при старте и по запросу admin API.
*/

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

// Querier общая часть *pgxpool.Pool и pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PolicyRepo struct {
	pool Querier
}

// NewPolicyRepo создает пул соединений pgx.
func NewPolicyRepo(ctx context.Context, connString string) (*PolicyRepo, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	return &PolicyRepo{pool: pool}, pool, nil
}

func NewPolicyRepoWith(q Querier) *PolicyRepo {
	return &PolicyRepo{pool: q}
}

// ListDefinitions выполняет "холодную загрузку" каталога политик.
func (r *PolicyRepo) ListDefinitions(ctx context.Context) ([]domain.PolicyDefinition, error) {
	query := `
		SELECT name, path, enabled_at_start, events
		FROM policy_definitions
		WHERE NOT disabled
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list policy definitions: %w", err)
	}

	defs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PolicyDefinition, error) {
		var d domain.PolicyDefinition
		err := row.Scan(&d.Name, &d.Path, &d.EnabledAtStart, &d.Events)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan policy definitions: %w", err)
	}
	return defs, nil
}
