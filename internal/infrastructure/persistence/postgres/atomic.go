package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	pkgpostgres "github.com/lumenbank/servicing/pkg/postgres"
)

// TxRunner implements port.Atomic by carrying a pgx transaction on the
// context. Repositories pick it up through QuerierFrom so every statement
// inside fn shares the same transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner creates a transaction runner over the given pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Atomic executes fn within one database transaction.
func (t *TxRunner) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return pkgpostgres.WithTransaction(ctx, t.pool, fn)
}
