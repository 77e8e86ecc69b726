package memory

import (
	"context"
	"sync"

	"case-portal/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
)

var _ repository.TransactionManager = (*TxManager)(nil)

type memTx struct{}

// TxManager serializes transactional callbacks. The in-memory repositories
// have no rollback, so a failing callback may leave partial writes behind.
type TxManager struct {
	mu sync.Mutex
}

func NewTxManager() *TxManager { return &TxManager{} }

func (m *TxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, memTx{})
}
