package ports

import (
	"context"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

// SyncRunRepository keeps the audit trail of reconciliation passes.
type SyncRunRepository interface {
	Insert(ctx context.Context, run *domain.SyncRun) error
	ListRecent(ctx context.Context, directory string, limit int) ([]*domain.SyncRun, error)
}

// SyncLock serialises passes against the same directory across processes.
type SyncLock interface {
	// Acquire returns domain.ErrSyncInProgress when another holder owns name.
	Acquire(ctx context.Context, name string) (release func(context.Context), err error)
}
