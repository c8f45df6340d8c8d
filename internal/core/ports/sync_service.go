package ports

import (
	"context"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

// SyncService runs reconciliation passes for the configured directories.
type SyncService interface {
	Directories() []string
	Sync(ctx context.Context, directory string) (*domain.ReconciliationResult, error)
	// SyncAll runs every directory in turn; one failing directory does not
	// stop the others.
	SyncAll(ctx context.Context) ([]domain.ReconciliationResult, error)
	Runs(ctx context.Context, directory string, limit int) ([]*domain.SyncRun, error)
}
