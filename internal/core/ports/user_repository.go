package ports

import (
	"context"
	"time"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

// UserRepository persists approved members.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns every user, active or not. Directory sync needs the full
	// set to see who was deactivated.
	List(ctx context.Context) ([]*domain.User, error)
	ListActive(ctx context.Context) ([]*domain.User, error)
	CountActive(ctx context.Context) (int64, error)
	// CountActiveUpdatedSince counts active users whose last_info_update is >= since.
	CountActiveUpdatedSince(ctx context.Context, since time.Time) (int64, error)
	SetLastInfoUpdate(ctx context.Context, id string, at time.Time) error
}
