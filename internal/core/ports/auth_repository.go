package ports

import (
	"context"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

// AuthRepository persists dashboard login accounts.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
}
