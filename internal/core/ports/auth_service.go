package ports

import (
	"context"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	EnsureAccount(ctx context.Context, email, password, role string) (*domain.Account, error)
}
