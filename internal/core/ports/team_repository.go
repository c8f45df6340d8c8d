package ports

import (
	"context"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

type TeamRepository interface {
	List(ctx context.Context) ([]*domain.Team, error)
	Create(ctx context.Context, team *domain.Team) (*domain.Team, error)
}
