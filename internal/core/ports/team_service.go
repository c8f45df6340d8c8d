package ports

import (
	"context"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

type TeamService interface {
	List(ctx context.Context) ([]*domain.Team, error)
	Create(ctx context.Context, team domain.Team) (*domain.Team, error)
}
