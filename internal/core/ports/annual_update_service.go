package ports

import (
	"context"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

// AnnualUpdateStart is returned when a campaign is launched.
type AnnualUpdateStart struct {
	Request    *domain.AnnualUpdateRequest
	Recipients int
}

// AnnualUpdateStatus is this year's campaign overview.
type AnnualUpdateStatus struct {
	Requests []*domain.AnnualUpdateRequest
	Stats    domain.AnnualUpdateStats
}

type AnnualUpdateService interface {
	Start(ctx context.Context) (*AnnualUpdateStart, error)
	Status(ctx context.Context) (*AnnualUpdateStatus, error)
	// Confirm validates a link token and stamps the user's last info update.
	Confirm(ctx context.Context, token string) (*domain.User, error)
}
