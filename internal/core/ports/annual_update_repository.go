package ports

import (
	"context"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

// AnnualUpdateRepository persists yearly update campaigns.
type AnnualUpdateRepository interface {
	// Create fails with domain.ErrAnnualUpdateExists when the year is taken.
	Create(ctx context.Context, req *domain.AnnualUpdateRequest) (*domain.AnnualUpdateRequest, error)
	FindByYear(ctx context.Context, year int) (*domain.AnnualUpdateRequest, error)
	ListByYear(ctx context.Context, year int) ([]*domain.AnnualUpdateRequest, error)
}
