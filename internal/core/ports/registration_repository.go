package ports

import (
	"context"
	"time"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

// RegistrationReview carries the admin decision applied to a registration.
type RegistrationReview struct {
	Status     domain.RegistrationStatus
	Comments   string
	ReviewedBy string
	ReviewedAt time.Time
}

// RegistrationRepository persists sign-up requests.
type RegistrationRepository interface {
	Create(ctx context.Context, r *domain.Registration) (*domain.Registration, error)
	FindByID(ctx context.Context, id string) (*domain.Registration, error)
	// List returns registrations newest first; an empty status matches all.
	List(ctx context.Context, status domain.RegistrationStatus) ([]*domain.Registration, error)
	// Review records the decision only while the registration is still
	// pending and returns domain.ErrRegistrationReviewed otherwise.
	Review(ctx context.Context, id string, review RegistrationReview) (*domain.Registration, error)
	// Reopen returns a decided registration to pending and clears the review.
	Reopen(ctx context.Context, id string, from domain.RegistrationStatus) error
}
