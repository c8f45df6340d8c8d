package ports

import (
	"context"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

// RegisterInput is the self-service sign-up form.
type RegisterInput struct {
	Name              string
	Email             string
	University        string
	PreferredUsername string
	GitHubID          string
}

// ReviewInput is an admin decision on a pending registration.
type ReviewInput struct {
	ID         string
	Status     domain.RegistrationStatus
	Comments   string
	ReviewerID string
}

// ReviewResult reports what the decision triggered.
type ReviewResult struct {
	Registration *domain.Registration
	User         *domain.User // set when approved
	// GitHubInvited is true when the new member was added to the GitHub
	// organization.
	GitHubInvited bool
}

type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Registration, error)
	List(ctx context.Context, status domain.RegistrationStatus) ([]*domain.Registration, error)
	Review(ctx context.Context, in ReviewInput) (*ReviewResult, error)
}
