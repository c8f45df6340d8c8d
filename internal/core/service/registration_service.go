package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adminflow/adminflow-api/internal/api/metrics"
	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
	"github.com/adminflow/adminflow-api/internal/directory"
)

// RegistrationConfig holds the addresses used in registration notifications.
type RegistrationConfig struct {
	AdminEmail   string
	DashboardURL string
}

type registrationService struct {
	registrations ports.RegistrationRepository
	users         ports.UserRepository
	github        directory.Client
	mail          ports.EmailQueue
	cfg           RegistrationConfig
	log           zerolog.Logger
}

// NewRegistrationService returns a RegistrationService. github may be nil, in
// which case approved members are not invited to the organization.
func NewRegistrationService(
	registrations ports.RegistrationRepository,
	users ports.UserRepository,
	github directory.Client,
	mail ports.EmailQueue,
	cfg RegistrationConfig,
	log zerolog.Logger,
) ports.RegistrationService {
	return &registrationService{
		registrations: registrations,
		users:         users,
		github:        github,
		mail:          mail,
		cfg:           cfg,
		log:           log,
	}
}

func (s *registrationService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Registration, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.PreferredUsername)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	reg := &domain.Registration{
		Name:              strings.TrimSpace(in.Name),
		Email:             email,
		University:        strings.TrimSpace(in.University),
		PreferredUsername: username,
		GitHubID:          strings.TrimSpace(in.GitHubID),
		Status:            domain.RegistrationPending,
		CreatedAt:         time.Now().UTC(),
	}
	created, err := s.registrations.Create(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("registration_id", created.ID).Str("email", created.Email).Msg("registration received")
	s.mail.Enqueue(registrationReceivedEmail(s.cfg.AdminEmail, s.cfg.DashboardURL, created))
	return created, nil
}

func (s *registrationService) List(ctx context.Context, status domain.RegistrationStatus) ([]*domain.Registration, error) {
	if status != "" && status != domain.RegistrationPending && !status.IsDecision() {
		return nil, domain.ErrInvalidDecision
	}
	return s.registrations.List(ctx, status)
}

// Review applies an admin decision. Approval creates an active member and,
// when the registration carries a GitHub login, adds it to the organization.
// A failed GitHub invite does not undo the approval; a failed user creation
// puts the registration back to pending.
func (s *registrationService) Review(ctx context.Context, in ports.ReviewInput) (*ports.ReviewResult, error) {
	if !in.Status.IsDecision() {
		return nil, domain.ErrInvalidDecision
	}

	pending, err := s.registrations.FindByID(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("review registration: %w", err)
	}
	if pending.Status != domain.RegistrationPending {
		return nil, domain.ErrRegistrationReviewed
	}

	reviewed, err := s.registrations.Review(ctx, in.ID, ports.RegistrationReview{
		Status:     in.Status,
		Comments:   strings.TrimSpace(in.Comments),
		ReviewedBy: in.ReviewerID,
		ReviewedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("review registration: %w", err)
	}
	metrics.RegistrationDecisionsTotal.WithLabelValues(string(in.Status)).Inc()

	log := s.log.With().Str("registration_id", reviewed.ID).Str("status", string(reviewed.Status)).Logger()
	result := &ports.ReviewResult{Registration: reviewed}

	if reviewed.Status == domain.RegistrationRejected {
		log.Info().Msg("registration rejected")
		s.mail.Enqueue(registrationRejectedEmail(reviewed))
		return result, nil
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		Name:       reviewed.Name,
		Email:      reviewed.Email,
		Username:   reviewed.PreferredUsername,
		University: reviewed.University,
		GitHubID:   reviewed.GitHubID,
		Role:       domain.RoleMember,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if rerr := s.registrations.Reopen(ctx, reviewed.ID, domain.RegistrationApproved); rerr != nil {
			log.Error().Err(rerr).Msg("failed to reopen registration after user creation failed")
		}
		return nil, fmt.Errorf("review registration: create user: %w", err)
	}
	result.User = user

	if user.GitHubID != "" && s.github != nil {
		result.GitHubInvited = s.github.AddMember(ctx, user.GitHubID, directory.Attributes{"role": domain.RoleMember})
		if !result.GitHubInvited {
			log.Warn().Str("identity", user.GitHubID).Msg("github invite failed, approval kept")
		}
	}

	log.Info().Str("user_id", user.ID).Msg("registration approved")
	s.mail.Enqueue(registrationApprovedEmail(reviewed))
	return result, nil
}
