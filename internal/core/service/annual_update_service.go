package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
)

const annualUpdatePurpose = "annual_update"

// AnnualUpdateConfig configures the links mailed to members.
type AnnualUpdateConfig struct {
	JWTSecret string
	AppURL    string
	TokenTTL  time.Duration
}

type annualUpdateService struct {
	requests ports.AnnualUpdateRepository
	users    ports.UserRepository
	mail     ports.EmailQueue
	cfg      AnnualUpdateConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewAnnualUpdateService returns an AnnualUpdateService.
func NewAnnualUpdateService(
	requests ports.AnnualUpdateRepository,
	users ports.UserRepository,
	mail ports.EmailQueue,
	cfg AnnualUpdateConfig,
	log zerolog.Logger,
) ports.AnnualUpdateService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 90 * 24 * time.Hour
	}
	return &annualUpdateService{
		requests: requests,
		users:    users,
		mail:     mail,
		cfg:      cfg,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start opens this year's campaign and mails every active user a personal
// confirmation link. Only one campaign per calendar year is allowed.
func (s *annualUpdateService) Start(ctx context.Context) (*ports.AnnualUpdateStart, error) {
	now := s.now()
	year := now.Year()

	if _, err := s.requests.FindByYear(ctx, year); err == nil {
		return nil, domain.ErrAnnualUpdateExists
	} else if !errors.Is(err, domain.ErrAnnualUpdateNotFound) {
		return nil, fmt.Errorf("start annual update: %w", err)
	}

	req, err := s.requests.Create(ctx, &domain.AnnualUpdateRequest{Year: year, SentAt: now})
	if err != nil {
		return nil, fmt.Errorf("start annual update: %w", err)
	}

	users, err := s.users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("start annual update: list users: %w", err)
	}

	sent := 0
	for _, u := range users {
		token, err := s.issueToken(u.ID, year, now)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", u.ID).Msg("failed to sign annual update token")
			continue
		}
		s.mail.Enqueue(annualUpdateEmail(u, year, s.confirmURL(token)))
		sent++
	}

	s.log.Info().Int("year", year).Int("recipients", sent).Msg("annual update request sent")
	return &ports.AnnualUpdateStart{Request: req, Recipients: sent}, nil
}

func (s *annualUpdateService) Status(ctx context.Context) (*ports.AnnualUpdateStatus, error) {
	year := s.now().Year()

	requests, err := s.requests.ListByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("annual update status: %w", err)
	}
	total, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("annual update status: %w", err)
	}
	startOfYear := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	updated, err := s.users.CountActiveUpdatedSince(ctx, startOfYear)
	if err != nil {
		return nil, fmt.Errorf("annual update status: %w", err)
	}

	return &ports.AnnualUpdateStatus{
		Requests: requests,
		Stats:    domain.NewAnnualUpdateStats(total, updated),
	}, nil
}

func (s *annualUpdateService) Confirm(ctx context.Context, token string) (*domain.User, error) {
	userID, year, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	if year != s.now().Year() {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("confirm annual update: %w", err)
	}

	now := s.now()
	if err := s.users.SetLastInfoUpdate(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("confirm annual update: %w", err)
	}
	user.LastInfoUpdate = &now
	user.UpdatedAt = now
	return user, nil
}

func (s *annualUpdateService) issueToken(userID string, year int, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":     userID,
		"year":    year,
		"purpose": annualUpdatePurpose,
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *annualUpdateService) parseToken(token string) (string, int, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return "", 0, domain.ErrInvalidToken
	}

	if purpose, _ := claims["purpose"].(string); purpose != annualUpdatePurpose {
		return "", 0, domain.ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	year, _ := claims["year"].(float64)
	if sub == "" || year == 0 {
		return "", 0, domain.ErrInvalidToken
	}
	return sub, int(year), nil
}

func (s *annualUpdateService) confirmURL(token string) string {
	return strings.TrimRight(s.cfg.AppURL, "/") + "/annual-update?token=" + url.QueryEscape(token)
}
