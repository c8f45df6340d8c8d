package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adminflow/adminflow-api/internal/api/metrics"
	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
	"github.com/adminflow/adminflow-api/internal/directory"
	"github.com/adminflow/adminflow-api/internal/reconcile"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// SyncTarget pairs a directory with the user field that identifies members
// in it.
type SyncTarget struct {
	Client   directory.Client
	Identity func(u *domain.User) domain.LocalUser
}

// GitHubTarget identifies users by their GitHub login.
func GitHubTarget(client directory.Client) SyncTarget {
	return SyncTarget{Client: client, Identity: func(u *domain.User) domain.LocalUser {
		return domain.LocalUser{ExternalID: u.GitHubID, IsActive: u.IsActive, DisplayName: u.Name}
	}}
}

// SlackTarget identifies users by email.
func SlackTarget(client directory.Client) SyncTarget {
	return SyncTarget{Client: client, Identity: func(u *domain.User) domain.LocalUser {
		return domain.LocalUser{ExternalID: u.Email, IsActive: u.IsActive, DisplayName: u.Name}
	}}
}

type syncService struct {
	users      ports.UserRepository
	runs       ports.SyncRunRepository
	lock       ports.SyncLock
	reconciler *reconcile.Reconciler
	targets    map[string]SyncTarget
	order      []string
	log        zerolog.Logger
}

// NewSyncService returns a SyncService over targets. Targets run in the
// given order for SyncAll.
func NewSyncService(
	users ports.UserRepository,
	runs ports.SyncRunRepository,
	lock ports.SyncLock,
	reconciler *reconcile.Reconciler,
	targets []SyncTarget,
	log zerolog.Logger,
) ports.SyncService {
	s := &syncService{
		users:      users,
		runs:       runs,
		lock:       lock,
		reconciler: reconciler,
		targets:    make(map[string]SyncTarget, len(targets)),
		log:        log,
	}
	for _, t := range targets {
		name := t.Client.Name()
		if _, dup := s.targets[name]; dup {
			continue
		}
		s.targets[name] = t
		s.order = append(s.order, name)
	}
	return s
}

func (s *syncService) Directories() []string {
	return append([]string(nil), s.order...)
}

// Sync runs one pass against a single directory. The pass holds the
// directory lock for its whole duration. A roster fetch failure still
// returns the (empty) result alongside an error wrapping
// domain.ErrDirectoryUnavailable.
func (s *syncService) Sync(ctx context.Context, name string) (*domain.ReconciliationResult, error) {
	target, ok := s.targets[name]
	if !ok {
		return nil, fmt.Errorf("sync %q: %w", name, domain.ErrUnknownDirectory)
	}

	release, err := s.lock.Acquire(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrSyncInProgress) {
			metrics.SyncPassesTotal.WithLabelValues(name, "locked").Inc()
		}
		return nil, fmt.Errorf("sync %s: %w", name, err)
	}
	defer release(context.WithoutCancel(ctx))

	run := &domain.SyncRun{
		ID:        uuid.NewString(),
		Directory: name,
		StartedAt: time.Now().UTC(),
	}
	log := s.log.With().Str("directory", name).Str("run_id", run.ID).Logger()

	users, err := s.users.List(ctx)
	if err != nil {
		metrics.SyncPassesTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("sync %s: load users: %w", name, err)
	}
	local := make([]domain.LocalUser, 0, len(users))
	for _, u := range users {
		local = append(local, target.Identity(u))
	}

	result, recErr := s.reconciler.Reconcile(ctx, target.Client, local)
	run.FinishedAt = time.Now().UTC()
	run.Added = result.Added
	run.Removed = result.Removed
	run.FetchFailed = result.FetchFailed
	if recErr != nil {
		run.Error = recErr.Error()
	}

	metrics.SyncDuration.WithLabelValues(name).Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
	metrics.MembershipChangesTotal.WithLabelValues(name, "add").Add(float64(len(result.Added)))
	metrics.MembershipChangesTotal.WithLabelValues(name, "remove").Add(float64(len(result.Removed)))
	switch {
	case result.FetchFailed:
		metrics.SyncPassesTotal.WithLabelValues(name, "fetch_failed").Inc()
	case recErr != nil:
		metrics.SyncPassesTotal.WithLabelValues(name, "error").Inc()
	default:
		metrics.SyncPassesTotal.WithLabelValues(name, "ok").Inc()
	}

	if err := s.runs.Insert(context.WithoutCancel(ctx), run); err != nil {
		log.Warn().Err(err).Msg("failed to record sync run")
	}

	log.Info().
		Int("users", len(local)).
		Strs("added", result.Added).
		Strs("removed", result.Removed).
		Bool("fetch_failed", result.FetchFailed).
		Msg("sync pass finished")

	if recErr != nil {
		return &result, fmt.Errorf("sync %s: %w", name, recErr)
	}
	return &result, nil
}

// SyncAll returns the results of every pass that ran, together with the
// joined errors of those that did not complete cleanly.
func (s *syncService) SyncAll(ctx context.Context) ([]domain.ReconciliationResult, error) {
	results := make([]domain.ReconciliationResult, 0, len(s.order))
	var errs []error
	for _, name := range s.order {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		result, err := s.Sync(ctx, name)
		if result != nil {
			results = append(results, *result)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

func (s *syncService) Runs(ctx context.Context, name string, limit int) ([]*domain.SyncRun, error) {
	if name != "" {
		if _, ok := s.targets[name]; !ok {
			return nil, fmt.Errorf("sync runs %q: %w", name, domain.ErrUnknownDirectory)
		}
	}
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}
	return s.runs.ListRecent(ctx, name, limit)
}
