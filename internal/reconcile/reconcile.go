// Package reconcile converges an external directory's membership onto the
// set of active local users.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/directory"
)

const defaultConcurrency = 4

// Reconciler computes and applies the add/remove delta for one directory.
// It holds no state between passes.
type Reconciler struct {
	concurrency int
	log         zerolog.Logger
}

// New returns a Reconciler issuing at most concurrency directory calls at a
// time within each phase.
func New(concurrency int, log zerolog.Logger) *Reconciler {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Reconciler{concurrency: concurrency, log: log}
}

type desiredMember struct {
	identity string
	attrs    directory.Attributes
}

// Reconcile runs one pass. When the directory roster cannot be fetched the
// pass is aborted before any mutation and the result has FetchFailed set.
//
// Every add completes before the first remove is issued. Individual call
// failures are left out of the result and do not stop the pass.
func (r *Reconciler) Reconcile(ctx context.Context, client directory.Client, users []domain.LocalUser) (domain.ReconciliationResult, error) {
	result := domain.ReconciliationResult{
		Directory: client.Name(),
		Added:     []string{},
		Removed:   []string{},
	}
	log := r.log.With().Str("directory", client.Name()).Logger()

	members, ok := client.ListMembers(ctx)
	if !ok {
		result.FetchFailed = true
		log.Warn().Msg("directory roster unavailable, pass aborted")
		return result, fmt.Errorf("reconcile %s: %w", client.Name(), domain.ErrDirectoryUnavailable)
	}

	desired, desiredOrder := desiredSet(client, users)

	present := make(map[string]struct{}, len(members))
	var toRemove []string
	for _, m := range members {
		key := client.Normalize(m.Identity)
		if key == "" {
			continue
		}
		if _, seen := present[key]; seen {
			continue
		}
		present[key] = struct{}{}
		if _, keep := desired[key]; !keep {
			toRemove = append(toRemove, m.Identity)
		}
	}

	var toAdd []desiredMember
	for _, key := range desiredOrder {
		if _, ok := present[key]; !ok {
			toAdd = append(toAdd, desired[key])
		}
	}

	log.Debug().
		Int("members", len(members)).
		Int("desired", len(desired)).
		Int("to_add", len(toAdd)).
		Int("to_remove", len(toRemove)).
		Msg("delta computed")

	result.Added = r.runPhase(ctx, len(toAdd), func(ctx context.Context, i int) (string, bool) {
		m := toAdd[i]
		return m.identity, client.AddMember(ctx, m.identity, m.attrs)
	})

	if err := ctx.Err(); err != nil {
		log.Warn().Err(err).Int("added", len(result.Added)).Msg("pass cancelled before remove phase")
		return result, fmt.Errorf("reconcile %s: %w", client.Name(), err)
	}

	result.Removed = r.runPhase(ctx, len(toRemove), func(ctx context.Context, i int) (string, bool) {
		id := toRemove[i]
		return id, client.RemoveMember(ctx, id)
	})

	log.Info().
		Int("added", len(result.Added)).
		Int("removed", len(result.Removed)).
		Int("add_failures", len(toAdd)-len(result.Added)).
		Int("remove_failures", len(toRemove)-len(result.Removed)).
		Msg("reconciliation pass complete")

	return result, nil
}

// runPhase executes n independent calls with bounded concurrency and returns
// the sorted identities whose call succeeded.
func (r *Reconciler) runPhase(ctx context.Context, n int, call func(ctx context.Context, i int) (string, bool)) []string {
	done := make([]string, 0, n)
	if n == 0 {
		return done
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(r.concurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if id, ok := call(ctx, i); ok {
				mu.Lock()
				done = append(done, id)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(done)
	return done
}

// desiredSet keys active users with an identity by the directory's
// normalized form. The first occurrence of a duplicate identity wins.
func desiredSet(client directory.Client, users []domain.LocalUser) (map[string]desiredMember, []string) {
	desired := make(map[string]desiredMember, len(users))
	order := make([]string, 0, len(users))
	for _, u := range users {
		if !u.IsActive {
			continue
		}
		id := strings.TrimSpace(u.ExternalID)
		if id == "" {
			continue
		}
		key := client.Normalize(id)
		if key == "" {
			continue
		}
		if _, dup := desired[key]; dup {
			continue
		}
		attrs := directory.Attributes{}
		if name, ok := fullName(u.DisplayName); ok {
			attrs["real_name"] = name
		}
		desired[key] = desiredMember{identity: id, attrs: attrs}
		order = append(order, key)
	}
	return desired, order
}

// fullName accepts a display name only when it carries both a first and a
// last name; a lone given name is left for the directory to fill in.
func fullName(display string) (string, bool) {
	parts := strings.Fields(display)
	if len(parts) < 2 {
		return "", false
	}
	return strings.Join(parts, " "), true
}
