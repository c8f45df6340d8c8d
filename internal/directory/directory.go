// Package directory provides clients for external membership directories
// (a GitHub organization, a Slack workspace) behind a single capability
// interface.
//
// Every operation is evaluated as a tagged Outcome. Client exposes the
// boolean view the reconciler relies on: failures are logged here and never
// cross into the caller as errors. ListMembers carries an explicit fetch flag
// so an unreachable directory is never mistaken for an empty one.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

const defaultCallTimeout = 10 * time.Second

// Attributes carries directory-specific settings for a new member
// (e.g. "role" for GitHub, "real_name" for Slack).
type Attributes map[string]string

// Client is the capability contract shared by all directories.
type Client interface {
	Name() string
	Normalize(identity string) string
	IsMember(ctx context.Context, identity string) bool
	AddMember(ctx context.Context, identity string, attrs Attributes) bool
	RemoveMember(ctx context.Context, identity string) bool
	ListMembers(ctx context.Context) ([]domain.DirectoryMember, bool)
}

// Outcome is the result of a single directory call.
type Outcome struct {
	Err error
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

func succeeded() Outcome { return Outcome{} }

func failed(err error) Outcome {
	if err == nil {
		err = errors.New("unknown directory failure")
	}
	return Outcome{Err: err}
}

// backend is implemented once per directory and per mode.
type backend interface {
	list(ctx context.Context) ([]domain.DirectoryMember, error)
	check(ctx context.Context, identity string) (bool, error)
	add(ctx context.Context, identity string, attrs Attributes) error
	remove(ctx context.Context, identity string) error
}

// Directory adapts a backend to Client, applying the per-call timeout and
// the logging policy.
type Directory struct {
	name      string
	mode      Mode
	normalize func(string) string
	backend   backend
	timeout   time.Duration
	log       zerolog.Logger
}

var _ Client = (*Directory)(nil)

func newDirectory(name string, mode Mode, normalize func(string) string, b backend, timeout time.Duration, log zerolog.Logger) *Directory {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Directory{
		name:      name,
		mode:      mode,
		normalize: normalize,
		backend:   b,
		timeout:   timeout,
		log:       log.With().Str("directory", name).Str("mode", mode.String()).Logger(),
	}
}

func (d *Directory) Name() string { return d.name }

// Mode reports whether the directory talks to the live service.
func (d *Directory) Mode() Mode { return d.mode }

func (d *Directory) Normalize(identity string) string { return d.normalize(identity) }

// Check performs a membership lookup. An inconclusive answer is reported as
// a failed Outcome together with false.
func (d *Directory) Check(ctx context.Context, identity string) (bool, Outcome) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	member, err := d.backend.check(ctx, identity)
	if err != nil {
		return false, failed(fmt.Errorf("check %s: %w", identity, err))
	}
	return member, succeeded()
}

// Add puts identity into the directory.
func (d *Directory) Add(ctx context.Context, identity string, attrs Attributes) Outcome {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.backend.add(ctx, identity, attrs); err != nil {
		return failed(fmt.Errorf("add %s: %w", identity, err))
	}
	return succeeded()
}

// Remove takes identity out of the directory.
func (d *Directory) Remove(ctx context.Context, identity string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.backend.remove(ctx, identity); err != nil {
		return failed(fmt.Errorf("remove %s: %w", identity, err))
	}
	return succeeded()
}

// List fetches the full roster.
func (d *Directory) List(ctx context.Context) ([]domain.DirectoryMember, Outcome) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	members, err := d.backend.list(ctx)
	if err != nil {
		return nil, failed(fmt.Errorf("list members: %w", err))
	}
	if members == nil {
		members = []domain.DirectoryMember{}
	}
	return members, succeeded()
}

// IsMember fails closed.
func (d *Directory) IsMember(ctx context.Context, identity string) bool {
	member, out := d.Check(ctx, identity)
	if !out.OK() {
		d.log.Debug().Err(out.Err).Str("identity", identity).Msg("membership check inconclusive")
		return false
	}
	return member
}

func (d *Directory) AddMember(ctx context.Context, identity string, attrs Attributes) bool {
	out := d.Add(ctx, identity, attrs)
	if !out.OK() {
		d.log.Error().Err(out.Err).Str("identity", identity).Msg("failed to add member")
		return false
	}
	d.log.Info().Str("identity", identity).Msg("member added")
	return true
}

func (d *Directory) RemoveMember(ctx context.Context, identity string) bool {
	out := d.Remove(ctx, identity)
	if !out.OK() {
		d.log.Error().Err(out.Err).Str("identity", identity).Msg("failed to remove member")
		return false
	}
	d.log.Info().Str("identity", identity).Msg("member removed")
	return true
}

// ListMembers returns the roster and whether it could be fetched. A false
// flag means the directory state is unknown.
func (d *Directory) ListMembers(ctx context.Context) ([]domain.DirectoryMember, bool) {
	members, out := d.List(ctx)
	if !out.OK() {
		d.log.Error().Err(out.Err).Msg("failed to list members")
		return []domain.DirectoryMember{}, false
	}
	return members, true
}
