package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
	"github.com/adminflow/adminflow-api/internal/directory"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	users     []*domain.User
	createErr error
	listErr   error
	nextID    int
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) seed(users ...*domain.User) *stubUserRepo {
	for _, u := range users {
		r.nextID++
		if u.ID == "" {
			u.ID = fmt.Sprintf("u%d", r.nextID)
		}
		r.users = append(r.users, cloneUser(u))
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("u%d", r.nextID)
	r.users = append(r.users, copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *stubUserRepo) List(context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) ListActive(ctx context.Context) ([]*domain.User, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, u := range all {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) CountActive(ctx context.Context) (int64, error) {
	active, err := r.ListActive(ctx)
	return int64(len(active)), err
}

func (r *stubUserRepo) CountActiveUpdatedSince(ctx context.Context, since time.Time) (int64, error) {
	active, err := r.ListActive(ctx)
	var n int64
	for _, u := range active {
		if u.LastInfoUpdate != nil && !u.LastInfoUpdate.Before(since) {
			n++
		}
	}
	return n, err
}

func (r *stubUserRepo) SetLastInfoUpdate(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			t := at
			u.LastInfoUpdate = &t
			return nil
		}
	}
	return domain.ErrUserNotFound
}

// ---------------------------------------------------------------------------
// Email queue
// ---------------------------------------------------------------------------

type stubMailQueue struct {
	mu   sync.Mutex
	sent []domain.Email
}

func (q *stubMailQueue) Enqueue(e domain.Email) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, e)
}

func (q *stubMailQueue) subjects() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.sent))
	for _, e := range q.sent {
		out = append(out, e.Subject)
	}
	return out
}

// ---------------------------------------------------------------------------
// Directory
// ---------------------------------------------------------------------------

type stubDirectory struct {
	name    string
	addOK   bool
	added   []string
	members []domain.DirectoryMember
	listOK  bool
}

func (d *stubDirectory) Name() string { return d.name }
func (d *stubDirectory) Normalize(id string) string { return id }
func (d *stubDirectory) IsMember(context.Context, string) bool { return false }

func (d *stubDirectory) AddMember(_ context.Context, identity string, _ directory.Attributes) bool {
	d.added = append(d.added, identity)
	return d.addOK
}

func (d *stubDirectory) RemoveMember(context.Context, string) bool { return true }

func (d *stubDirectory) ListMembers(context.Context) ([]domain.DirectoryMember, bool) {
	return d.members, d.listOK
}

// ---------------------------------------------------------------------------
// Sync runs and lock
// ---------------------------------------------------------------------------

type stubSyncRunRepo struct {
	mu        sync.Mutex
	runs      []*domain.SyncRun
	insertErr error
	lastLimit int
}

func (r *stubSyncRunRepo) Insert(_ context.Context, run *domain.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	copy := *run
	r.runs = append(r.runs, &copy)
	return nil
}

func (r *stubSyncRunRepo) ListRecent(_ context.Context, name string, limit int) ([]*domain.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	var out []*domain.SyncRun
	for _, run := range r.runs {
		if name == "" || run.Directory == name {
			out = append(out, run)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubSyncLock struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func (l *stubSyncLock) Acquire(_ context.Context, name string) (func(context.Context), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[name] {
		return nil, domain.ErrSyncInProgress
	}
	l.held[name] = true
	return func(context.Context) {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, name)
		l.released = append(l.released, name)
	}, nil
}

// ---------------------------------------------------------------------------
// Registrations
// ---------------------------------------------------------------------------

type stubRegistrationRepo struct {
	regs   map[string]*domain.Registration
	nextID int
}

func newStubRegistrationRepo() *stubRegistrationRepo {
	return &stubRegistrationRepo{regs: map[string]*domain.Registration{}}
}

func (r *stubRegistrationRepo) Create(_ context.Context, reg *domain.Registration) (*domain.Registration, error) {
	r.nextID++
	copy := *reg
	copy.ID = fmt.Sprintf("r%d", r.nextID)
	r.regs[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *stubRegistrationRepo) FindByID(_ context.Context, id string) (*domain.Registration, error) {
	reg, ok := r.regs[id]
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	out := *reg
	return &out, nil
}

func (r *stubRegistrationRepo) List(_ context.Context, status domain.RegistrationStatus) ([]*domain.Registration, error) {
	var out []*domain.Registration
	for _, reg := range r.regs {
		if status == "" || reg.Status == status {
			copy := *reg
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubRegistrationRepo) Review(_ context.Context, id string, review ports.RegistrationReview) (*domain.Registration, error) {
	reg, ok := r.regs[id]
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	if reg.Status != domain.RegistrationPending {
		return nil, domain.ErrRegistrationReviewed
	}
	at := review.ReviewedAt
	reg.Status = review.Status
	reg.Comments = review.Comments
	reg.ReviewedBy = review.ReviewedBy
	reg.ReviewedAt = &at
	out := *reg
	return &out, nil
}

func (r *stubRegistrationRepo) Reopen(_ context.Context, id string, from domain.RegistrationStatus) error {
	reg, ok := r.regs[id]
	if !ok {
		return domain.ErrRegistrationNotFound
	}
	if reg.Status != from {
		return domain.ErrRegistrationReviewed
	}
	reg.Status = domain.RegistrationPending
	reg.Comments = ""
	reg.ReviewedBy = ""
	reg.ReviewedAt = nil
	return nil
}

// ---------------------------------------------------------------------------
// Annual update requests
// ---------------------------------------------------------------------------

type stubAnnualRepo struct {
	requests []*domain.AnnualUpdateRequest
}

func (r *stubAnnualRepo) Create(_ context.Context, req *domain.AnnualUpdateRequest) (*domain.AnnualUpdateRequest, error) {
	for _, existing := range r.requests {
		if existing.Year == req.Year {
			return nil, domain.ErrAnnualUpdateExists
		}
	}
	copy := *req
	copy.ID = fmt.Sprintf("a%d", len(r.requests)+1)
	r.requests = append(r.requests, &copy)
	return &copy, nil
}

func (r *stubAnnualRepo) FindByYear(_ context.Context, year int) (*domain.AnnualUpdateRequest, error) {
	for _, req := range r.requests {
		if req.Year == year {
			return req, nil
		}
	}
	return nil, domain.ErrAnnualUpdateNotFound
}

func (r *stubAnnualRepo) ListByYear(_ context.Context, year int) ([]*domain.AnnualUpdateRequest, error) {
	var out []*domain.AnnualUpdateRequest
	for _, req := range r.requests {
		if req.Year == year {
			out = append(out, req)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Teams
// ---------------------------------------------------------------------------

type stubTeamRepo struct {
	teams []*domain.Team
}

func (r *stubTeamRepo) List(context.Context) ([]*domain.Team, error) {
	return r.teams, nil
}

func (r *stubTeamRepo) Create(_ context.Context, team *domain.Team) (*domain.Team, error) {
	for _, t := range r.teams {
		if t.Name == team.Name {
			return nil, domain.ErrTeamExists
		}
	}
	copy := *team
	copy.ID = fmt.Sprintf("t%d", len(r.teams)+1)
	r.teams = append(r.teams, &copy)
	return &copy, nil
}
