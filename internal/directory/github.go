package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

const (
	GitHubName = "github"

	githubRoleMember = "member"
	githubRoleAdmin  = "admin"
	membersPerPage   = 100

	stateActive  = "active"
	statePending = "pending"
)

// GitHubConfig configures the organization directory.
type GitHubConfig struct {
	Token        string
	Organization string
	Mode         Mode
	// BaseURL overrides the REST endpoint (GitHub Enterprise or tests).
	BaseURL     string
	CallTimeout time.Duration
	HTTPClient  *http.Client
}

// NewGitHub returns the organization directory. Usernames are compared
// case-sensitively.
func NewGitHub(cfg GitHubConfig, log zerolog.Logger) (*Directory, error) {
	if cfg.Mode == ModeDemo {
		b := &demoBackend{
			roster: []domain.DirectoryMember{
				{Identity: "demo-user", Attributes: map[string]string{"role": githubRoleMember}},
				{Identity: "test-user", Attributes: map[string]string{"role": githubRoleMember}},
				{Identity: "admin-user", Attributes: map[string]string{"role": githubRoleAdmin}},
			},
			normalize: UsernameIdentity,
			log:       log.With().Str("directory", GitHubName).Str("organization", cfg.Organization).Logger(),
		}
		return newDirectory(GitHubName, ModeDemo, UsernameIdentity, b, cfg.CallTimeout, log), nil
	}

	gh := github.NewClient(cfg.HTTPClient).WithAuthToken(cfg.Token)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
		gh.BaseURL = u
	}

	b := &githubBackend{gh: gh, org: strings.TrimSpace(cfg.Organization)}
	return newDirectory(GitHubName, ModeLive, UsernameIdentity, b, cfg.CallTimeout, log), nil
}

type githubBackend struct {
	gh  *github.Client
	org string
}

func (b *githubBackend) configured() error {
	if b.org == "" {
		return fmt.Errorf("%w: github organization is empty", domain.ErrDirectoryNotConfigured)
	}
	return nil
}

func (b *githubBackend) list(ctx context.Context) ([]domain.DirectoryMember, error) {
	if err := b.configured(); err != nil {
		return nil, err
	}

	logins, err := b.listLogins(ctx, "all")
	if err != nil {
		return nil, err
	}
	admins, err := b.listLogins(ctx, githubRoleAdmin)
	if err != nil {
		return nil, err
	}

	pending, err := b.listInvitations(ctx)
	if err != nil {
		return nil, err
	}

	adminSet := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		adminSet[a] = struct{}{}
	}

	members := make([]domain.DirectoryMember, 0, len(logins)+len(pending))
	seen := make(map[string]struct{}, len(logins))
	for _, login := range logins {
		role := githubRoleMember
		if _, ok := adminSet[login]; ok {
			role = githubRoleAdmin
		}
		seen[login] = struct{}{}
		members = append(members, domain.DirectoryMember{
			Identity:   login,
			Attributes: map[string]string{"role": role, "state": stateActive},
		})
	}
	// An invited login counts as present so it is not invited again, and
	// removing it cancels the invitation.
	for _, inv := range pending {
		if _, ok := seen[inv.login]; ok {
			continue
		}
		seen[inv.login] = struct{}{}
		members = append(members, domain.DirectoryMember{
			Identity:   inv.login,
			Attributes: map[string]string{"role": inv.role, "state": statePending},
		})
	}
	return members, nil
}

type invitation struct {
	login string
	role  string
}

// listInvitations returns pending invitations addressed to a login. Email-only
// invitations have no username to reconcile against and are skipped.
func (b *githubBackend) listInvitations(ctx context.Context) ([]invitation, error) {
	opts := &github.ListOptions{PerPage: membersPerPage}

	var out []invitation
	for {
		invs, resp, err := b.gh.Organizations.ListPendingOrgInvitations(ctx, b.org, opts)
		if err != nil {
			return nil, fmt.Errorf("list invitations: %w", err)
		}
		for _, inv := range invs {
			login := inv.GetLogin()
			if login == "" {
				continue
			}
			role := githubRoleMember
			if inv.GetRole() == githubRoleAdmin {
				role = githubRoleAdmin
			}
			out = append(out, invitation{login: login, role: role})
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func (b *githubBackend) listLogins(ctx context.Context, role string) ([]string, error) {
	opts := &github.ListMembersOptions{
		Role:        role,
		ListOptions: github.ListOptions{PerPage: membersPerPage},
	}

	var logins []string
	for {
		users, resp, err := b.gh.Organizations.ListMembers(ctx, b.org, opts)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if login := u.GetLogin(); login != "" {
				logins = append(logins, login)
			}
		}
		if resp == nil || resp.NextPage == 0 {
			return logins, nil
		}
		opts.Page = resp.NextPage
	}
}

// check treats 404 (not a member, or membership hidden from this token) as
// false.
func (b *githubBackend) check(ctx context.Context, identity string) (bool, error) {
	if err := b.configured(); err != nil {
		return false, err
	}
	member, _, err := b.gh.Organizations.IsMember(ctx, b.org, identity)
	if err != nil {
		return false, err
	}
	return member, nil
}

func (b *githubBackend) add(ctx context.Context, identity string, attrs Attributes) error {
	if err := b.configured(); err != nil {
		return err
	}
	role := attrs["role"]
	if role != githubRoleAdmin {
		role = githubRoleMember
	}
	_, _, err := b.gh.Organizations.EditOrgMembership(ctx, identity, b.org, &github.Membership{Role: github.String(role)})
	return err
}

func (b *githubBackend) remove(ctx context.Context, identity string) error {
	if err := b.configured(); err != nil {
		return err
	}
	_, err := b.gh.Organizations.RemoveOrgMembership(ctx, identity, b.org)
	return err
}
