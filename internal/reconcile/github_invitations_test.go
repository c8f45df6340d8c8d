package reconcile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/directory"
)

// invitingOrg mimics an organization where adding a membership only sends an
// invitation; nobody accepts during the test.
type invitingOrg struct {
	mu      sync.Mutex
	members []string
	invited map[string]bool
	puts    int
}

func (o *invitingOrg) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case r.URL.Path == "/orgs/acme/members":
		out := []map[string]string{}
		if r.URL.Query().Get("role") != "admin" {
			for _, m := range o.members {
				out = append(out, map[string]string{"login": m})
			}
		}
		writeJSON(w, out)
	case r.URL.Path == "/orgs/acme/invitations":
		out := []map[string]any{}
		for login := range o.invited {
			out = append(out, map[string]any{"id": len(out) + 1, "login": login, "role": "direct_member"})
		}
		writeJSON(w, out)
	case strings.HasPrefix(r.URL.Path, "/orgs/acme/memberships/"):
		login := strings.TrimPrefix(r.URL.Path, "/orgs/acme/memberships/")
		if r.Method == http.MethodDelete {
			delete(o.invited, login)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		o.puts++
		o.invited[login] = true
		writeJSON(w, map[string]string{"state": "pending", "role": "member"})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestReconcile_PendingInvitationsAreNotResent(t *testing.T) {
	org := &invitingOrg{members: []string{"bob"}, invited: map[string]bool{}}
	srv := httptest.NewServer(org)
	t.Cleanup(srv.Close)

	dir, err := directory.NewGitHub(directory.GitHubConfig{
		Token:        "ghp_test",
		Organization: "acme",
		Mode:         directory.ModeLive,
		BaseURL:      srv.URL,
	}, zerolog.Nop())
	require.NoError(t, err)

	r := newReconciler()
	ctx := context.Background()
	users := []domain.LocalUser{active("alice"), active("bob")}

	first, err := r.Reconcile(ctx, dir, users)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, first.Added)

	second, err := r.Reconcile(ctx, dir, users)
	require.NoError(t, err)
	assert.Empty(t, second.Added, "an invited user is already present")
	assert.Empty(t, second.Removed)
	assert.Equal(t, 1, org.puts)

	third, err := r.Reconcile(ctx, dir, []domain.LocalUser{inactive("alice"), active("bob")})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, third.Removed, "deactivation cancels the invitation")
	assert.Empty(t, org.invited)
}
