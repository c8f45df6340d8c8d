package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

func newLiveGitHub(t *testing.T, org string, handler http.Handler) *Directory {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir, err := NewGitHub(GitHubConfig{
		Token:        "ghp_test",
		Organization: org,
		Mode:         ModeLive,
		BaseURL:      srv.URL,
	}, zerolog.Nop())
	require.NoError(t, err)
	return dir
}

func TestGitHub_DemoRoster(t *testing.T) {
	dir, err := NewGitHub(GitHubConfig{Token: "placeholder", Mode: ModeDemo}, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	members, ok := dir.ListMembers(ctx)
	require.True(t, ok)
	require.Len(t, members, 3)
	assert.Equal(t, "admin", members[2].Attributes["role"])

	assert.True(t, dir.IsMember(ctx, "demo-user"))
	assert.False(t, dir.IsMember(ctx, "Demo-User"), "usernames are case-sensitive")
	assert.True(t, dir.AddMember(ctx, "newbie", nil))
	assert.True(t, dir.RemoveMember(ctx, "demo-user"))

	again, ok := dir.ListMembers(ctx)
	require.True(t, ok)
	assert.Equal(t, members, again, "demo mutations must not change the roster")
}

func TestGitHub_ListMembers_PaginatesAndDerivesRole(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/members", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("role") == "admin":
			fmt.Fprint(w, `[{"login":"boss"}]`)
		case q.Get("page") == "2":
			fmt.Fprint(w, `[{"login":"carol"}]`)
		default:
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/orgs/acme/members?role=all&per_page=100&page=2>; rel="next"`, r.Host))
			fmt.Fprint(w, `[{"login":"boss"},{"login":"alice"}]`)
		}
	})
	mux.HandleFunc("/orgs/acme/invitations", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	dir := newLiveGitHub(t, "acme", mux)

	members, ok := dir.ListMembers(context.Background())
	require.True(t, ok)
	require.Len(t, members, 3)

	roles := map[string]string{}
	for _, m := range members {
		roles[m.Identity] = m.Attributes["role"]
	}
	assert.Equal(t, map[string]string{"boss": "admin", "alice": "member", "carol": "member"}, roles)
}

func TestGitHub_ListMembers_IncludesPendingInvitations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/members", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("role") == "admin" {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[{"login":"alice"}]`)
	})
	mux.HandleFunc("/orgs/acme/invitations", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"id":3,"login":"dave","role":"admin"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/orgs/acme/invitations?per_page=100&page=2>; rel="next"`, r.Host))
		fmt.Fprint(w, `[{"id":1,"login":"bob","role":"direct_member"},{"id":2,"email":"x@example.com"},{"id":4,"login":"alice"}]`)
	})
	dir := newLiveGitHub(t, "acme", mux)

	members, ok := dir.ListMembers(context.Background())
	require.True(t, ok)

	got := map[string][2]string{}
	for _, m := range members {
		got[m.Identity] = [2]string{m.Attributes["role"], m.Attributes["state"]}
	}
	assert.Equal(t, map[string][2]string{
		"alice": {"member", "active"},
		"bob":   {"member", "pending"},
		"dave":  {"admin", "pending"},
	}, got)
}

func TestGitHub_ListMembers_InvitationFailureIsFlagged(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/members", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"login":"alice"}]`)
	})
	mux.HandleFunc("/orgs/acme/invitations", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusBadGateway)
	})
	dir := newLiveGitHub(t, "acme", mux)

	_, ok := dir.ListMembers(context.Background())
	assert.False(t, ok)
}

func TestGitHub_ListMembers_FailureIsFlagged(t *testing.T) {
	dir := newLiveGitHub(t, "acme", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))

	members, ok := dir.ListMembers(context.Background())
	assert.False(t, ok)
	assert.Empty(t, members)

	_, out := dir.List(context.Background())
	assert.False(t, out.OK())
	assert.Error(t, out.Err)
}

func TestGitHub_IsMember_FailsClosed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/members/alice", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/orgs/acme/members/hidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/orgs/acme/members/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	dir := newLiveGitHub(t, "acme", mux)
	ctx := context.Background()

	assert.True(t, dir.IsMember(ctx, "alice"))
	assert.False(t, dir.IsMember(ctx, "hidden"))
	assert.False(t, dir.IsMember(ctx, "broken"))
}

func TestGitHub_AddAndRemove(t *testing.T) {
	var gotMethod, gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/memberships/alice", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotMethod, gotBody = r.Method, string(body)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		fmt.Fprint(w, `{"state":"pending","role":"member"}`)
	})
	mux.HandleFunc("/orgs/acme/memberships/ghost", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	dir := newLiveGitHub(t, "acme", mux)
	ctx := context.Background()

	require.True(t, dir.AddMember(ctx, "alice", Attributes{"role": "owner"}))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.JSONEq(t, `{"role":"member"}`, gotBody, "unknown roles fall back to member")

	require.True(t, dir.RemoveMember(ctx, "alice"))
	assert.Equal(t, http.MethodDelete, gotMethod)

	assert.False(t, dir.AddMember(ctx, "ghost", nil))
	out := dir.Remove(ctx, "ghost")
	assert.False(t, out.OK())
}

func TestGitHub_MissingOrganization_FailsWithoutRequests(t *testing.T) {
	var hits atomic.Int32
	dir := newLiveGitHub(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	ctx := context.Background()

	_, ok := dir.ListMembers(ctx)
	assert.False(t, ok)
	assert.False(t, dir.AddMember(ctx, "alice", nil))
	assert.False(t, dir.RemoveMember(ctx, "alice"))
	assert.False(t, dir.IsMember(ctx, "alice"))

	out := dir.Add(ctx, "alice", nil)
	assert.ErrorIs(t, out.Err, domain.ErrDirectoryNotConfigured)
	assert.Zero(t, hits.Load())
}
