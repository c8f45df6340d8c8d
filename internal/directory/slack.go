package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

const (
	SlackName = "slack"

	slackbotID      = "USLACKBOT"
	slackPageLimit  = 200
	userNotFoundErr = "users_not_found"
)

// SlackConfig configures the workspace directory.
type SlackConfig struct {
	Token           string
	TeamID          string
	DefaultChannels []string
	Mode            Mode
	// APIURL overrides the Web API root (tests). Defaults to slack.APIURL.
	APIURL      string
	CallTimeout time.Duration
	HTTPClient  *http.Client
}

// NewSlack returns the workspace directory. Members are keyed by email and
// compared case-insensitively.
func NewSlack(cfg SlackConfig, log zerolog.Logger) *Directory {
	if cfg.Mode == ModeDemo {
		b := &demoBackend{
			roster: []domain.DirectoryMember{
				{Identity: "admin@demo.com", Attributes: map[string]string{"id": "U123456", "real_name": "Admin User"}},
				{Identity: "user@demo.com", Attributes: map[string]string{"id": "U234567", "real_name": "Regular User"}},
				{Identity: "test@example.com", Attributes: map[string]string{"id": "U345678", "real_name": "Test User"}},
			},
			normalize: EmailIdentity,
			log:       log.With().Str("directory", SlackName).Logger(),
		}
		return newDirectory(SlackName, ModeDemo, EmailIdentity, b, cfg.CallTimeout, log)
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = slack.APIURL
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	channels := make([]string, 0, len(cfg.DefaultChannels))
	for _, ch := range cfg.DefaultChannels {
		if ch = strings.TrimSpace(ch); ch != "" {
			channels = append(channels, ch)
		}
	}

	b := &slackBackend{
		api:        slack.New(cfg.Token, slack.OptionAPIURL(apiURL), slack.OptionHTTPClient(httpClient)),
		http:       httpClient,
		apiURL:     apiURL,
		token:      cfg.Token,
		teamID:     strings.TrimSpace(cfg.TeamID),
		channelIDs: channels,
	}
	return newDirectory(SlackName, ModeLive, EmailIdentity, b, cfg.CallTimeout, log)
}

type slackBackend struct {
	api        *slack.Client
	http       *http.Client
	apiURL     string
	token      string
	teamID     string
	channelIDs []string
}

func (b *slackBackend) configured() error {
	if b.teamID == "" {
		return fmt.Errorf("%w: slack team id is empty", domain.ErrDirectoryNotConfigured)
	}
	return nil
}

// list pages through users.list without sleeping on rate limits; a limited
// page fails the whole listing.
func (b *slackBackend) list(ctx context.Context) ([]domain.DirectoryMember, error) {
	if err := b.configured(); err != nil {
		return nil, err
	}

	var users []slack.User
	p := b.api.GetUsersPaginated(slack.GetUsersOptionLimit(slackPageLimit))
	var err error
	for err == nil {
		p, err = p.Next(ctx)
		if err == nil {
			users = append(users, p.Users...)
		}
	}
	if err = p.Failure(err); err != nil {
		return nil, err
	}

	members := make([]domain.DirectoryMember, 0, len(users))
	for _, u := range users {
		if u.ID == "" || u.ID == slackbotID || u.Deleted || u.IsBot || u.Profile.Email == "" {
			continue
		}
		realName := u.Profile.RealName
		if realName == "" {
			realName = u.Name
		}
		// Invited users appear in users.list before they accept, so an
		// outstanding invite already counts as present.
		state := stateActive
		if u.IsInvitedUser {
			state = statePending
		}
		members = append(members, domain.DirectoryMember{
			Identity:   u.Profile.Email,
			Attributes: map[string]string{"id": u.ID, "real_name": realName, "state": state},
		})
	}
	return members, nil
}

func (b *slackBackend) check(ctx context.Context, identity string) (bool, error) {
	if err := b.configured(); err != nil {
		return false, err
	}
	u, err := b.api.GetUserByEmailContext(ctx, identity)
	if err != nil {
		if err.Error() == userNotFoundErr {
			return false, nil
		}
		return false, err
	}
	return u != nil && !u.Deleted, nil
}

func (b *slackBackend) add(ctx context.Context, identity string, attrs Attributes) error {
	if err := b.configured(); err != nil {
		return err
	}
	form := url.Values{}
	form.Set("team_id", b.teamID)
	form.Set("email", identity)
	if len(b.channelIDs) > 0 {
		form.Set("channel_ids", strings.Join(b.channelIDs, ","))
	}
	if name := strings.TrimSpace(attrs["real_name"]); name != "" {
		form.Set("real_name", name)
	}
	return b.adminCall(ctx, "admin.users.invite", form)
}

func (b *slackBackend) remove(ctx context.Context, identity string) error {
	if err := b.configured(); err != nil {
		return err
	}
	u, err := b.api.GetUserByEmailContext(ctx, identity)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if u == nil || u.ID == "" {
		return fmt.Errorf("lookup user: no id for %s", identity)
	}

	form := url.Values{}
	form.Set("team_id", b.teamID)
	form.Set("user_id", u.ID)
	return b.adminCall(ctx, "admin.users.remove", form)
}

// adminCall posts to an Enterprise Grid admin.* method, which the slack
// client package does not wrap.
func (b *slackBackend) adminCall(ctx context.Context, method string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL+method, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+b.token)

	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var body slack.SlackResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if !body.Ok {
		return fmt.Errorf("%s: %s", method, body.Error)
	}
	return nil
}
