// Package mail delivers notification emails through Mailgun.
package mail

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/rs/zerolog"

	"github.com/adminflow/adminflow-api/internal/api/metrics"
	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
	"github.com/adminflow/adminflow-api/internal/directory"
)

// PlaceholderPrefix marks a Mailgun key that selects demo mode.
const PlaceholderPrefix = "placeholder"

const (
	defaultFrom    = "noreply@example.com"
	defaultTimeout = 15 * time.Second
)

type Config struct {
	APIKey  string
	Domain  string
	From    string
	Mode    directory.Mode
	APIBase string // overrides the Mailgun endpoint, e.g. the EU region
	Timeout time.Duration
}

// Sender implements ports.EmailSender. In demo mode messages are logged
// instead of sent.
type Sender struct {
	mg      *mailgun.MailgunImpl
	from    string
	demo    bool
	timeout time.Duration
	log     zerolog.Logger
}

var _ ports.EmailSender = (*Sender)(nil)

func NewSender(cfg Config, log zerolog.Logger) *Sender {
	s := &Sender{
		from:    cfg.From,
		demo:    cfg.Mode == directory.ModeDemo,
		timeout: cfg.Timeout,
		log:     log.With().Str("component", "mail").Logger(),
	}
	if s.from == "" {
		s.from = defaultFrom
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if !s.demo {
		mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
		if cfg.APIBase != "" {
			mg.SetAPIBase(cfg.APIBase)
		}
		mg.SetClient(&http.Client{Timeout: s.timeout})
		s.mg = mg
	}
	return s
}

// Demo reports whether messages are only logged.
func (s *Sender) Demo() bool { return s.demo }

func (s *Sender) Send(ctx context.Context, email domain.Email) bool {
	log := s.log.With().
		Strs("to", email.To).
		Str("subject", email.Subject).
		Logger()

	if len(email.To) == 0 {
		log.Warn().Msg("email has no recipients, dropped")
		metrics.EmailsSentTotal.WithLabelValues("failed").Inc()
		return false
	}

	if s.demo {
		log.Info().
			Str("from", s.from).
			Str("text", email.Text).
			Bool("has_html", email.HTML != "").
			Msg("[DEMO] email not sent")
		metrics.EmailsSentTotal.WithLabelValues("sent").Inc()
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg := s.mg.NewMessage(s.from, email.Subject, email.Text, email.To...)
	if email.HTML != "" {
		msg.SetHtml(email.HTML)
	}

	_, id, err := s.mg.Send(ctx, msg)
	if err != nil {
		log.Error().Err(err).Msg("email delivery failed")
		metrics.EmailsSentTotal.WithLabelValues("failed").Inc()
		return false
	}

	log.Info().Str("message_id", strings.Trim(id, "<>")).Msg("email sent")
	metrics.EmailsSentTotal.WithLabelValues("sent").Inc()
	return true
}
