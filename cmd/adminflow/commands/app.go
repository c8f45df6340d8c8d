package commands

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
	"github.com/adminflow/adminflow-api/internal/core/service"
	"github.com/adminflow/adminflow-api/internal/directory"
	"github.com/adminflow/adminflow-api/internal/infrastructure/config"
	mongostore "github.com/adminflow/adminflow-api/internal/infrastructure/db/mongo"
	redisstore "github.com/adminflow/adminflow-api/internal/infrastructure/db/redis"
	"github.com/adminflow/adminflow-api/internal/infrastructure/mail"
	"github.com/adminflow/adminflow-api/internal/infrastructure/queue"
	"github.com/adminflow/adminflow-api/internal/reconcile"
	"github.com/adminflow/adminflow-api/pkg/logger"
)

const closeTimeout = 10 * time.Second

// app is the wired dependency graph shared by serve and sync.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	mongo *mongodrv.Client
	db    *mongodrv.Database
	redis *goredis.Client

	github *directory.Directory
	slack  *directory.Directory
	sender *mail.Sender
	mailer *queue.Dispatcher

	auth          *service.AuthService
	registrations ports.RegistrationService
	sync          ports.SyncService
	annualUpdate  ports.AnnualUpdateService
	teams         ports.TeamService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "adminflow",
	})

	a := &app{cfg: cfg, log: log}

	a.mongo, a.db, err = mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "adminflow",
	})
	if err != nil {
		return nil, err
	}

	a.redis, err = redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	users := mongostore.NewUserRepository(a.db)
	registrations := mongostore.NewRegistrationRepository(a.db)
	annualUpdates := mongostore.NewAnnualUpdateRepository(a.db)
	teams := mongostore.NewTeamRepository(a.db)
	runs := mongostore.NewSyncRunRepository(a.db)
	accounts := mongostore.NewAuthRepository(a.db)

	if err := mongostore.EnsureIndexes(ctx, users, registrations, annualUpdates, teams, runs, accounts); err != nil {
		a.close()
		return nil, err
	}

	a.github, err = directory.NewGitHub(directory.GitHubConfig{
		Token:        cfg.GitHub.Token,
		Organization: cfg.GitHub.Organization,
		Mode:         directory.DetectMode(cfg.GitHub.Token, directory.GitHubPlaceholderPrefix),
		CallTimeout:  cfg.Sync.CallTimeout,
	}, logger.Component("directory"))
	if err != nil {
		a.close()
		return nil, err
	}
	a.slack = directory.NewSlack(directory.SlackConfig{
		Token:           cfg.Slack.Token,
		TeamID:          cfg.Slack.TeamID,
		DefaultChannels: cfg.Slack.DefaultChannels,
		Mode:            directory.DetectMode(cfg.Slack.Token, directory.SlackPlaceholderPrefix),
		CallTimeout:     cfg.Sync.CallTimeout,
	}, logger.Component("directory"))

	a.sender = mail.NewSender(mail.Config{
		APIKey:  cfg.Mail.APIKey,
		Domain:  cfg.Mail.Domain,
		From:    cfg.Mail.From,
		Mode:    directory.DetectMode(cfg.Mail.APIKey, mail.PlaceholderPrefix),
		APIBase: cfg.Mail.APIBase,
	}, log)
	a.mailer = queue.NewDispatcher(cfg.Mail.Workers, a.sender, logger.Component("mail-queue"))

	a.auth = service.NewAuthService(accounts, cfg.JWTSecret, 24*time.Hour)
	a.registrations = service.NewRegistrationService(
		registrations, users, a.github, a.mailer,
		service.RegistrationConfig{AdminEmail: cfg.Mail.AdminEmail, DashboardURL: cfg.URLs.AdminDashboard},
		logger.Component("registrations"),
	)
	a.sync = service.NewSyncService(
		users,
		runs,
		redisstore.NewSyncLock(a.redis, cfg.Sync.LockTTL, logger.Component("sync-lock")),
		reconcile.New(cfg.Sync.Concurrency, logger.Component("reconcile")),
		[]service.SyncTarget{service.GitHubTarget(a.github), service.SlackTarget(a.slack)},
		logger.Component("sync"),
	)
	a.annualUpdate = service.NewAnnualUpdateService(
		annualUpdates, users, a.mailer,
		service.AnnualUpdateConfig{JWTSecret: cfg.JWTSecret, AppURL: cfg.URLs.App, TokenTTL: cfg.Sync.AnnualUpdateTTL},
		logger.Component("annual-update"),
	)
	a.teams = service.NewTeamService(teams)

	log.Info().
		Str("github", a.github.Mode().String()).
		Str("slack", a.slack.Mode().String()).
		Bool("mail_demo", a.sender.Demo()).
		Msg("integrations configured")

	return a, nil
}

// modes reports each integration's demo/live mode for the liveness probe.
func (a *app) modes() map[string]string {
	mailMode := directory.ModeLive
	if a.sender.Demo() {
		mailMode = directory.ModeDemo
	}
	return map[string]string{
		directory.GitHubName: a.github.Mode().String(),
		directory.SlackName:  a.slack.Mode().String(),
		"mail":               mailMode.String(),
	}
}

// bootstrapAdmin creates the first dashboard account when ADMIN_PASSWORD is set.
func (a *app) bootstrapAdmin(ctx context.Context) error {
	if a.cfg.Admin.Password == "" {
		return nil
	}
	account, err := a.auth.EnsureAccount(ctx, a.cfg.Mail.AdminEmail, a.cfg.Admin.Password, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	a.log.Info().Str("email", account.Email).Msg("admin account ready")
	return nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("redis close")
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			a.log.Warn().Err(err).Msg("mongo disconnect")
		}
	}
}
