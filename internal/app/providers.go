package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/teamroster/server/internal/module/account"
	"github.com/teamroster/server/internal/module/identity"
	"github.com/teamroster/server/internal/shared/cache"
	"github.com/teamroster/server/internal/shared/config"
	"github.com/teamroster/server/internal/shared/database"
	"github.com/teamroster/server/internal/shared/events"
	"github.com/teamroster/server/internal/shared/logger"
	"github.com/teamroster/server/internal/shared/metrics"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideZapLogger,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideMetricsRegistry,
	ProvideMetrics,
	ProvideEventBus,
	wire.Bind(new(events.Publisher), new(*events.Bus)),
)

// ProvideLogger creates the slog logger used by HTTP middleware.
func ProvideLogger(cfg *config.Config) *logger.Logger {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideZapLogger creates the zap logger used by domain services.
func ProvideZapLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init zap logger: %w", err)
	}
	return zapLog, func() { _ = zapLog.Sync() }, nil
}

// ProvideDatabase opens the database and, if enabled, migrates the schema.
func ProvideDatabase(cfg *config.Config, zapLog *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			zapLog.Warn("close database", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, account.Models()...); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return db, cleanup, nil
}

// ProvideRedisClient connects to Redis. It returns nil when Redis is not
// configured or unreachable; the invite limiter then runs in memory.
func ProvideRedisClient(cfg *config.Config, zapLog *zap.Logger) (goredis.UniversalClient, func()) {
	if cfg.Redis.Address == "" {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		zapLog.Warn("redis unavailable, falling back to in-memory rate limiting", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = cache.Close(client) }
}

// ProvideMetricsRegistry creates the registry served on /metrics.
func ProvideMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics registers application metrics. Nil when disabled.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) *metrics.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.New(cfg.Metrics.Namespace, reg)
}

// ProvideEventBus creates the domain event bus.
func ProvideEventBus(zapLog *zap.Logger) *events.Bus {
	return events.NewBus(zapLog)
}

// ===== Identity Providers =====

// IdentitySet provides identity token verification.
var IdentitySet = wire.NewSet(
	ProvideVerifier,
)

// ProvideVerifier creates the identity token verifier.
func ProvideVerifier(cfg *config.Config) *identity.Verifier {
	return identity.NewVerifier(cfg.Identity.JWTSecret, cfg.Identity.Issuer)
}

// ===== Account Providers =====

// AccountSet provides the membership module.
var AccountSet = wire.NewSet(
	ProvideAccountConfig,
	ProvideAccountOptions,
	account.NewRepository,
	ProvideHasher,
	ProvideEmailValidator,
	ProvideInviteLimiter,
	ProvideNotifier,
	ProvideMembershipService,
	ProvideInviteService,
	ProvideActivityLogger,
	account.NewHandler,
)

// AccountOptions are the options shared by the account services.
type AccountOptions []account.Option

// ProvideAccountConfig maps process configuration onto the module config.
func ProvideAccountConfig(cfg *config.Config) (*account.Config, error) {
	accountCfg := account.DefaultConfig()
	accountCfg.Salt = cfg.Membership.Salt
	accountCfg.InviteExpiry = cfg.Membership.InviteExpiry()
	accountCfg.MaxRosterRetries = cfg.Membership.MaxRosterRetries
	accountCfg.InviteRateLimit = cfg.Membership.InviteRateLimit
	if err := accountCfg.Validate(); err != nil {
		return nil, err
	}
	return accountCfg, nil
}

// ProvideAccountOptions attaches metrics and the email validator.
func ProvideAccountOptions(m *metrics.Metrics, validator account.EmailValidator) AccountOptions {
	opts := AccountOptions{account.WithEmailValidator(validator)}
	if m != nil {
		opts = append(opts, account.WithMetrics(m))
	}
	return opts
}

// ProvideHasher creates the invite email hasher.
func ProvideHasher(cfg *account.Config) *account.Hasher {
	return account.NewHasher(cfg.Salt)
}

// ProvideEmailValidator creates the offline email syntax check.
func ProvideEmailValidator() account.EmailValidator {
	return account.NewSyntaxValidator(false)
}

// ProvideInviteLimiter picks Redis or in-memory rate limiting.
func ProvideInviteLimiter(cfg *account.Config, redis goredis.UniversalClient) account.InviteLimiter {
	return account.NewInviteLimiter(redis, cfg.InviteRateLimit, cfg.InviteRateWindow, time.Now)
}

// ProvideNotifier creates the invite mailer. Without a mail host invites
// are only logged.
func ProvideNotifier(cfg *config.Config, zapLog *zap.Logger) (account.Notifier, error) {
	if cfg.Mail.Host == "" {
		zapLog.Warn("mail.host not set, invite emails will not be sent")
		return account.NewNopNotifier(cfg.Membership.InviteURL, zapLog), nil
	}

	tmpl, err := account.NewInviteTemplate(cfg.Mail.TemplateFormat, cfg.Mail.Subject, cfg.Mail.Body)
	if err != nil {
		return nil, fmt.Errorf("invite template: %w", err)
	}

	smtp, err := account.NewSMTPNotifier(account.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		SSL:      cfg.Mail.SSL,
		AuthType: cfg.Mail.AuthType,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, tmpl, cfg.Membership.SiteName, cfg.Membership.InviteURL, zapLog)
	if err != nil {
		return nil, err
	}

	return account.NewBreakerNotifier(smtp, account.BreakerConfig{
		ConsecutiveFailures: cfg.Mail.BreakerFailures,
		OpenTimeout:         cfg.Mail.BreakerTimeout,
	}, zapLog), nil
}

// ProvideMembershipService creates the membership service.
func ProvideMembershipService(repo account.Repository, bus events.Publisher, cfg *account.Config, zapLog *zap.Logger, opts AccountOptions) *account.MembershipService {
	return account.NewMembershipService(repo, bus, cfg, zapLog, opts...)
}

// ProvideInviteService creates the invite service.
func ProvideInviteService(
	repo account.Repository,
	members *account.MembershipService,
	hasher *account.Hasher,
	notifier account.Notifier,
	limiter account.InviteLimiter,
	validator account.EmailValidator,
	bus events.Publisher,
	cfg *account.Config,
	zapLog *zap.Logger,
	opts AccountOptions,
) *account.InviteService {
	return account.NewInviteService(account.InviteDeps{
		Repo:      repo,
		Members:   members,
		Hasher:    hasher,
		Notifier:  notifier,
		Limiter:   limiter,
		Validator: validator,
		Publisher: bus,
	}, cfg, zapLog, opts...)
}

// ProvideActivityLogger creates the audit handler and subscribes it.
func ProvideActivityLogger(repo account.Repository, bus *events.Bus, zapLog *zap.Logger) *account.ActivityLogger {
	activity := account.NewActivityLogger(repo, zapLog)
	bus.Register(activity)
	return activity
}

// AppSet is the complete provider set.
var AppSet = wire.NewSet(
	InfraSet,
	IdentitySet,
	AccountSet,
)
