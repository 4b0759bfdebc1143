// Command idvault serves the identity verification API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bpmonitor/idvault/pkg/audit"
	"github.com/bpmonitor/idvault/pkg/auth"
	"github.com/bpmonitor/idvault/pkg/config"
	"github.com/bpmonitor/idvault/pkg/fieldcrypt"
	"github.com/bpmonitor/idvault/pkg/httpapi"
	"github.com/bpmonitor/idvault/pkg/httpserver"
	"github.com/bpmonitor/idvault/pkg/identity"
	"github.com/bpmonitor/idvault/pkg/lockout"
	"github.com/bpmonitor/idvault/pkg/logger"
	"github.com/bpmonitor/idvault/pkg/notify"
	"github.com/bpmonitor/idvault/pkg/otp"
	"github.com/bpmonitor/idvault/pkg/pg"
	"github.com/bpmonitor/idvault/pkg/ratelimiter"
	"github.com/bpmonitor/idvault/pkg/secrets"
)

const (
	storePostgres = "postgres"
	storeMemory   = "memory"
)

type appConfig struct {
	Store string `env:"IDVAULT_STORE" envDefault:"postgres"`

	Log     logger.Config
	Secrets secrets.Config
	OTP     otp.Config
	Lockout lockout.Config
	Auth    auth.Config
	Notify  notify.Config
	HTTP    httpserver.Config
	Limits  ratelimiter.Limits
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "idvault:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	logOpts, err := cfg.Log.Options()
	if err != nil {
		return err
	}
	log := logger.New(append(logOpts,
		logger.WithContextExtractors(httpapi.RequestIDExtractor()),
		logger.WithRedactedKeys("password", "new_password", "otp"),
	)...)
	logger.SetAsDefault(log)

	ring, err := secrets.NewKeyringFromConfig(cfg.Secrets)
	if err != nil {
		return fmt.Errorf("master key: %w", err)
	}
	codec, err := fieldcrypt.FromKeyring(ring)
	if err != nil {
		return err
	}

	store, err := openBackend(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer store.close()

	challenges, err := otp.NewServiceFromKeyring(ring, cfg.OTP, otp.WithLogger(log))
	if err != nil {
		return err
	}
	challenges.Start(ctx)
	defer challenges.Close()

	dispatcher, err := notify.NewFromConfig(cfg.Notify,
		notify.WithLogger(log),
		notify.WithCodeTTL(cfg.OTP.TTL),
	)
	if err != nil {
		return err
	}

	limits := ratelimiter.NewMemoryStore()
	defer limits.Close()
	perContact, err := ratelimiter.NewBucket(limits, cfg.Limits.Contact())
	if err != nil {
		return fmt.Errorf("contact rate limit: %w", err)
	}
	perClient, err := ratelimiter.NewBucket(limits, cfg.Limits.Client())
	if err != nil {
		return fmt.Errorf("client rate limit: %w", err)
	}

	users := identity.NewDirectory(store.users, codec,
		identity.WithCountryCode(challenges.Config().CountryCode),
	)
	recorder := audit.NewRecorder(store.events, audit.WithRequestIDExtractor(requestID))
	authSvc := auth.NewService(challenges, users, dispatcher, append(cfg.Auth.Options(),
		auth.WithLogger(log),
		auth.WithLockoutPolicy(lockout.New(cfg.Lockout)),
		auth.WithRequestLimiter(perContact),
		auth.WithAuditor(recorder),
	)...)

	router := httpapi.Router(httpapi.RouterOptions{
		Auth:      httpapi.NewHandler(authSvc, httpapi.WithLogger(log), httpapi.WithOTPDigits(cfg.OTP.Digits)),
		Liveness:  httpserver.LivenessHandler(),
		Readiness: httpserver.ReadinessHandler(log, cfg.HTTP.ReadHeaderTimeout, store.checks),
		Logger:    log,

		ClientLimiter: perClient,
		ClientKey:     ratelimiter.ClientIP(cfg.Limits.TrustProxy),
	})

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}

func requestID(ctx context.Context) (string, bool) {
	id := httpapi.RequestIDFromContext(ctx)
	return id, id != ""
}

type backend struct {
	users  identity.Store
	events audit.Storage
	checks map[string]httpserver.Check
	close  func()
}

func openBackend(ctx context.Context, kind string, log *slog.Logger) (*backend, error) {
	switch kind {
	case storeMemory:
		log.Warn("using in-memory identity store, data is lost on restart")
		return &backend{
			users:  identity.NewMemoryStore(),
			events: audit.NewMemoryStorage(),
			close:  func() {},
		}, nil

	case storePostgres:
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, err
		}
		if pgCfg.Migrate {
			auditCfg := pgCfg
			auditCfg.MigrationsTable = audit.MigrationsTable
			if err := errors.Join(
				pg.Migrate(ctx, pool, pgCfg, identity.Migrations, log),
				pg.Migrate(ctx, pool, auditCfg, audit.Migrations, log),
			); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &backend{
			users:  identity.NewPostgresStore(pool),
			events: audit.NewPostgresStorage(pool),
			checks: map[string]httpserver.Check{"postgres": pg.Healthcheck(pool)},
			close:  pool.Close,
		}, nil
	}

	return nil, errors.New("unknown IDVAULT_STORE " + kind)
}
