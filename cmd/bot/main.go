package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/adapter/discord"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/adapter/httpserver"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/adapter/ledger"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/adapter/metrics"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/adapter/postgres"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/adapter/redis"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/app"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/platform/config"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/platform/crypto"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/platform/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
)

const (
	shutdownTimeout    = 15 * time.Second
	redisBreakerDelay  = 30 * time.Second
	stateMessageBuffer = 200
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupSettings(cfg *config.Config) *config.Settings {
	settings, err := config.LoadSettings(cfg.SettingsFile, app.ValidateTemplate)
	if err != nil {
		slog.Error("Failed to load bot settings", "file", cfg.SettingsFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Bot settings loaded", "file", cfg.SettingsFile, "rules", settings.Rules.Len(), "escrow_time", settings.EscrowTime)
	return settings
}

func setupCrypto(cfg *config.Config) crypto.Service {
	if cfg.CredentialEncryptionKey == "" {
		slog.Warn("Ledger credentials are stored unencrypted; set CREDENTIAL_ENCRYPTION_KEY")
		return crypto.NoopService{}
	}
	svc, err := crypto.NewAesGcmService(cfg.CredentialEncryptionKey)
	if err != nil {
		slog.Error("Failed to create crypto service", "error", err)
		os.Exit(1)
	}
	return svc
}

func setupDB(cfg *config.Config, reg prometheus.Registerer) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.NewMetricsTracer(metrics.NewDBMetrics(reg)))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

// setupRedis returns a nil client when REDIS_URL is unset. The activity stream
// is optional, so an unreachable Redis at startup is logged and skipped.
func setupRedis(cfg *config.Config, reg prometheus.Registerer) (*goredis.Client, *redis.BreakerHook) {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, kudos activity stream disabled")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	breaker := redis.NewBreakerHook(redisBreakerDelay)
	client, err := redis.NewClient(ctx, cfg.RedisURL, redis.NewMetricsHook(metrics.NewRedisMetrics(reg)), breaker)
	if err != nil {
		slog.Warn("Redis unavailable, kudos activity stream disabled", "error", err)
		return nil, nil
	}
	return client, breaker
}

func setupDiscord(cfg *config.Config) *discordgo.Session {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		slog.Error("Failed to create Discord session", "error", err)
		os.Exit(1)
	}
	session.State.MaxMessageCount = stateMessageBuffer
	return session
}

func healthChecks(pool *pgxpool.Pool, ledgerClient *ledger.Client, redisClient *goredis.Client, redisBreaker *redis.BreakerHook) []httpserver.HealthCheck {
	checks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "ledger_breaker", Check: ledgerClient.CheckBreaker},
	}
	if redisClient != nil {
		checks = append(checks,
			httpserver.HealthCheck{Name: "redis", Optional: true, Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}},
			httpserver.HealthCheck{Name: "redis_breaker", Optional: true, Check: redisBreaker.Check},
		)
	}
	return checks
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	settings := setupSettings(cfg)

	messages, err := app.NewMessages(settings.DefaultMessage, settings.EscrowTime)
	if err != nil {
		slog.Error("Failed to prepare messages", "error", err)
		os.Exit(1)
	}

	reg := metrics.NewRegistry()

	pool := setupDB(cfg, reg)
	defer pool.Close()

	redisClient, redisBreaker := setupRedis(cfg, reg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	accountRepo := postgres.NewAccountRepo(pool, setupCrypto(cfg))
	escrowRepo := postgres.NewEscrowRepo(pool)
	ledgerClient := ledger.NewClient(cfg.LedgerAPIURL, cfg.LedgerTimeout, metrics.NewLedgerMetrics(reg))

	// Leave the interface nil rather than holding a typed nil.
	var activity domain.ActivityPublisher
	if redisClient != nil {
		activity = redis.NewActivityStream(redisClient)
	}

	session := setupDiscord(cfg)
	notifier := discord.NewNotifier(session, cfg.DMRateLimit, metrics.NewNotificationMetrics(reg))

	engine := app.NewEngine(app.EngineDeps{
		Classifier: app.NewClassifier(settings.Rules),
		Accounts:   accountRepo,
		Escrow:     escrowRepo,
		Ledger:     ledgerClient,
		Notifier:   notifier,
		Retractor:  discord.NewRetractor(session),
		Activity:   activity,
		Messages:   messages,
		Clock:      clock,
	})
	accountSvc := app.NewAccountService(accountRepo, escrowRepo, ledgerClient)

	bot := discord.NewBot(session, session.State, engine, accountSvc, metrics.NewReactionMetrics(reg), discord.Config{
		AppID:         cfg.DiscordAppID,
		GuildID:       cfg.DiscordGuildID,
		Rules:         settings.Rules,
		UseEmojiNames: settings.UseEmojiNames,
		MaxConcurrent: int64(cfg.MaxConcurrentReactions),
		Status: discord.StatusConfig{
			Enabled:   settings.StatusNotifications.Enabled,
			ChannelID: settings.StatusNotifications.ChannelID,
			Up:        settings.StatusNotifications.Up,
			Down:      settings.StatusNotifications.Down,
		},
	})
	bot.Register(session)

	srv := httpserver.NewServer(cfg.Port, reg, metrics.NewHTTPMetrics(reg), clock, healthChecks(pool, ledgerClient, redisClient, redisBreaker))
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("Ops server error", "error", err)
			os.Exit(1)
		}
	}()

	if err := session.Open(); err != nil {
		slog.Error("Failed to connect to Discord", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutdown signal received, cleaning up...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bot.AnnounceDown(shutdownCtx)
	if err := bot.Close(shutdownCtx); err != nil {
		slog.Error("Reaction drain incomplete", "error", err)
	}
	if err := notifier.Close(shutdownCtx); err != nil {
		slog.Error("Direct message drain incomplete", "error", err)
	}
	if err := session.Close(); err != nil {
		slog.Error("Discord session close error", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
