package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/aestheticops/internal/cache"
	"github.com/dropDatabas3/aestheticops/internal/config"
	"github.com/dropDatabas3/aestheticops/internal/email"
	"github.com/dropDatabas3/aestheticops/internal/http/server"
	"github.com/dropDatabas3/aestheticops/internal/jwt"
	"github.com/dropDatabas3/aestheticops/internal/metrics"
	"github.com/dropDatabas3/aestheticops/internal/observability/logger"
	"github.com/dropDatabas3/aestheticops/internal/rate"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
	"github.com/dropDatabas3/aestheticops/internal/store"
	"github.com/dropDatabas3/aestheticops/internal/store/pg"
)

var version = "dev"

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
	)
	flag.Parse()

	if *flagEnvFile != "" && fileExists(*flagEnvFile) {
		_ = godotenv.Load(*flagEnvFile)
	}

	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" && fileExists("configs/config.yaml") {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		// el logger todavía no está configurado: usar el default
		logger.L().Fatal("config load failed", logger.Err(err))
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "aestheticops",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L().With(logger.Component("main"))

	if err := run(cfg); err != nil {
		log.Fatal("service stopped with error", logger.Err(err))
	}
	log.Info("service stopped")
}

func run(cfg *config.Config) error {
	log := logger.L().With(logger.Component("main"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─── Store ───
	repo, err := store.Open(ctx, store.Config{
		Driver:   cfg.Storage.Driver,
		DSN:      cfg.Storage.DSN,
		FSPath:   cfg.Storage.FS.Path,
		MaxConns: cfg.Storage.Postgres.MaxConns,
	})
	if err != nil {
		return err
	}
	defer repo.Close()
	log.Info("store ready", logger.String("driver", cfg.Storage.Driver))

	m := metrics.New()
	if pgStore, ok := repo.(*pg.UserStore); ok {
		m.PoolStats(pgStore.Stats)
	}

	// ─── Cache ───
	cacheClient, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		RedisAddr:  cfg.Cache.Redis.Addr,
		RedisDB:    cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.CacheTTL(),
	})
	if err != nil {
		return err
	}
	defer cacheClient.Close()

	// ─── Rate limiter ───
	var (
		limiter rate.Limiter
		memLim  *rate.MemoryLimiter
	)
	if cfg.RateEnabled() {
		switch strings.ToLower(cfg.Rate.Backend) {
		case "redis":
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
			defer client.Close()
			limiter = rate.NewRedisLimiter(client, cfg.Cache.Redis.Prefix+"rl:", cfg.Rate.MaxRequests, cfg.RateWindow())
		default:
			memLim = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindow())
			memLim.Start()
			defer memLim.Stop()
			m.BucketGauge(memLim.Len)
			limiter = memLim
		}
		log.Info("rate limiter enabled",
			logger.String("backend", cfg.Rate.Backend),
			logger.Int("max_requests", cfg.Rate.MaxRequests),
			logger.Duration(cfg.RateWindow()),
		)
	}

	// ─── Email ───
	var mailer email.Sender = email.Noop{}
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.TLS)
	} else {
		log.Warn("smtp not configured, welcome emails disabled")
	}

	blacklist, err := password.LoadBlacklist(cfg.Security.PasswordBlacklistPath)
	if err != nil {
		return err
	}

	codec := jwt.NewCodec(cfg.Session.Secret, cfg.Session.Issuer, cfg.SessionTTL())

	handler := server.BuildHandler(server.Deps{
		Config:    cfg,
		Repo:      repo,
		Codec:     codec,
		Cache:     cacheClient,
		Limiter:   limiter,
		Metrics:   m,
		Mailer:    mailer,
		Blacklist: blacklist,
		Version:   version,
	})
	srv := server.New(cfg.Server.Addr, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr), logger.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	})
	return g.Wait()
}
