// Package server arma el http.Handler completo a partir de las dependencias
// ya construidas.
package server

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/aestheticops/internal/cache"
	"github.com/dropDatabas3/aestheticops/internal/config"
	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	"github.com/dropDatabas3/aestheticops/internal/email"
	authctrl "github.com/dropDatabas3/aestheticops/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/aestheticops/internal/http/controllers/health"
	"github.com/dropDatabas3/aestheticops/internal/http/helpers"
	mw "github.com/dropDatabas3/aestheticops/internal/http/middlewares"
	"github.com/dropDatabas3/aestheticops/internal/http/router"
	authsvc "github.com/dropDatabas3/aestheticops/internal/http/services/auth"
	"github.com/dropDatabas3/aestheticops/internal/jwt"
	"github.com/dropDatabas3/aestheticops/internal/metrics"
	"github.com/dropDatabas3/aestheticops/internal/observability/logger"
	"github.com/dropDatabas3/aestheticops/internal/rate"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
)

// Deps son las dependencias de infraestructura ya inicializadas.
type Deps struct {
	Config *config.Config
	Repo   repository.UserRepository
	Codec  *jwt.Codec

	Cache     cache.Client        // opcional
	Limiter   rate.Limiter        // nil = sin rate limiting
	Metrics   *metrics.Metrics    // opcional
	Mailer    email.Sender        // opcional
	Blacklist *password.Blacklist // opcional
	Hash      password.Params     // zero = password.Default

	Version string
}

// BuildHandler compone services, controllers, router y la cadena global de
// middlewares.
func BuildHandler(d Deps) http.Handler {
	cfg := d.Config
	pp := cfg.Security.PasswordPolicy

	services := authsvc.NewServices(authsvc.Deps{
		Repo:    d.Repo,
		Hash:    d.Hash,
		Metrics: d.Metrics,
		Policy: password.Policy{
			MinLength:     pp.MinLength,
			RequireUpper:  pp.RequireUpper,
			RequireLower:  pp.RequireLower,
			RequireDigit:  pp.RequireDigit,
			RequireSymbol: pp.RequireSymbol,
		},
		Blacklist:   d.Blacklist,
		Mailer:      d.Mailer,
		TrialPeriod: cfg.TrialPeriod(),
		DefaultRole: cfg.Register.DefaultRole,
		Cache:       d.Cache,
		CacheTTL:    cfg.CacheTTL(),
	})

	cookie := helpers.SessionCookie{
		Name:     cfg.Session.CookieName,
		Domain:   cfg.Session.Domain,
		Secure:   cfg.Session.Secure,
		SameSite: cfg.Session.SameSite,
	}

	checks := map[string]healthctrl.Pinger{"store": d.Repo}
	if d.Cache != nil {
		checks["cache"] = d.Cache
	}

	var metricsHandler http.Handler
	if d.Metrics != nil {
		metricsHandler = d.Metrics.Handler()
	}

	routes := router.New(router.Deps{
		Auth:      authctrl.NewControllers(services, d.Codec, cookie),
		Health:    healthctrl.NewHealthController(d.Version, checks),
		Metrics:   metricsHandler,
		StaticDir: cfg.Server.StaticDir,
	})

	limiter := d.Limiter
	if !cfg.RateEnabled() {
		limiter = nil
	}

	// config.Load ya validó la lista; acá un error solo puede venir de un
	// Config armado a mano y se trata como "sin proxies".
	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		logger.L().Warn("ignoring server.trusted_proxies", logger.Err(err))
		proxies = nil
	}

	return mw.Chain(routes,
		mw.WithClientIP(helpers.TrustedProxies(proxies)),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithRecover(),
		mw.WithMetrics(d.Metrics),
		mw.WithSecurityHeaders(),
		mw.WithCORS(cfg.Server.CORSAllowedOrigins),
		mw.Gatekeeper(mw.GatekeeperConfig{
			Decoder:    d.Codec,
			CookieName: cfg.Session.CookieName,
			Limiter:    limiter,
			Metrics:    d.Metrics,
		}),
	)
}

// New crea el *http.Server con timeouts razonables.
func New(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
