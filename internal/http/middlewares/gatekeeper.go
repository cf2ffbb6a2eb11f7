package middlewares

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/aestheticops/internal/claims"
	httperrors "github.com/dropDatabas3/aestheticops/internal/http/errors"
	"github.com/dropDatabas3/aestheticops/internal/http/helpers"
	"github.com/dropDatabas3/aestheticops/internal/metrics"
	"github.com/dropDatabas3/aestheticops/internal/observability/logger"
	"github.com/dropDatabas3/aestheticops/internal/rate"
	"github.com/dropDatabas3/aestheticops/internal/util"
)

// SessionDecoder valida un token de sesión y devuelve sus claims.
type SessionDecoder interface {
	Decode(token string) (*claims.Session, error)
}

type GatekeeperConfig struct {
	Decoder    SessionDecoder
	CookieName string

	// Limiter nil desactiva el rate limiting.
	Limiter rate.Limiter
	Metrics *metrics.Metrics

	// APIPrefix delimita las rutas limitadas. Default "/api/".
	APIPrefix string
	// Whitelist son paths exactos excluidos del límite.
	Whitelist []string

	// LoginPath y HomePath son los destinos de las redirecciones de la UI.
	// Defaults "/login" y "/dashboard".
	LoginPath string
	HomePath  string
	// GuestOnly son las entradas que un usuario con sesión no debe ver.
	// Default: LoginPath y "/register".
	GuestOnly []string
}

func (c *GatekeeperConfig) defaults() {
	if c.APIPrefix == "" {
		c.APIPrefix = "/api/"
	}
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
	if c.HomePath == "" {
		c.HomePath = "/dashboard"
	}
	if c.GuestOnly == nil {
		c.GuestOnly = []string{c.LoginPath, "/register"}
	}
}

// RateIdentity devuelve la clave de rate limiting: email del principal, si no
// la IP del cliente con prefijo "ip:", si no "anonymous". Detrás de un NAT
// compartido todos los anónimos comparten bucket.
func RateIdentity(s *claims.Session, r *http.Request) string {
	if s != nil && s.Email != "" {
		return s.Email
	}
	if ip := helpers.ClientIP(r); ip != "" {
		return "ip:" + ip
	}
	return "anonymous"
}

// Gatekeeper intercepta cada request: decodifica la sesión (si hay), aplica el
// rate limit a /api/* y hace las redirecciones de la UI.
func Gatekeeper(cfg GatekeeperConfig) Middleware {
	cfg.defaults()

	whitelist := make(map[string]struct{}, len(cfg.Whitelist))
	for _, p := range cfg.Whitelist {
		whitelist[p] = struct{}{}
	}
	guestOnly := make(map[string]struct{}, len(cfg.GuestOnly))
	for _, p := range cfg.GuestOnly {
		guestOnly[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.From(ctx).With(logger.Component("gatekeeper"))

			var session *claims.Session
			if tok := helpers.TokenFromRequest(r, cfg.CookieName); tok != "" && cfg.Decoder != nil {
				s, err := cfg.Decoder.Decode(tok)
				if err != nil {
					log.Debug("session token rejected", logger.Err(err))
				} else {
					session = s
					ctx = WithSession(ctx, s)
					ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(s.ID)))
					r = r.WithContext(ctx)
				}
			}

			path := r.URL.Path

			if strings.HasPrefix(path, cfg.APIPrefix) {
				if _, skip := whitelist[path]; !skip && cfg.Limiter != nil {
					if !allow(w, r, cfg, session, log) {
						return
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := guestOnly[path]; ok && session != nil {
				http.Redirect(w, r, cfg.HomePath, http.StatusTemporaryRedirect)
				return
			}
			if session == nil && (path == cfg.HomePath || strings.HasPrefix(path, cfg.HomePath+"/")) {
				target := cfg.LoginPath + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// allow consulta el limiter y escribe los headers X-RateLimit-*. Devuelve
// false si ya respondió 429. Un error del limiter deja pasar el request.
func allow(w http.ResponseWriter, r *http.Request, cfg GatekeeperConfig, s *claims.Session, log *zap.Logger) bool {
	identity := RateIdentity(s, r)
	res, err := cfg.Limiter.Allow(r.Context(), identity)
	if err != nil {
		log.Warn("rate limiter unavailable, allowing request", logger.Identity(util.MaskIdentity(identity)), logger.Err(err))
		cfg.Metrics.RateDecision("error")
		return true
	}

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetTime.Unix(), 10))

	if !res.Allowed {
		h.Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
		cfg.Metrics.RateDecision("rejected")
		log.Info("rate limit exceeded",
			logger.Identity(util.MaskIdentity(identity)),
			logger.ResetAt(res.ResetTime),
		)
		httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
		return false
	}
	cfg.Metrics.RateDecision("allowed")
	return true
}
