// Package router arma el árbol de rutas HTTP.
package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/aestheticops/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/aestheticops/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/aestheticops/internal/http/errors"
	mw "github.com/dropDatabas3/aestheticops/internal/http/middlewares"
)

// Deps contiene los controllers y handlers a montar.
type Deps struct {
	Auth    *authctrl.Controllers
	Health  *healthctrl.HealthController
	Metrics http.Handler // nil = sin /metrics

	// StaticDir sirve la UI compilada en /*. Vacío = sin UI.
	StaticDir string
}

// New crea el router. Las rutas /api/* responden siempre JSON, incluso para
// 404 y 405.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if d.Health != nil {
		r.Get("/healthz", d.Health.Healthz)
		r.Get("/readyz", d.Health.Readyz)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.NotFound(routeNotFound)

		if d.Auth != nil {
			registerAuthRoutes(r, d.Auth)
		}
	})

	if d.StaticDir != "" {
		r.NotFound(staticHandler(d.StaticDir).ServeHTTP)
	} else {
		r.NotFound(routeNotFound)
	}
	return r
}

func registerAuthRoutes(r chi.Router, c *authctrl.Controllers) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", c.Login.Login)
		r.Post("/logout", c.Logout.Logout)
		r.Get("/session", c.Session.Session)
		r.Post("/register", c.Register.Register)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession())
		r.Get("/users/profile", c.Profile.Get)
		r.Put("/users/profile", c.Profile.Update)
	})
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteError(w, httperrors.ErrRouteNotFound)
}

// staticHandler sirve archivos de dir. Las rutas sin extensión que no existen
// caen en index.html (rutas del cliente).
func staticHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			routeNotFound(w, r)
			return
		}
		p := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(p); err != nil && filepath.Ext(r.URL.Path) == "" {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	})
}
