package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/aestheticops/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/aestheticops/internal/http/errors"
	"github.com/dropDatabas3/aestheticops/internal/http/helpers"
	mw "github.com/dropDatabas3/aestheticops/internal/http/middlewares"
)

// LogoutController maneja POST /api/auth/logout. El token es stateless:
// cerrar sesión es borrar la cookie.
type LogoutController struct {
	cookie helpers.SessionCookie
}

func NewLogoutController(cookie helpers.SessionCookie) *LogoutController {
	return &LogoutController{cookie: cookie}
}

func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	c.cookie.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// SessionController maneja GET /api/auth/session.
type SessionController struct{}

func NewSessionController() *SessionController { return &SessionController{} }

// Session devuelve las claims de la sesión actual o 401.
func (c *SessionController) Session(w http.ResponseWriter, r *http.Request) {
	s := mw.GetSession(r.Context())
	if s == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.SessionResponse{User: dto.UserViewFromSession(*s)})
}
