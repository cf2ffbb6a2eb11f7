package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/aestheticops/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/aestheticops/internal/http/errors"
	"github.com/dropDatabas3/aestheticops/internal/http/helpers"
	svc "github.com/dropDatabas3/aestheticops/internal/http/services/auth"
	"github.com/dropDatabas3/aestheticops/internal/observability/logger"
)

// LoginController maneja POST /api/auth/login.
type LoginController struct {
	auth   *svc.Authenticator
	tokens TokenEncoder
	cookie helpers.SessionCookie
}

func NewLoginController(auth *svc.Authenticator, tokens TokenEncoder, cookie helpers.SessionCookie) *LoginController {
	return &LoginController{auth: auth, tokens: tokens, cookie: cookie}
}

// Login verifica credenciales, emite el token y lo deja en la cookie de sesión.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	session, err := c.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		appErr := mapServiceError(err)
		if appErr.HTTPStatus >= 500 {
			log.Error("login failed", logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	token, expires, err := c.tokens.Encode(*session)
	if err != nil {
		log.Error("session token issue failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	c.cookie.Set(w, token, expires)
	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expires.UTC(),
		User:      dto.UserViewFromSession(*session),
	})
	log.Info("login succeeded", logger.UserID(session.ID))
}
