package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/aestheticops/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/aestheticops/internal/http/errors"
	"github.com/dropDatabas3/aestheticops/internal/http/helpers"
	svc "github.com/dropDatabas3/aestheticops/internal/http/services/auth"
	"github.com/dropDatabas3/aestheticops/internal/observability/logger"
)

// RegisterController maneja POST /api/auth/register.
type RegisterController struct {
	service *svc.RegisterService
}

func NewRegisterController(service *svc.RegisterService) *RegisterController {
	return &RegisterController{service: service}
}

type registerResponse struct {
	User    dto.UserView `json:"user"`
	Message string       `json:"message"`
}

func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	var req dto.RegisterRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	u, err := c.service.Register(ctx, req)
	if err != nil {
		appErr := mapServiceError(err)
		if appErr.HTTPStatus >= 500 {
			log.Error("register failed", logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, registerResponse{
		User:    dto.UserViewFrom(u),
		Message: "Usuario creado exitosamente",
	})
}
