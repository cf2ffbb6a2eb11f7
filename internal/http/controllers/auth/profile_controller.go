package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/aestheticops/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/aestheticops/internal/http/errors"
	"github.com/dropDatabas3/aestheticops/internal/http/helpers"
	mw "github.com/dropDatabas3/aestheticops/internal/http/middlewares"
	svc "github.com/dropDatabas3/aestheticops/internal/http/services/auth"
	"github.com/dropDatabas3/aestheticops/internal/observability/logger"
)

// ProfileController maneja GET/PUT /api/users/profile. Requiere sesión.
type ProfileController struct {
	service *svc.ProfileService
}

func NewProfileController(service *svc.ProfileService) *ProfileController {
	return &ProfileController{service: service}
}

func (c *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := mw.GetSession(ctx)
	if s == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	v, err := c.service.Get(ctx, s.ID)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, v)
}

func (c *ProfileController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := mw.GetSession(ctx)
	if s == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.ProfileUpdate
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	v, err := c.service.Update(ctx, s.ID, req)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, v)
}

func (c *ProfileController) handleError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := mapServiceError(err)
	if appErr.HTTPStatus >= 500 {
		logger.From(r.Context()).Error("profile request failed",
			logger.Layer("controller"),
			logger.Op("ProfileController"),
			logger.Err(err),
		)
	}
	httperrors.WriteError(w, appErr)
}
