package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/aestheticops/internal/audit"
	"github.com/dropDatabas3/aestheticops/internal/cache"
	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	dto "github.com/dropDatabas3/aestheticops/internal/http/dto/auth"
	"github.com/dropDatabas3/aestheticops/internal/observability/logger"
	"github.com/dropDatabas3/aestheticops/internal/validation"
)

var ErrUserNotFound = errors.New("user not found")

// ProfileService lee y actualiza el perfil del usuario autenticado. Las
// lecturas pasan por cache (profile:<id>); toda escritura invalida la entrada.
type ProfileService struct {
	repo  repository.UserRepository
	cache cache.Client
	ttl   time.Duration
}

func NewProfileService(d Deps) *ProfileService {
	return &ProfileService{repo: d.Repo, cache: d.Cache, ttl: d.CacheTTL}
}

func profileKey(id string) string { return "profile:" + id }

// Get devuelve la vista del usuario. Un error del cache no corta la lectura.
func (s *ProfileService) Get(ctx context.Context, userID string) (*dto.UserView, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.profile"),
		logger.Op("Get"),
		logger.UserID(userID),
	)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, profileKey(userID))
		switch {
		case err == nil:
			var v dto.UserView
			if jerr := json.Unmarshal(raw, &v); jerr == nil {
				return &v, nil
			}
			log.Warn("cached profile unreadable, reloading")
		case !cache.IsNotFound(err):
			log.Warn("profile cache get failed", logger.Err(err))
		}
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	v := dto.UserViewFrom(u)
	if s.cache != nil {
		if raw, err := json.Marshal(v); err == nil {
			if err := s.cache.Set(ctx, profileKey(userID), raw, s.ttl); err != nil {
				log.Warn("profile cache set failed", logger.Err(err))
			}
		}
	}
	return &v, nil
}

// Update aplica los campos mutables (name, phone, clinicName). ID, email,
// rol, credential y suscripción no cambian por esta vía.
func (s *ProfileService) Update(ctx context.Context, userID string, in dto.ProfileUpdate) (*dto.UserView, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.profile"),
		logger.Op("Update"),
		logger.UserID(userID),
	)

	var patch repository.ProfilePatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if !validation.MinLen(name, 2) {
			return nil, validation.Field("name", "El nombre debe tener al menos 2 caracteres")
		}
		patch.Name = &name
	}
	if in.ClinicName != nil {
		clinic := strings.TrimSpace(*in.ClinicName)
		if !validation.MinLen(clinic, 2) {
			return nil, validation.Field("clinicName", "El nombre de la clínica es requerido")
		}
		patch.ClinicName = &clinic
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if !validation.MinLen(phone, 9) {
			return nil, validation.Field("phone", "Teléfono inválido")
		}
		patch.Phone = &phone
	}

	// Sin leer-modificar-guardar: un login concurrente puede estar migrando
	// el credential de esta misma cuenta.
	u, err := s.repo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.invalidate(ctx, userID)

	log.Info("profile updated")
	audit.Log(ctx, audit.EventProfileUpdated, logger.UserID(userID))
	v := dto.UserViewFrom(u)
	return &v, nil
}

func (s *ProfileService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, profileKey(userID)); err != nil && !cache.IsNotFound(err) {
		logger.From(ctx).Warn("profile cache delete failed", logger.Err(err), logger.UserID(userID))
	}
}
