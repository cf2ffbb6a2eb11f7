// Package auth contiene DTOs para endpoints de autenticación y perfil.
package auth

import "time"

// LoginRequest representa la solicitud de login por password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse representa la respuesta exitosa de login. El token también
// viaja en la cookie de sesión.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}
