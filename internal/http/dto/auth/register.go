package auth

// RegisterRequest es el alta de una clínica con su primer usuario.
// ConfirmPassword es opcional; si viene debe coincidir con Password.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
	ClinicName      string `json:"clinicName"`
	Phone           string `json:"phone"`
}
