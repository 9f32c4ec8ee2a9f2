package auth

import "strings"

// maxPasswordBytes is the longest input bcrypt accepts
const maxPasswordBytes = 72

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest represents the request body for registering a client
type SignupRequest struct {
	CompanyName     string `json:"company_name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// Normalize trims the identifying fields. Passwords are kept as typed.
func (r *SignupRequest) Normalize() {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)
}

// SessionResponse is returned after login and signup
type SessionResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	ClientID int64  `json:"client_id"`
	Username string `json:"username"`
}

// MeResponse describes the caller's session without its token
type MeResponse struct {
	UserID    int64  `json:"user_id"`
	ClientID  int64  `json:"client_id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// ToResponse converts a Session to a SessionResponse DTO
func (s *Session) ToResponse() *SessionResponse {
	return &SessionResponse{
		Token:    s.Token,
		UserID:   s.UserID,
		ClientID: s.ClientID,
		Username: s.Username,
	}
}
