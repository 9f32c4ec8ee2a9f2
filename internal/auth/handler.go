package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/invoicevista/pkg/middleware"
	"github.com/fkhayef/invoicevista/pkg/response"
	"github.com/fkhayef/invoicevista/pkg/validation"
)

// Handler handles HTTP requests for login, signup and logout
type Handler struct {
	gate *Gate
}

// NewHandler creates a new auth handler
func NewHandler(gate *Gate) *Handler {
	return &Handler{gate: gate}
}

// Routes returns the router for auth endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.Login)
	r.Post("/signup", h.Signup)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireToken(h.gate))
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})

	return r
}

// Login handles POST /auth/login
// @Summary      Log in
// @Description  Exchange a username and password for a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} response.APIResponse{data=SessionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		response.ValidationError(w, "Invalid login request", validation.Fields(err))
		return
	}

	sess, err := h.gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		response.Unauthorized(w, ErrInvalidCredentials.Error())
		return
	}

	response.JSON(w, http.StatusOK, sess.ToResponse())
}

// Signup handles POST /auth/signup
// @Summary      Sign up
// @Description  Register a client and its portal user, then log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup request"
// @Success      201 {object} response.APIResponse{data=SessionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	sess, err := h.gate.Signup(r.Context(), &req)
	if err != nil {
		switch {
		case validation.Fields(err) != nil:
			response.ValidationError(w, "Invalid signup request", validation.Fields(err))
		case errors.Is(err, ErrPasswordTooLong):
			response.ValidationError(w, err.Error(), map[string]string{"password": err.Error()})
		case errors.Is(err, ErrPasswordMismatch):
			response.ValidationError(w, err.Error(), map[string]string{"confirm_password": err.Error()})
		case errors.Is(err, ErrUsernameTaken):
			response.Conflict(w, err.Error())
		default:
			h.gate.log.Error().Err(err).Msg("Signup failed")
			response.InternalError(w, "Failed to sign up")
		}
		return
	}

	response.JSON(w, http.StatusCreated, sess.ToResponse())
}

// Logout handles POST /auth/logout
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())

	if err := h.gate.Logout(r.Context(), sess.Token); err != nil {
		response.InternalError(w, "Failed to log out")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me handles GET /auth/me
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=MeResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())

	response.JSON(w, http.StatusOK, &MeResponse{
		UserID:    sess.UserID,
		ClientID:  sess.ClientID,
		Username:  sess.Username,
		CreatedAt: sess.CreatedAt.Format(time.RFC3339),
	})
}
