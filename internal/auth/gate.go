// Package auth authenticates portal users and keeps their sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/invoicevista/internal/logger"
	"github.com/fkhayef/invoicevista/internal/model"
	"github.com/fkhayef/invoicevista/internal/store"
	"github.com/fkhayef/invoicevista/pkg/validation"
)

// Gate checks credentials against the record store and issues sessions
type Gate struct {
	store    store.Store
	sessions SessionStore
	cost     int
	now      func() time.Time
	log      zerolog.Logger
}

// NewGate creates a gate hashing new passwords at the given bcrypt cost
func NewGate(s store.Store, sessions SessionStore, cost int) *Gate {
	return &Gate{
		store:    s,
		sessions: sessions,
		cost:     cost,
		now:      time.Now,
		log:      logger.WithComponent("auth"),
	}
}

// Hasher returns a store.PasswordHasher using bcrypt at cost
func Hasher(cost int) store.PasswordHasher {
	return func(password string) (string, error) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return string(hash), nil
	}
}

// HashPassword hashes a password at the gate's cost
func (g *Gate) HashPassword(password string) (string, error) {
	return Hasher(g.cost)(password)
}

// Authenticate returns the user only when exactly one user has this
// username and the password matches. Every failure is ErrInvalidCredentials.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	creds, err := g.store.FindCredentials(ctx, username)
	if err != nil {
		g.log.Error().Err(err).Str("username", username).Msg("Credential lookup failed")
		return nil, ErrInvalidCredentials
	}
	if len(creds) != 1 {
		if len(creds) > 1 {
			g.log.Warn().Str("username", username).Int("matches", len(creds)).Msg("Ambiguous username")
		}
		return nil, ErrInvalidCredentials
	}

	cred := creds[0]
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user := cred.User
	return &user, nil
}

// Login authenticates and registers a new session
func (g *Gate) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := g.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return g.issue(ctx, user)
}

func (g *Gate) issue(ctx context.Context, user *model.User) (*Session, error) {
	sess := &Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ClientID:  user.ClientID,
		Username:  user.Username,
		CreatedAt: g.now(),
	}
	if err := g.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	g.log.Info().Int64("user_id", user.ID).Int64("client_id", user.ClientID).Msg("Session started")
	return sess, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (g *Gate) Logout(ctx context.Context, token string) error {
	return g.sessions.Delete(ctx, token)
}

// Resolve returns the session for token or ErrNoSession
func (g *Gate) Resolve(ctx context.Context, token string) (*Session, error) {
	return g.sessions.Get(ctx, token)
}

// ResolveToken puts the token's session into ctx
func (g *Gate) ResolveToken(ctx context.Context, token string) (context.Context, error) {
	sess, err := g.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return WithSession(ctx, sess), nil
}

// Signup registers a client and its user, then logs the user in. The
// client is not kept if the user cannot be created. Fields are trimmed
// before they are validated.
func (g *Gate) Signup(ctx context.Context, req *SignupRequest) (*Session, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	username := req.Username
	hash, err := g.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Username: username}
	err = g.store.WithTx(ctx, func(tx store.Store) error {
		existing, err := tx.FindCredentials(ctx, username)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if len(existing) > 0 {
			return ErrUsernameTaken
		}

		clientID, err := tx.CreateClient(ctx, &model.Client{
			Name:    req.CompanyName,
			Email:   req.Email,
			Company: req.CompanyName,
		})
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		user.ClientID = clientID

		user.ID, err = tx.CreateUser(ctx, user, hash)
		if errors.Is(err, store.ErrDuplicate) {
			return ErrUsernameTaken
		}
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.log.Info().Str("username", username).Int64("client_id", user.ClientID).Msg("Client signed up")
	return g.issue(ctx, user)
}
