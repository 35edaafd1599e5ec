package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/config"
)

// ErrUnauthorized is returned when a request carries no valid bearer token.
var ErrUnauthorized = errors.New("invalid or missing API key")

// Authenticator validates bearer tokens on API requests. When a bcrypt hash
// is configured it is checked instead of the plaintext key.
type Authenticator struct {
	apiKey     string
	apiKeyHash string
}

// NewAuthenticator creates an authenticator from the auth configuration.
func NewAuthenticator(cfg config.AuthConfig) *Authenticator {
	return &Authenticator{
		apiKey:     cfg.APIKey,
		apiKeyHash: cfg.APIKeyHash,
	}
}

// Authenticate checks the Authorization header of a request.
func (a *Authenticator) Authenticate(r *http.Request) error {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return ErrUnauthorized
	}

	if a.apiKeyHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(a.apiKeyHash), []byte(token)); err != nil {
			return ErrUnauthorized
		}
		return nil
	}

	if a.apiKey == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.apiKey)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// requireAuth wraps a handler with bearer token authentication.
func (s *Server) requireAuth(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.Authenticate(r); err != nil {
			jsonError(w, http.StatusUnauthorized, "Invalid or missing API key")
			return
		}
		h(w, r)
	}
}
