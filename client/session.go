package client

import (
	"sync"
	"time"

	"oseplatform/models"
)

// Session holds the authenticated operator for the lifetime of the application.
type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	operator  models.Operator
}

func (s *Session) set(resp *models.LoginResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = resp.Token
	s.expiresAt = resp.ExpiresAt
	s.operator = resp.Operator
}

// SetToken restores a token obtained earlier, e.g. from the environment.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.operator = models.Operator{}
}

// Token returns the bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Operator returns the logged-in operator.
func (s *Session) Operator() models.Operator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operator
}

// Active reports whether a non-expired token is held.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && (s.expiresAt.IsZero() || time.Now().Before(s.expiresAt))
}
