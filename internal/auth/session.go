package auth

import (
	"sync"
	"time"
)

// TokenPair is the access/refresh credential pair produced by the token
// endpoint. Replaced wholesale on every (re)authentication, never mutated
// field by field. AccessToken is never empty on a stored pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// Session is the process-wide holder of the current authenticated
// credential pair.
//
// One mutex guards everything: token reads by the fetch path and full
// replacements by (re)authentication serialize on it, so a fetch can
// never observe a half-updated pair.
type Session struct {
	mu          sync.Mutex
	tokens      *TokenPair
	lastRefresh time.Time
}

// NewSession creates an empty, unauthenticated Session.
func NewSession() *Session {
	return &Session{}
}

// SetTokens replaces the current pair and stamps the refresh time.
func (s *Session) SetTokens(pair TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = &pair
	s.lastRefresh = time.Now()
}

// AccessToken returns the current access token, or false when the
// session is unauthenticated.
func (s *Session) AccessToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return "", false
	}
	return s.tokens.AccessToken, true
}

// RefreshToken returns the current refresh token, which may be empty.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return ""
	}
	return s.tokens.RefreshToken
}

// Authenticated reports whether a credential pair is held.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens != nil
}

// LastRefresh returns when the pair was last replaced.
func (s *Session) LastRefresh() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefresh
}

// Clear signs the session out, discarding the held pair.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = nil
	s.lastRefresh = time.Time{}
}
