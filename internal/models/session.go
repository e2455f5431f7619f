package models

import "time"

// Session represents an authenticated caller session.
type Session struct {
	ID           string             `json:"id"`
	Phone        string             `json:"phone"`
	IdentityKey  string             `json:"identityKey"`
	State        *ConversationState `json:"state"`
	CreatedAt    time.Time          `json:"createdAt"`
	ExpiresAt    time.Time          `json:"expiresAt"`
	LastActivity time.Time          `json:"lastActivity"`
}

// IsExpired checks if session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UpdateActivity updates the last activity timestamp
func (s *Session) UpdateActivity() {
	s.LastActivity = time.Now()
}

// SessionRepository defines session data access interface
type SessionRepository interface {
	Create(session *Session) error
	Find(sessionID string) (*Session, error)
	Update(session *Session) error
	Delete(sessionID string) error
	InvalidateExpired() error
}
