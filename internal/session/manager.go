// internal/session/manager.go

// Package session holds the in-memory registry of authenticated callers.
// Possession of a plausible phone number is the entire authentication
// model; a session binds that number's identity key to conversation state.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	cerrors "listing-assistant/internal/common/errors"
	"listing-assistant/internal/common/logger"
	"listing-assistant/internal/common/metrics"
	"listing-assistant/internal/identity"
	"listing-assistant/internal/models"
)

var (
	ErrInvalidPhone    = errors.New("INVALID_PHONE")
	ErrTooManySessions = errors.New("TOO_MANY_SESSIONS")
)

type Config struct {
	TTL         time.Duration
	MaxSessions int
}

type Manager struct {
	config   Config
	sessions map[string]*models.Session
	mu       sync.RWMutex
	logger   logger.Logger
	now      func() time.Time
}

func NewManager(config Config, log logger.Logger) *Manager {
	if config.TTL <= 0 {
		config.TTL = 30 * time.Minute
	}
	if config.MaxSessions <= 0 {
		config.MaxSessions = 10000
	}
	return &Manager{
		config:   config,
		sessions: make(map[string]*models.Session),
		logger:   log.WithFields(map[string]interface{}{"component": "session-manager"}),
		now:      time.Now,
	}
}

// Login opens a session for phone. The number is accepted on plausibility
// alone; no verification beyond digit count happens here.
func (m *Manager) Login(phone string) (*models.Session, error) {
	if !identity.IsPlausible(phone) {
		return nil, ErrInvalidPhone
	}

	now := m.now()
	session := &models.Session{
		ID:           uuid.NewString(),
		Phone:        phone,
		IdentityKey:  identity.Normalize(phone),
		State:        models.NewConversationState(),
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.config.TTL),
		LastActivity: now,
	}

	if err := m.Create(session); err != nil {
		return nil, err
	}

	m.logger.Info("session opened", map[string]interface{}{
		"sessionId":   session.ID,
		"identityKey": session.IdentityKey,
	})
	return session, nil
}

func (m *Manager) Create(session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.config.MaxSessions {
		m.evictExpiredLocked()
		if len(m.sessions) >= m.config.MaxSessions {
			return ErrTooManySessions
		}
	}

	m.sessions[session.ID] = session
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	return nil
}

// Find returns the live session or a SESSION_NOT_FOUND error. Expired
// sessions are treated as absent and removed on access.
func (m *Manager) Find(sessionID string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, cerrors.NewSessionNotFoundError(sessionID)
	}
	if session.IsExpired() {
		delete(m.sessions, sessionID)
		metrics.SessionsActive.Set(float64(len(m.sessions)))
		return nil, cerrors.NewSessionNotFoundError(sessionID)
	}
	return session, nil
}

// Update refreshes activity and slides the expiry window.
func (m *Manager) Update(session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[session.ID]; !ok {
		return cerrors.NewSessionNotFoundError(session.ID)
	}

	session.UpdateActivity()
	session.ExpiresAt = m.now().Add(m.config.TTL)
	m.sessions[session.ID] = session
	return nil
}

func (m *Manager) Delete(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	return nil
}

// InvalidateExpired sweeps out expired sessions; called periodically by the
// server.
func (m *Manager) InvalidateExpired() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpiredLocked()
	return nil
}

func (m *Manager) evictExpiredLocked() {
	removed := 0
	for id, session := range m.sessions {
		if session.IsExpired() {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("expired sessions evicted", map[string]interface{}{
			"count": removed,
		})
	}
	metrics.SessionsActive.Set(float64(len(m.sessions)))
}
