// internal/session/manager_test.go
package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-assistant/internal/common/logger"
	"listing-assistant/internal/models"
)

func createTestManager(t *testing.T) *Manager {
	return NewManager(Config{TTL: time.Minute}, logger.NewTestLogger(t))
}

func TestManager_Login(t *testing.T) {
	m := createTestManager(t)

	session, err := m.Login("98733 12399")

	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "9873312399", session.IdentityKey)
	assert.Equal(t, models.ModeNone, session.State.Mode)

	found, err := m.Find(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, found)
}

func TestManager_Login_ImplausiblePhone(t *testing.T) {
	m := createTestManager(t)

	_, err := m.Login("12345")

	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestManager_Find_Unknown(t *testing.T) {
	m := createTestManager(t)

	_, err := m.Find("missing")

	assert.Error(t, err)
}

func TestManager_Find_ExpiredIsGone(t *testing.T) {
	m := createTestManager(t)

	session, err := m.Login("9873312399")
	require.NoError(t, err)

	session.ExpiresAt = time.Now().Add(-time.Second)

	_, err = m.Find(session.ID)
	assert.Error(t, err)
}

func TestManager_Update_SlidesExpiry(t *testing.T) {
	m := createTestManager(t)

	session, err := m.Login("9873312399")
	require.NoError(t, err)
	before := session.ExpiresAt

	m.now = func() time.Time { return time.Now().Add(30 * time.Second) }
	require.NoError(t, m.Update(session))

	assert.True(t, session.ExpiresAt.After(before))
}

func TestManager_Delete(t *testing.T) {
	m := createTestManager(t)

	session, err := m.Login("9873312399")
	require.NoError(t, err)

	require.NoError(t, m.Delete(session.ID))

	_, err = m.Find(session.ID)
	assert.Error(t, err)
}

func TestManager_InvalidateExpired(t *testing.T) {
	m := createTestManager(t)

	expired, err := m.Login("9873312399")
	require.NoError(t, err)
	expired.ExpiresAt = time.Now().Add(-time.Second)

	live, err := m.Login("9822200022")
	require.NoError(t, err)

	require.NoError(t, m.InvalidateExpired())

	_, err = m.Find(expired.ID)
	assert.Error(t, err)
	_, err = m.Find(live.ID)
	assert.NoError(t, err)
}

func TestManager_MaxSessions(t *testing.T) {
	m := NewManager(Config{TTL: time.Minute, MaxSessions: 1}, logger.NewTestLogger(t))

	_, err := m.Login("9873312399")
	require.NoError(t, err)

	_, err = m.Login("9822200022")
	assert.ErrorIs(t, err, ErrTooManySessions)
}
