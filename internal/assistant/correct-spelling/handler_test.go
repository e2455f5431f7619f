package correctspelling

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

// TestLogger implements the Logger interface for testing
type TestLogger struct {
	t *testing.T
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t}
}

func (l *TestLogger) Debug(msg string, fields map[string]interface{}) {
	l.t.Logf("DEBUG: %s %v", msg, fields)
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return l
}

// ==========================
// Test Helper Functions
// ==========================

type staticCorpus struct {
	terms []string
	err   error
}

func (c *staticCorpus) Terms(ctx context.Context) ([]string, error) {
	return c.terms, c.err
}

func createTestHandler(t *testing.T, terms ...string) *Handler {
	return NewHandler(LoadConfig(), &staticCorpus{terms: terms}, NewTestLogger(t))
}

func execute(t *testing.T, h *Handler, token string) *Output {
	out, err := h.Execute(context.Background(), &Input{Token: token})
	require.NoError(t, err)
	return out
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_NoCorrectionCases(t *testing.T) {
	h := createTestHandler(t, "restaurant", "salon", "mumbai", "pizza palace")

	t.Run("exact membership", func(t *testing.T) {
		out := execute(t, h, "salon")
		assert.Equal(t, "salon", out.Result)
		assert.False(t, out.WasCorrected)
		assert.Empty(t, out.Suggestions)
	})

	t.Run("token is substring of a term", func(t *testing.T) {
		out := execute(t, h, "rest")
		assert.Equal(t, "rest", out.Result)
		assert.False(t, out.WasCorrected)
	})

	t.Run("term is substring of token", func(t *testing.T) {
		out := execute(t, h, "mumbai central")
		assert.Equal(t, "mumbai central", out.Result)
		assert.False(t, out.WasCorrected)
	})

	t.Run("one verbatim sub-word is enough", func(t *testing.T) {
		out := execute(t, h, "qqqzzz salon")
		assert.Equal(t, "qqqzzz salon", out.Result)
		assert.False(t, out.WasCorrected)
	})

	t.Run("empty corpus passes through", func(t *testing.T) {
		empty := createTestHandler(t)
		out := execute(t, empty, "restarant")
		assert.Equal(t, "restarant", out.Result)
		assert.False(t, out.WasCorrected)
	})
}

func TestHandler_Execute_WholeTokenCorrection(t *testing.T) {
	h := createTestHandler(t, "restaurant", "salon", "mumbai")

	out := execute(t, h, "restarant")
	assert.True(t, out.WasCorrected)
	assert.Equal(t, "restaurant", out.Result)
	assert.NotEmpty(t, out.Suggestions)
	assert.Equal(t, "restaurant", out.Suggestions[0])
}

func TestHandler_Execute_CasePreserved(t *testing.T) {
	h := createTestHandler(t, "restaurant")

	out := execute(t, h, "Restarant")
	assert.True(t, out.WasCorrected)
	assert.Equal(t, "Restaurant", out.Result)
}

func TestHandler_Execute_PerWordCorrection(t *testing.T) {
	h := createTestHandler(t, "chinese", "gardens")

	// Neither the whole token nor any substring matches; each long word is
	// individually corrected.
	out := execute(t, h, "chinse gardns")
	assert.True(t, out.WasCorrected)
	assert.Equal(t, "chinese gardens", out.Result)
	assert.Equal(t, []string{"chinese gardens"}, out.Suggestions)
}

func TestHandler_Execute_NoCandidates(t *testing.T) {
	h := createTestHandler(t, "restaurant", "salon")

	out := execute(t, h, "xyzzyplugh")
	assert.False(t, out.WasCorrected)
	assert.Equal(t, "xyzzyplugh", out.Result)
	assert.Empty(t, out.Suggestions)
}

func TestHandler_Execute_CorpusError(t *testing.T) {
	h := NewHandler(LoadConfig(), &staticCorpus{err: errors.New("store down")}, NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Token: "salon"})
	assert.Error(t, err)
}
