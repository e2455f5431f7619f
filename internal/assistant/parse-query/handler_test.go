package parsequery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return l
}

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		keyword  string
		location string
	}{
		{
			name:     "keyword and trailing location",
			query:    "best ice cream shop in mumbai",
			keyword:  "ice cream shop",
			location: "mumbai",
		},
		{
			name:     "single word",
			query:    "pizza",
			keyword:  "pizza",
			location: "",
		},
		{
			name:     "two words",
			query:    "pizza mumbai",
			keyword:  "pizza",
			location: "mumbai",
		},
		{
			name:     "only stop words",
			query:    "find the best",
			keyword:  "",
			location: "",
		},
		{
			name:     "empty query",
			query:    "",
			keyword:  "",
			location: "",
		},
		{
			name:     "stop word inside a word survives",
			query:    "finders kochi",
			keyword:  "finders",
			location: "kochi",
		},
		{
			name:     "leading and trailing stop words",
			query:    "looking for salon near me",
			keyword:  "salon",
			location: "",
		},
		{
			name:     "case and whitespace normalized",
			query:    "  Top Rated   CAFE in Pune  ",
			keyword:  "rated cafe",
			location: "pune",
		},
	}

	h := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.keyword, out.Keyword)
			assert.Equal(t, tt.location, out.Location)
		})
	}
}

func TestHandler_Execute_CustomStopWords(t *testing.T) {
	h := NewHandler(&Config{StopWords: []string{"por"}}, NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Query: "por pizza mumbai"})
	require.NoError(t, err)
	assert.Equal(t, "pizza", out.Keyword)
	assert.Equal(t, "mumbai", out.Location)
}
