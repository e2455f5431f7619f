// internal/assistant/resolve-search/handler_test.go
package resolvesearch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	correctspelling "listing-assistant/internal/assistant/correct-spelling"
	parsequery "listing-assistant/internal/assistant/parse-query"
	"listing-assistant/internal/models"
	"listing-assistant/internal/store/listings"
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

type fakeCorrector struct {
	corrections map[string]string
	err         error
}

func (f *fakeCorrector) Execute(ctx context.Context, input *correctspelling.Input) (*correctspelling.Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	if corrected, ok := f.corrections[input.Token]; ok {
		return &correctspelling.Output{Result: corrected, WasCorrected: true}, nil
	}
	return &correctspelling.Output{Result: input.Token}, nil
}

type tierCall struct {
	tier   listings.SearchTier
	params map[string]interface{}
}

type fakeSearcher struct {
	resultsByTier map[listings.SearchTier][]models.Listing
	err           error
	calls         []tierCall
}

func (f *fakeSearcher) Search(ctx context.Context, tier listings.SearchTier, params map[string]interface{}) ([]models.Listing, error) {
	f.calls = append(f.calls, tierCall{tier: tier, params: params})
	if f.err != nil {
		return nil, f.err
	}
	return f.resultsByTier[tier], nil
}

func createTestHandler(t *testing.T, corrector *fakeCorrector, searcher *fakeSearcher) *Handler {
	if corrector == nil {
		corrector = &fakeCorrector{}
	}
	parser := parsequery.NewHandler(parsequery.LoadConfig(), parseTestLogger{t})
	return NewHandler(LoadConfig(), parser, corrector, searcher, NewTestLogger(t))
}

type parseTestLogger struct{ t *testing.T }

func (l parseTestLogger) Debug(msg string, fields map[string]interface{}) {}
func (l parseTestLogger) Info(msg string, fields map[string]interface{})  {}
func (l parseTestLogger) With(fields map[string]interface{}) parsequery.Logger {
	return l
}

func listing(name string) models.Listing {
	return models.Listing{Name: name}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_KeywordAndLocationTier(t *testing.T) {
	searcher := &fakeSearcher{
		resultsByTier: map[listings.SearchTier][]models.Listing{
			listings.TierKeywordAndLocation: {listing("Gelato Bar")},
		},
	}
	h := createTestHandler(t, nil, searcher)

	out, err := h.Execute(context.Background(), &Input{Query: "best ice cream shop in mumbai"})

	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "ice cream shop", out.Keyword)
	assert.Equal(t, "mumbai", out.Location)
	assert.False(t, out.WasCorrected)
	assert.Equal(t, string(listings.TierKeywordAndLocation), out.Tier)
	require.Len(t, searcher.calls, 1)
}

func TestHandler_Execute_FallsBackToKeywordOnly(t *testing.T) {
	searcher := &fakeSearcher{
		resultsByTier: map[listings.SearchTier][]models.Listing{
			listings.TierKeywordOnly: {listing("Pizza Palace")},
		},
	}
	h := createTestHandler(t, nil, searcher)

	out, err := h.Execute(context.Background(), &Input{Query: "pizza mumbai"})

	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, string(listings.TierKeywordOnly), out.Tier)
	require.Len(t, searcher.calls, 2)
	assert.Equal(t, listings.TierKeywordAndLocation, searcher.calls[0].tier)
	assert.Equal(t, listings.TierKeywordOnly, searcher.calls[1].tier)
}

func TestHandler_Execute_FullQueryUsesRawText(t *testing.T) {
	searcher := &fakeSearcher{resultsByTier: map[listings.SearchTier][]models.Listing{}}
	corrector := &fakeCorrector{corrections: map[string]string{"restarant": "restaurant"}}
	h := createTestHandler(t, corrector, searcher)

	out, err := h.Execute(context.Background(), &Input{Query: "restarant mumbai"})

	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.Equal(t, "restaurant", out.Keyword)
	assert.True(t, out.WasCorrected)
	assert.Equal(t, "none", out.Tier)

	last := searcher.calls[len(searcher.calls)-1]
	assert.Equal(t, listings.TierFullQuery, last.tier)
	assert.Equal(t, "restarant mumbai", last.params["query"], "last tier must use the raw query")
}

func TestHandler_Execute_SingleWordSkipsLocationTiers(t *testing.T) {
	searcher := &fakeSearcher{resultsByTier: map[listings.SearchTier][]models.Listing{}}
	h := createTestHandler(t, nil, searcher)

	_, err := h.Execute(context.Background(), &Input{Query: "pizza"})

	require.NoError(t, err)
	require.Len(t, searcher.calls, 2)
	assert.Equal(t, listings.TierKeywordOnly, searcher.calls[0].tier)
	assert.Equal(t, listings.TierFullQuery, searcher.calls[1].tier)
}

func TestHandler_Execute_CorrectorFailureKeepsTokens(t *testing.T) {
	searcher := &fakeSearcher{
		resultsByTier: map[listings.SearchTier][]models.Listing{
			listings.TierKeywordAndLocation: {listing("Gelato Bar")},
		},
	}
	corrector := &fakeCorrector{err: errors.New("corpus unavailable")}
	h := createTestHandler(t, corrector, searcher)

	out, err := h.Execute(context.Background(), &Input{Query: "gelato mumbai"})

	require.NoError(t, err)
	assert.Equal(t, "gelato", out.Keyword)
	assert.False(t, out.WasCorrected)
	require.Len(t, out.Results, 1)
}

func TestHandler_Execute_SearchErrorPropagates(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection refused")}
	h := createTestHandler(t, nil, searcher)

	_, err := h.Execute(context.Background(), &Input{Query: "pizza mumbai"})

	assert.Error(t, err)
}

func TestHandler_Execute_EmptyQuery(t *testing.T) {
	searcher := &fakeSearcher{}
	h := createTestHandler(t, nil, searcher)

	out, err := h.Execute(context.Background(), &Input{Query: "   "})

	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.Empty(t, searcher.calls)
}
