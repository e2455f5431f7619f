// internal/online/essearch/provider_test.go
package essearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-assistant/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

// fake Elasticsearch endpoint; the v8 client checks this response header.
func createFakeES(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *elasticsearch.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func createTestProvider(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Provider {
	return NewProvider(
		&Config{Index: "business_listings", MaxResults: 5, Timeout: 2 * time.Second},
		createFakeES(t, handler),
		logger.NewTestLogger(t),
	)
}

func searchResponse(hits ...map[string]interface{}) string {
	wrapped := make([]map[string]interface{}, 0, len(hits))
	for _, h := range hits {
		wrapped = append(wrapped, map[string]interface{}{"_source": h})
	}
	body, _ := json.Marshal(map[string]interface{}{
		"took": 3,
		"hits": map[string]interface{}{
			"total": map[string]interface{}{"value": len(hits)},
			"hits":  wrapped,
		},
	})
	return string(body)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestProvider_Search_ReturnsIndexedListings(t *testing.T) {
	avg := 4.6
	p := createTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "multi_match")
		assert.Contains(t, string(body), "pizza")
		assert.Contains(t, r.URL.Path, "business_listings")

		io.WriteString(w, searchResponse(
			map[string]interface{}{
				"name": "Pizza Palace", "address": "2 Main St", "phone_number": "9000000003",
				"category": "Pizza", "city": "Pune", "reviews_count": 55, "reviews_average": avg,
			},
		))
	})

	results, err := p.Search(context.Background(), "pizza", "pune")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Pizza Palace", results[0].Name)
	assert.Equal(t, "index", results[0].Source)
	require.NotNil(t, results[0].ReviewsAverage)
	assert.InDelta(t, avg, *results[0].ReviewsAverage, 0.001)
}

func TestProvider_Search_LocationFilterOnlyWhenPresent(t *testing.T) {
	var lastBody string
	p := createTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastBody = string(body)
		io.WriteString(w, searchResponse())
	})

	_, err := p.Search(context.Background(), "salon", "")
	require.NoError(t, err)
	assert.NotContains(t, lastBody, `"filter"`)

	_, err = p.Search(context.Background(), "salon", "kochi")
	require.NoError(t, err)
	assert.Contains(t, lastBody, `"filter"`)
	assert.Contains(t, lastBody, "kochi")
}

func TestProvider_Search_EmptyKeyword(t *testing.T) {
	p := createTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty keyword")
	})

	results, err := p.Search(context.Background(), "  ", "pune")

	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestProvider_Search_IndexMissing(t *testing.T) {
	p := createTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"type":"index_not_found_exception"}}`)
	})

	_, err := p.Search(context.Background(), "pizza", "")

	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestProvider_Search_ServerError(t *testing.T) {
	p := createTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"type":"search_phase_execution_exception"}}`)
	})

	_, err := p.Search(context.Background(), "pizza", "")

	assert.ErrorIs(t, err, ErrSearchQueryFailed)
}

func TestProvider_Search_SkipsNamelessDocs(t *testing.T) {
	p := createTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, searchResponse(
			map[string]interface{}{"name": "", "city": "Pune"},
			map[string]interface{}{"name": "Chai Point", "city": "Delhi"},
		))
	})

	results, err := p.Search(context.Background(), "chai", "")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Chai Point", results[0].Name)
}
