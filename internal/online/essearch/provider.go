// internal/online/essearch/provider.go

// Package essearch is the index-backed alternative to the web search
// provider: the same listings corpus, mirrored into Elasticsearch, queried
// with relevance scoring instead of ILIKE containment.
package essearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"listing-assistant/internal/common/logger"
	"listing-assistant/internal/models"
)

const (
	ComponentName = "es-search"
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout     = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound     = errors.New("INDEX_NOT_FOUND")
)

type Provider struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewProvider(config *Config, client *elasticsearch.Client, log logger.Logger) *Provider {
	config.applyDefaults()
	return &Provider{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": ComponentName}),
	}
}

type indexedListing struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	PhoneNumber    string   `json:"phone_number"`
	Category       string   `json:"category"`
	Subcategory    string   `json:"subcategory"`
	City           string   `json:"city"`
	ReviewsCount   int      `json:"reviews_count"`
	ReviewsAverage *float64 `json:"reviews_average"`
}

// Search runs a relevance query for keyword, optionally filtered to a
// location, against the listings index.
func (p *Provider) Search(ctx context.Context, keyword, location string) ([]models.OnlineResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	body, err := json.Marshal(p.buildQuery(keyword, location))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	size := p.config.MaxResults
	req := esapi.SearchRequest{
		Index: []string{p.config.Index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == 404 {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("%w: status %s", ErrSearchQueryFailed, res.Status())
	}

	var parsed struct {
		Took int `json:"took"`
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source indexedListing `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	results := make([]models.OnlineResult, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc := hit.Source
		if doc.Name == "" {
			continue
		}
		results = append(results, models.OnlineResult{
			Name:           doc.Name,
			Address:        doc.Address,
			PhoneNumber:    doc.PhoneNumber,
			Category:       doc.Category,
			ReviewsCount:   doc.ReviewsCount,
			ReviewsAverage: doc.ReviewsAverage,
			Source:         "index",
		})
	}

	p.logger.Debug("index search completed", map[string]interface{}{
		"keyword":     keyword,
		"location":    location,
		"totalHits":   parsed.Hits.Total.Value,
		"resultCount": len(results),
		"took":        parsed.Took,
	})
	return results, nil
}

func (p *Provider) buildQuery(keyword, location string) map[string]interface{} {
	mustClauses := []interface{}{
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keyword,
				"fields": []string{"name^3", "category^2", "subcategory"},
				"type":   "best_fields",
			},
		},
	}

	boolQuery := map[string]interface{}{
		"must": mustClauses,
	}
	if location = strings.TrimSpace(location); location != "" {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  location,
					"fields": []string{"city", "address"},
				},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"reviews_average": map[string]interface{}{"order": "desc", "missing": "_last"}},
			map[string]interface{}{"reviews_count": map[string]interface{}{"order": "desc"}},
		},
	}
}
