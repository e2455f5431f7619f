// internal/online/websearch/provider.go
package websearch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"listing-assistant/internal/common/httpx"
	"listing-assistant/internal/models"
)

const (
	ComponentName = "web-search"
)

var (
	ErrWebSearchTimeout = errors.New("WEB_SEARCH_TIMEOUT")
	ErrWebSearchFailed  = errors.New("WEB_SEARCH_FAILED")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Provider queries an external business search API. Result fields vary by
// upstream source, so each item is coalesced into a single shape on decode.
type Provider struct {
	config *Config
	client *httpx.Client
	logger Logger
}

func NewProvider(config *Config, log Logger) *Provider {
	config.applyDefaults()
	return &Provider{
		config: config,
		client: httpx.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{
			"component": ComponentName,
		}),
	}
}

// apiItem accepts every field spelling the upstream sources use.
type apiItem struct {
	Title          string   `json:"title"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone"`
	PhoneNumber    string   `json:"phone_number"`
	Type           string   `json:"type"`
	Category       string   `json:"category"`
	Rating         *float64 `json:"rating"`
	ReviewsAverage *float64 `json:"reviews_average"`
	Reviews        int      `json:"reviews"`
	ReviewsCount   int      `json:"reviews_count"`
}

type apiResponse struct {
	LocalResults []apiItem `json:"local_results"`
	Results      []apiItem `json:"results"`
}

// Search runs query against the external API and returns deduplicated,
// coalesced results.
func (p *Provider) Search(ctx context.Context, query string) ([]models.OnlineResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	var resp apiResponse
	if err := p.client.GetJSON(ctx, p.buildSearchURL(query), &resp); err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, ErrWebSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrWebSearchFailed, err)
	}

	items := resp.LocalResults
	if len(items) == 0 {
		items = resp.Results
	}

	results := p.processItems(items)

	p.logger.Info("web search completed", map[string]interface{}{
		"query":       query,
		"resultCount": len(results),
	})
	return results, nil
}

func (p *Provider) buildSearchURL(query string) string {
	baseURL, _ := url.Parse(p.config.BaseURL)
	params := url.Values{}
	params.Add("key", p.config.APIKey)
	params.Add("cx", p.config.EngineID)
	params.Add("q", query)
	params.Add("num", fmt.Sprintf("%d", p.config.MaxResults))
	baseURL.RawQuery = params.Encode()
	return baseURL.String()
}

func (p *Provider) processItems(items []apiItem) []models.OnlineResult {
	seen := make(map[string]bool)
	var results []models.OnlineResult

	for _, item := range items {
		r := coalesce(item)
		if r.Name == "" {
			continue
		}
		key := strings.ToLower(r.Name) + "|" + strings.ToLower(r.Address)
		if seen[key] {
			continue
		}
		seen[key] = true

		results = append(results, r)
		if len(results) >= p.config.MaxResults {
			break
		}
	}
	return results
}

func coalesce(item apiItem) models.OnlineResult {
	r := models.OnlineResult{
		Name:        item.Title,
		Address:     item.Address,
		PhoneNumber: item.Phone,
		Category:    item.Type,
		Source:      "web",
	}
	if r.Name == "" {
		r.Name = item.Name
	}
	if r.PhoneNumber == "" {
		r.PhoneNumber = item.PhoneNumber
	}
	if r.Category == "" {
		r.Category = item.Category
	}
	r.ReviewsAverage = item.Rating
	if r.ReviewsAverage == nil {
		r.ReviewsAverage = item.ReviewsAverage
	}
	r.ReviewsCount = item.Reviews
	if r.ReviewsCount == 0 {
		r.ReviewsCount = item.ReviewsCount
	}
	return r
}
