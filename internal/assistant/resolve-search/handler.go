// internal/assistant/resolve-search/handler.go
package resolvesearch

import (
	"context"
	"strings"

	correctspelling "listing-assistant/internal/assistant/correct-spelling"
	parsequery "listing-assistant/internal/assistant/parse-query"
	"listing-assistant/internal/common/metrics"
	"listing-assistant/internal/models"
	"listing-assistant/internal/store/listings"
)

const (
	ComponentName = "resolve-search"
)

// Logger interface definition
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type QueryParser interface {
	Execute(ctx context.Context, input *parsequery.Input) (*parsequery.Output, error)
}

type SpellCorrector interface {
	Execute(ctx context.Context, input *correctspelling.Input) (*correctspelling.Output, error)
}

type TierSearcher interface {
	Search(ctx context.Context, tier listings.SearchTier, params map[string]interface{}) ([]models.Listing, error)
}

type Handler struct {
	config    *Config
	parser    QueryParser
	corrector SpellCorrector
	searcher  TierSearcher
	logger    Logger
}

func NewHandler(config *Config, parser QueryParser, corrector SpellCorrector, searcher TierSearcher, log Logger) *Handler {
	return &Handler{
		config:    config,
		parser:    parser,
		corrector: corrector,
		searcher:  searcher,
		logger: log.With(map[string]interface{}{
			"component": ComponentName,
		}),
	}
}

// Execute resolves a natural-language search: parse into keyword and
// location, correct each independently, then walk the tiers from most to
// least specific until one returns rows. The last tier retries the raw
// query, uncorrected, so a correction can never hide a literal match.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return &Output{}, nil
	}

	parsed, err := h.parser.Execute(ctx, &parsequery.Input{Query: query})
	if err != nil {
		return nil, err
	}

	keyword := parsed.Keyword
	location := parsed.Location
	wasCorrected := false

	if !h.config.DisableSpellCorrection {
		keyword, wasCorrected = h.correct(ctx, keyword, "keyword", wasCorrected)
		location, wasCorrected = h.correct(ctx, location, "location", wasCorrected)
	}

	var results []models.Listing
	var winner string

	if keyword != "" && location != "" {
		results, err = h.searcher.Search(ctx, listings.TierKeywordAndLocation, map[string]interface{}{
			"keyword":  keyword,
			"location": location,
		})
		if err != nil {
			return nil, err
		}
		winner = string(listings.TierKeywordAndLocation)
	}

	if len(results) == 0 && keyword != "" {
		results, err = h.searcher.Search(ctx, listings.TierKeywordOnly, map[string]interface{}{
			"keyword": keyword,
		})
		if err != nil {
			return nil, err
		}
		winner = string(listings.TierKeywordOnly)
	}

	if len(results) == 0 && location != "" {
		results, err = h.searcher.Search(ctx, listings.TierLocationOnly, map[string]interface{}{
			"location": location,
		})
		if err != nil {
			return nil, err
		}
		winner = string(listings.TierLocationOnly)
	}

	if len(results) == 0 {
		results, err = h.searcher.Search(ctx, listings.TierFullQuery, map[string]interface{}{
			"query": query,
		})
		if err != nil {
			return nil, err
		}
		winner = string(listings.TierFullQuery)
	}

	if len(results) == 0 {
		winner = "none"
	}
	metrics.SearchTierHits.WithLabelValues(winner).Inc()

	h.logger.Info("search resolved", map[string]interface{}{
		"query":        query,
		"keyword":      keyword,
		"location":     location,
		"wasCorrected": wasCorrected,
		"tier":         winner,
		"resultCount":  len(results),
	})

	return &Output{
		Results:      results,
		Keyword:      keyword,
		Location:     location,
		WasCorrected: wasCorrected,
		Tier:         winner,
	}, nil
}

// correct runs one token through the spell corrector. Correction is an
// optimization, not a dependency: any corrector failure leaves the token
// as typed.
func (h *Handler) correct(ctx context.Context, token, kind string, corrected bool) (string, bool) {
	if token == "" {
		return token, corrected
	}

	out, err := h.corrector.Execute(ctx, &correctspelling.Input{Token: token})
	if err != nil {
		h.logger.Warn("spell correction unavailable", map[string]interface{}{
			"kind":  kind,
			"error": err.Error(),
		})
		return token, corrected
	}
	if out.WasCorrected {
		metrics.SpellCorrections.WithLabelValues(kind).Inc()
		return out.Result, true
	}
	return token, corrected
}
