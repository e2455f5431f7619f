package rankresults

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"listing-assistant/internal/common/logger"
	"listing-assistant/internal/models"
)

const (
	ComponentName = "rank-results"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = &Config{}
	}
	config.applyDefaults()
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": ComponentName}),
	}
}

// Execute orders online search results before the caller truncates to the
// top N. Final Score = (Rating * 0.5) + (Popularity * 0.3) + (Relevance * 0.2).
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	start := time.Now()

	// Track seen name+address pairs to avoid duplicates
	seen := make(map[string]bool)
	var ranked []RankedResult

	for _, r := range input.Results {
		key := strings.ToLower(r.Name) + "|" + strings.ToLower(r.Address)
		if seen[key] {
			continue
		}
		seen[key] = true

		// Rating: 0-5 stars normalized 0-100; missing rating scores neutral
		ratingScore := 50.0
		if r.ReviewsAverage != nil {
			ratingScore = math.Min(math.Max(*r.ReviewsAverage*20.0, 0.0), 100.0)
		}

		// Popularity: review count, clamped and normalized 0-100
		popularityScore := math.Min(math.Max(float64(r.ReviewsCount), 0.0)/10.0, 100.0)

		relevanceScore := h.calculateRelevanceScore(&r, input.Keyword)

		finalScore := ratingScore*0.5 + popularityScore*0.3 + relevanceScore*0.2

		ranked = append(ranked, RankedResult{
			OnlineResult:    r,
			FinalScore:      finalScore,
			RatingScore:     ratingScore,
			PopularityScore: popularityScore,
			RelevanceScore:  relevanceScore,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	if len(ranked) > h.config.MaxItems {
		ranked = ranked[:h.config.MaxItems]
	}

	duration := time.Since(start).Milliseconds()
	h.logger.Info("ranking completed", map[string]interface{}{
		"inputCount":  len(input.Results),
		"outputCount": len(ranked),
		"durationMs":  duration,
	})

	return &Output{Ranked: ranked}, nil
}

// calculateRelevanceScore rewards keyword presence in the name or category.
func (h *Handler) calculateRelevanceScore(r *models.OnlineResult, keyword string) float64 {
	if keyword == "" {
		return 50.0 // Neutral when the caller has no keyword to match
	}

	kw := strings.ToLower(keyword)
	name := strings.ToLower(r.Name)
	category := strings.ToLower(r.Category)

	switch {
	case name == kw || category == kw:
		return 100.0
	case strings.Contains(name, kw):
		return 90.0
	case strings.Contains(category, kw):
		return 70.0
	default:
		return 0.0
	}
}
