package correctspelling

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

const (
	ComponentName = "correct-spelling"
)

// CorpusProvider exposes the live correction reference set: lowercase
// category names, city names, and business-name tokens.
type CorpusProvider interface {
	Terms(ctx context.Context) ([]string, error)
}

// Logger interface definition
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	corpus CorpusProvider
	logger Logger
}

func NewHandler(config *Config, corpus CorpusProvider, log Logger) *Handler {
	return &Handler{
		config: config,
		corpus: corpus,
		logger: log.With(map[string]interface{}{
			"component": ComponentName,
		}),
	}
}

// Execute corrects a token against the corpus. Correction only happens when
// the token is genuinely absent: exact membership, substring overlap in
// either direction, or one verbatim sub-word all leave the token untouched.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	cutoff := input.Cutoff
	if cutoff <= 0 {
		cutoff = h.config.Cutoff
	}

	token := input.Token
	tokenLower := strings.ToLower(strings.TrimSpace(token))

	terms, err := h.corpus.Terms(ctx)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return &Output{Result: token}, nil
	}

	termSet := make(map[string]bool, len(terms))
	for _, t := range terms {
		termSet[t] = true
	}

	// 1. Exact membership: nothing to do.
	if termSet[tokenLower] {
		return &Output{Result: token}, nil
	}

	// 2. Substring overlap in either direction counts as a valid partial match.
	for _, term := range terms {
		if strings.Contains(term, tokenLower) || strings.Contains(tokenLower, term) {
			return &Output{Result: token}, nil
		}
	}

	// 3. One verbatim sub-word is enough to trust the whole token.
	for _, word := range strings.Fields(tokenLower) {
		if len(word) >= 3 && termSet[word] {
			return &Output{Result: token}, nil
		}
	}

	// 4. Whole-token nearest neighbours.
	matches := closeMatches(tokenLower, terms, h.config.MaxSuggestions, cutoff)
	if len(matches) > 0 {
		corrected := matches[0]
		if startsUpper(token) {
			corrected = titleCase(corrected)
		}
		h.logger.Info("token corrected", map[string]interface{}{
			"token":     token,
			"corrected": corrected,
		})
		return &Output{Result: corrected, WasCorrected: true, Suggestions: matches}, nil
	}

	// 5. Per-word correction for multi-word tokens.
	words := strings.Fields(tokenLower)
	if len(words) > 1 {
		correctedWords := make([]string, 0, len(words))
		anyCorrected := false

		for _, word := range words {
			if len(word) < 3 { // Skip short words
				correctedWords = append(correctedWords, word)
				continue
			}

			wordExists := false
			for _, term := range terms {
				if strings.Contains(term, word) {
					wordExists = true
					break
				}
			}
			if wordExists {
				correctedWords = append(correctedWords, word)
				continue
			}

			wordMatches := closeMatches(word, terms, 1, cutoff)
			if len(wordMatches) > 0 {
				correctedWords = append(correctedWords, wordMatches[0])
				anyCorrected = true
			} else {
				correctedWords = append(correctedWords, word)
			}
		}

		if anyCorrected {
			corrected := strings.Join(correctedWords, " ")
			if startsUpper(token) {
				corrected = titleCase(corrected)
			}
			h.logger.Info("token corrected per-word", map[string]interface{}{
				"token":     token,
				"corrected": corrected,
			})
			return &Output{Result: corrected, WasCorrected: true, Suggestions: []string{corrected}}, nil
		}
	}

	return &Output{Result: token}, nil
}

// closeMatches returns up to n corpus terms whose similarity ratio to token
// is at least cutoff, best first.
func closeMatches(token string, terms []string, n int, cutoff float64) []string {
	type scored struct {
		term  string
		score float64
	}

	candidates := make([]scored, 0, 8)
	for _, term := range terms {
		score := levenshtein.Similarity(token, term, nil)
		if score >= cutoff {
			candidates = append(candidates, scored{term: term, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.term
	}
	return out
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// titleCase capitalizes the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
