package parsequery

import (
	"context"
	"strings"
)

const (
	ComponentName = "parse-query"
)

// defaultStopWords are removed only when they appear as whole tokens
// (space-bounded, leading, or trailing) — never as substrings of a word.
var defaultStopWords = []string{
	"best", "top", "near", "me", "in", "the", "a", "an",
	"find", "search", "for", "looking", "need", "want", "good", "great",
}

// Logger interface definition
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config    *Config
	stopWords []string
	logger    Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	stopWords := config.StopWords
	if len(stopWords) == 0 {
		stopWords = defaultStopWords
	}

	return &Handler{
		config:    config,
		stopWords: stopWords,
		logger: log.With(map[string]interface{}{
			"component": ComponentName,
		}),
	}
}

// Execute splits free text into a (keyword, location) pair. The last
// remaining word is assumed to be the location — a positional heuristic,
// not NLP: "best ice cream shop in mumbai" -> ("ice cream shop", "mumbai").
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(input.Query))

	for _, word := range h.stopWords {
		q = strings.ReplaceAll(q, " "+word+" ", " ")
		if strings.HasPrefix(q, word+" ") {
			q = q[len(word)+1:]
		}
		if strings.HasSuffix(q, " "+word) {
			q = q[:len(q)-len(word)-1]
		}
	}

	words := strings.Fields(q)

	out := &Output{}
	switch {
	case len(words) == 0:
		// nothing left
	case len(words) == 1:
		// Single word - could be keyword or location
		out.Keyword = words[0]
	default:
		out.Location = words[len(words)-1]
		out.Keyword = strings.Join(words[:len(words)-1], " ")
	}

	h.logger.Debug("query parsed", map[string]interface{}{
		"query":    input.Query,
		"keyword":  out.Keyword,
		"location": out.Location,
	})

	return out, nil
}
