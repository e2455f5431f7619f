package parseintent

import (
	"context"
	"errors"
	"strings"

	"listing-assistant/internal/models"
	"listing-assistant/pkg/rules"
)

const (
	ComponentName = "parse-intent"
)

var (
	ErrRegistryInvalid = errors.New("RULE_REGISTRY_INVALID")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config   *Config
	registry *rules.RuleRegistry
	logger   Logger
}

func NewHandler(config *Config, log Logger) (*Handler, error) {
	reg := rules.Default()
	if config.RegistryPath != "" {
		loaded, err := rules.LoadRegistry(config.RegistryPath)
		if err != nil {
			return nil, errors.Join(ErrRegistryInvalid, err)
		}
		reg = loaded
	}

	return &Handler{
		config:   config,
		registry: reg,
		logger: log.With(map[string]interface{}{
			"component": ComponentName,
		}),
	}, nil
}

// Execute classifies an utterance via the ordered rule cascade, first match
// wins. Phrase sets overlap, so rule priority decides ambiguous utterances:
// "search my business info" matches both search and show phrases and must
// resolve to search.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := strings.ToLower(strings.TrimSpace(input.Text))

	for _, rule := range h.registry.Rules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(text, phrase) {
				h.logger.Info("intent classified", map[string]interface{}{
					"intent":        rule.Intent,
					"matchedPhrase": phrase,
					"rulePriority":  rule.Priority,
				})
				return &Output{
					Intent:        models.Intent(rule.Intent),
					MatchedPhrase: phrase,
					RulePriority:  rule.Priority,
				}, nil
			}
		}
	}

	return &Output{Intent: models.IntentGeneral}, nil
}
