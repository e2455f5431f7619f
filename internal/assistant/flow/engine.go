// internal/assistant/flow/engine.go
//
// Package flow drives the multi-step show/update/add/search dialogs. The
// engine owns no state of its own: all mutable turn state lives in the
// session's ConversationState, and every collaborator failure is absorbed
// at this boundary and rendered as user-visible text.
package flow

import (
	"context"
	"errors"
	"strings"
	"time"

	correctspelling "listing-assistant/internal/assistant/correct-spelling"
	filtertext "listing-assistant/internal/assistant/filter-text"
	parseintent "listing-assistant/internal/assistant/parse-intent"
	rankresults "listing-assistant/internal/assistant/rank-results"
	resolvesearch "listing-assistant/internal/assistant/resolve-search"
	"listing-assistant/internal/assistant/respond"
	cerrors "listing-assistant/internal/common/errors"
	"listing-assistant/internal/common/logger"
	"listing-assistant/internal/common/metrics"
	"listing-assistant/internal/models"
)

const ComponentName = "conversation-flow"

var ErrNilSession = errors.New("NIL_SESSION")

// cancelWords aborts any active flow before step logic runs.
var cancelWords = map[string]bool{
	"cancel":    true,
	"exit":      true,
	"quit":      true,
	"stop":      true,
	"nevermind": true,
}

// IntentClassifier selects a conversation branch for an idle session.
type IntentClassifier interface {
	Execute(ctx context.Context, input *parseintent.Input) (*parseintent.Output, error)
}

// ListingStore is the storage surface the dialogs read and write through.
type ListingStore interface {
	LookupByIdentity(ctx context.Context, phone string) ([]models.Listing, error)
	Latest(ctx context.Context) (*models.Listing, error)
	Insert(ctx context.Context, in *models.ListingInput) (int64, error)
	Update(ctx context.Context, id int64, fallbackPhone string, updates map[string]string) (bool, error)
	SuggestedCategories(ctx context.Context, limit int) ([]string, error)
}

// SearchResolver runs the tiered local search.
type SearchResolver interface {
	Execute(ctx context.Context, input *resolvesearch.Input) (*resolvesearch.Output, error)
}

// SpellCorrector supplies did-you-mean suggestions when every tier misses.
type SpellCorrector interface {
	Execute(ctx context.Context, input *correctspelling.Input) (*correctspelling.Output, error)
}

// OnlineSearcher is the external escalation target when local search is empty.
type OnlineSearcher interface {
	Search(ctx context.Context, query string) ([]models.OnlineResult, error)
}

// ResultRanker orders online results before truncation.
type ResultRanker interface {
	Execute(ctx context.Context, input *rankresults.Input) (*rankresults.Output, error)
}

// Renderer produces reply text from registered templates.
type Renderer interface {
	Render(ctx context.Context, templateID string, data map[string]interface{}) string
}

type Engine struct {
	config    *Config
	intents   IntentClassifier
	store     ListingStore
	resolver  SearchResolver
	corrector SpellCorrector
	online    OnlineSearcher
	ranker    ResultRanker
	renderer  Renderer
	errors    *cerrors.ErrorHandler
	logger    logger.Logger
}

func NewEngine(
	config *Config,
	intents IntentClassifier,
	store ListingStore,
	resolver SearchResolver,
	corrector SpellCorrector,
	online OnlineSearcher,
	ranker ResultRanker,
	renderer Renderer,
	errHandler *cerrors.ErrorHandler,
	log logger.Logger,
) *Engine {
	if config == nil {
		config = &Config{}
	}
	config.applyDefaults()
	return &Engine{
		config:    config,
		intents:   intents,
		store:     store,
		resolver:  resolver,
		corrector: corrector,
		online:    online,
		ranker:    ranker,
		renderer:  renderer,
		errors:    errHandler,
		logger:    log.WithFields(map[string]interface{}{"component": ComponentName}),
	}
}

// ProcessTurn consumes one user utterance and produces exactly one reply.
// Collaborator errors never escape: they are logged, the active flow resets,
// and the caller receives recovery text. The returned error covers only
// programming mistakes such as a nil session.
func (e *Engine) ProcessTurn(ctx context.Context, sess *models.Session, text string) (string, error) {
	if sess == nil || sess.State == nil {
		return "", ErrNilSession
	}

	start := time.Now()
	trimmed := strings.TrimSpace(text)

	// Active flows accept short answers such as menu numbers, so the junk
	// screen applies only to fresh utterances.
	if sess.State.Mode == models.ModeNone && filtertext.IsJunk(trimmed) {
		return "⚠️ Invalid or suspicious input detected.", nil
	}

	reply, label, err := e.route(ctx, sess, trimmed)
	if err != nil {
		flowErr := e.errors.HandleTurnError(sess.ID, ComponentName, err)
		sess.State.Reset()
		metrics.TurnsFailed.WithLabelValues(label, flowErr.Code).Inc()
		return e.recoveryText(flowErr), nil
	}

	metrics.TurnsCompleted.WithLabelValues(label).Inc()
	metrics.TurnDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	e.logger.Info("Turn processed", map[string]interface{}{
		"sessionId":  sess.ID,
		"intent":     label,
		"mode":       string(sess.State.Mode),
		"step":       sess.State.Step,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return reply, nil
}

// route picks between continuing an active flow and classifying a fresh
// utterance. The second return value is the metrics label for the turn.
func (e *Engine) route(ctx context.Context, sess *models.Session, text string) (string, string, error) {
	state := sess.State

	if state.Mode != models.ModeNone {
		label := string(state.Mode)
		if cancelWords[strings.ToLower(text)] {
			state.Reset()
			return msgCancelled, label, nil
		}
		reply, err := e.continueFlow(ctx, sess, text)
		return reply, label, err
	}

	out, err := e.intents.Execute(ctx, &parseintent.Input{Text: text})
	if err != nil {
		return "", string(models.IntentGeneral), err
	}
	label := string(out.Intent)
	reply, err := e.dispatchIntent(ctx, sess, out.Intent, text)
	return reply, label, err
}

func (e *Engine) continueFlow(ctx context.Context, sess *models.Session, text string) (string, error) {
	switch sess.State.Mode {
	case models.ModeShow:
		return e.handleShowFlow(ctx, sess, text)
	case models.ModeUpdate:
		return e.handleUpdateFlow(ctx, sess, text)
	case models.ModeAdd:
		return e.handleAddFlow(ctx, sess, text)
	case models.ModeSearch:
		return e.handleSearchFlow(ctx, sess, text)
	}
	sess.State.Reset()
	return e.render(ctx, respond.TemplateGreeting, nil), nil
}

func (e *Engine) dispatchIntent(ctx context.Context, sess *models.Session, intent models.Intent, text string) (string, error) {
	state := sess.State

	switch intent {
	case models.IntentGreeting:
		return e.render(ctx, respond.TemplateGreeting, nil), nil

	case models.IntentShow:
		state.Begin(models.ModeShow)
		return msgShowPrompt, nil

	case models.IntentUpdate:
		state.Begin(models.ModeUpdate)
		return msgUpdatePrompt, nil

	case models.IntentAdd:
		state.Begin(models.ModeAdd)
		return msgAddPrompt, nil

	case models.IntentSearch:
		query := stripSearchPhrases(text)
		if len(query) >= 2 {
			state.Begin(models.ModeSearch)
			return e.handleSearchFlow(ctx, sess, query)
		}
		state.Begin(models.ModeSearch)
		return e.searchGuidance(ctx), nil

	default:
		// General utterances fall through to search so free text like
		// "coffee mumbai" still resolves.
		if len(text) >= 2 {
			state.Begin(models.ModeSearch)
			return e.handleSearchFlow(ctx, sess, text)
		}
		state.Begin(models.ModeSearch)
		return e.searchGuidance(ctx), nil
	}
}

// searchGuidance asks what to look for, decorated with popular categories
// when the store can supply them.
func (e *Engine) searchGuidance(ctx context.Context) string {
	footer := ""
	categories, err := e.store.SuggestedCategories(ctx, e.config.CategoryLimit)
	if err != nil {
		e.logger.Warn("Category suggestions unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		footer = respond.CategoriesFooter(categories)
	}
	return e.render(ctx, respond.TemplateSearchGuidance, map[string]interface{}{"categories": footer})
}

func (e *Engine) render(ctx context.Context, templateID string, data map[string]interface{}) string {
	return e.renderer.Render(ctx, templateID, data)
}

func (e *Engine) businessDetails(ctx context.Context, l *models.Listing) string {
	return e.render(ctx, respond.TemplateBusinessDetails, respond.ListingData(l))
}

func (e *Engine) recoveryText(flowErr *cerrors.FlowError) string {
	return "❌ Something went wrong: " + flowErr.Message + `

What would you like to do?
- 🔍 **Show my business**
- ✏️ **Update my business**
- ➕ **Add a new business**`
}

// searchPhraseFillers are stripped from a search-intent utterance to leave
// the actual query. Longer phrases come first so their parts are not
// orphaned by shorter replacements.
var searchPhraseFillers = []string{
	"where can i find",
	"search for", "find a", "looking for", "need a", "want a",
	"search", "find", "looking", "recommend", "suggest",
	"best", "top", "near me",
}

func stripSearchPhrases(text string) string {
	q := strings.ToLower(strings.TrimSpace(text))
	for _, w := range searchPhraseFillers {
		q = strings.ReplaceAll(q, w, "")
	}
	return strings.Join(strings.Fields(q), " ")
}

const msgCancelled = `No problem! I've cancelled the current operation.

What would you like to do next?
- 🔍 **Show my business**
- ✏️ **Update my business**
- ➕ **Add a new business**`

const msgInvalidPhone = `⚠️ That doesn't look like a valid phone number.

Please enter a valid phone number (at least 6 digits):
_(Example: 9873312399 or 98733 12399)_`
