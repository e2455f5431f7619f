// internal/assistant/respond/handler.go
package respond

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"listing-assistant/internal/common/logger"
)

const ComponentName = "respond"

var (
	ErrTemplateNotFound         = errors.New("TEMPLATE_NOT_FOUND")
	ErrTemplateValidationFailed = errors.New("TEMPLATE_VALIDATION_FAILED")
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

type registryCacheEntry struct {
	registry *Registry
	loadedAt time.Time
}

type Handler struct {
	config *Config
	logger logger.Logger
	cache  *registryCacheEntry
	mu     sync.RWMutex
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

// Execute renders one template with the given data. Unknown placeholders
// render empty, so template edits cannot crash a conversation.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	template, err := h.loadTemplate(input.TemplateID)
	if err != nil {
		return nil, err
	}

	if err := h.validateData(template.Schema, input.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateValidationFailed, err)
	}

	text := placeholderPattern.ReplaceAllStringFunc(template.Text, func(match string) string {
		key := strings.TrimSpace(strings.Trim(match, "{}"))
		value := lookupNestedValue(input.Data, key)
		if value == nil {
			return ""
		}
		return fmt.Sprintf("%v", value)
	})

	return &Output{Text: text}, nil
}

// Render is Execute without the error surface for templates known at
// compile time; a registry problem degrades to an empty string and a log
// line instead of failing the turn.
func (h *Handler) Render(ctx context.Context, templateID string, data map[string]interface{}) string {
	out, err := h.Execute(ctx, &Input{TemplateID: templateID, Data: data})
	if err != nil {
		h.logger.Error("template render failed", map[string]interface{}{
			"templateId": templateID,
			"error":      err.Error(),
		})
		return ""
	}
	return out.Text
}

func (h *Handler) loadTemplate(id string) (*TemplateDefinition, error) {
	registry, err := h.loadRegistry()
	if err != nil {
		return nil, err
	}

	for i := range registry.Templates {
		if registry.Templates[i].ID == id {
			return &registry.Templates[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

func (h *Handler) loadRegistry() (*Registry, error) {
	if h.config.RegistryPath == "" {
		return Default(), nil
	}

	h.mu.RLock()
	if h.cache != nil && time.Since(h.cache.loadedAt) < h.config.CacheTTL {
		registry := h.cache.registry
		h.mu.RUnlock()
		return registry, nil
	}
	h.mu.RUnlock()

	registry, err := LoadRegistry(h.config.RegistryPath)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.cache = &registryCacheEntry{registry: registry, loadedAt: time.Now()}
	h.mu.Unlock()
	return registry, nil
}

func (h *Handler) validateData(schemaMap, data map[string]interface{}) error {
	if len(schemaMap) == 0 {
		return nil
	}

	if data == nil {
		data = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schemaMap),
		gojsonschema.NewGoLoader(data),
	)
	if err != nil {
		return err
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("data validation failed: %v", errs)
	}
	return nil
}

func lookupNestedValue(data map[string]interface{}, key string) interface{} {
	parts := strings.Split(key, ".")
	current := interface{}(data)

	for _, part := range parts {
		currentMap, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		val, exists := currentMap[part]
		if !exists {
			return nil
		}
		current = val
	}
	return current
}
