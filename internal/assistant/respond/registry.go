// internal/assistant/respond/registry.go
package respond

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// Registry holds every reply template by id.
type Registry struct {
	Version   string               `json:"version,omitempty"`
	Templates []TemplateDefinition `json:"templates"`
}

// RegistrySchema validates a template registry document.
const RegistrySchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["templates"],
	"properties": {
		"version": {"type": "string"},
		"templates": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "text"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"text": {"type": "string", "minLength": 1},
					"schema": {"type": "object"},
					"version": {"type": "string"}
				}
			}
		}
	}
}`

// LoadRegistry reads and validates a template registry file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	var registry Registry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &registry, nil
}

// ValidateDocument checks raw registry JSON against RegistrySchema.
func ValidateDocument(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(RegistrySchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate registry: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("invalid registry: %v", errs)
	}
	return nil
}

// Template ids used across the assistant.
const (
	TemplateGreeting               = "greeting"
	TemplateBusinessDetails        = "business-details"
	TemplateSearchResult           = "search-result"
	TemplateSuggestionsAfterShow   = "suggestions-after-show"
	TemplateSuggestionsAfterSearch = "suggestions-after-search"
	TemplateSuggestionsAfterUpdate = "suggestions-after-update"
	TemplateSuggestionsAfterAdd    = "suggestions-after-add"
	TemplateSearchGuidance         = "search-guidance"
)

// Default returns the built-in templates.
func Default() *Registry {
	return &Registry{
		Version: "1.0",
		Templates: []TemplateDefinition{
			{
				ID: TemplateGreeting,
				Text: `Hi 👋 I can help you manage your business.

What would you like to do next?
- 🔍 **Search for a business** - Find restaurants, salons, stores, etc.
- 📋 **Show my business** - View your business details
- ✏️ **Update my business** - Edit your business information
- ➕ **Add a new business** - Register a new business

Just type what you're looking for! For example: "Find a restaurant near me" or "Search for salons"`,
			},
			{
				ID: TemplateBusinessDetails,
				Schema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"name"},
					"properties": map[string]interface{}{
						"name": map[string]interface{}{"type": "string", "minLength": 1},
					},
				},
				Text: `
### 🏢 {{name}}
- 📍 **Address:** {{address}}
- 📞 **Phone:** {{phone}}
- 🌐 **Website:** {{website}}
- 🏷️ **Category:** {{category}}
- 📍 **City:** {{city}}
- 📍 **State:** {{state}}
`,
			},
			{
				ID: TemplateSearchResult,
				Schema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"name"},
				},
				Text: `
### {{name}}
- 📍 {{address}}
- 📞 {{phone}}
- ⭐ {{rating}} ({{reviews}} reviews)
- 🏷️ {{category}}
- {{source}}
---`,
			},
			{
				ID: TemplateSuggestionsAfterShow,
				Text: `
---
**What would you like to do next?**
- ✏️ Type "**update my business**" to make changes
- ➕ Type "**add a new business**" to register another business
- 🔍 Type "**search for**" + what you need`,
			},
			{
				ID: TemplateSuggestionsAfterSearch,
				Text: `
---
**What would you like to do next?**
- 🔍 Search for something else
- 📋 Type "**show my business**" to view your business
- ✏️ Type "**update my business**" to make changes`,
			},
			{
				ID: TemplateSuggestionsAfterUpdate,
				Text: `
---
**What would you like to do next?**
- 🔍 Type "**show my business**" to view the updated details
- ✏️ Type "**update my business**" to make more changes
- ➕ Type "**add a new business**" to register another business`,
			},
			{
				ID: TemplateSuggestionsAfterAdd,
				Text: `
---
**What would you like to do next?**
- 🔍 Type "**show my business**" to view your new business
- ✏️ Type "**update my business**" to make changes to it
- ➕ Type "**add a new business**" to register another business`,
			},
			{
				ID: TemplateSearchGuidance,
				Text: `🔍 What would you like to search for?

You can search by:
- Business name
- Category (e.g., Restaurant, Salon, Store)
- Location/City{{categories}}`,
			},
		},
	}
}
