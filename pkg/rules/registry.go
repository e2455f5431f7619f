// pkg/rules/registry.go
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// LoadRegistry reads, validates, and priority-sorts a rule registry file.
func LoadRegistry(path string) (*RuleRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	var reg RuleRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}

	sort.SliceStable(reg.Rules, func(i, j int) bool {
		return reg.Rules[i].Priority < reg.Rules[j].Priority
	})

	return &reg, nil
}

// ValidateDocument checks a raw registry document against RegistrySchema.
func ValidateDocument(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(RegistrySchema)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("rule registry validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("rule registry invalid: %s", strings.Join(msgs, "; "))
	}

	return nil
}

// Default returns the built-in rule table, used when no registry file is
// configured. Priority order is part of the contract: overlapping phrases
// (e.g. "business") must resolve to the earliest matching rule.
func Default() *RuleRegistry {
	return &RuleRegistry{
		Version: "builtin",
		Rules: []Rule{
			{
				Intent:   "greeting",
				Priority: 1,
				Phrases: []string{
					"hi", "hello", "hey", "good morning", "good afternoon",
					"good evening", "howdy", "hola", "greetings", "sup",
					"what's up", "yo", "namaste",
				},
			},
			{
				Intent:   "search",
				Priority: 2,
				Phrases: []string{
					"search for", "find a", "looking for", "need a", "want a",
					"search", "find", "looking", "recommend", "suggest",
					"near me", "best", "top", "where can i find",
				},
			},
			{
				Intent:   "show",
				Priority: 3,
				Phrases: []string{
					"show my business", "view my business", "display business",
					"get my business", "my business details", "business info",
				},
			},
			{
				Intent:   "update",
				Priority: 4,
				Phrases: []string{
					"update my business", "edit details", "change my business",
					"modify business", "update business", "edit business",
					"change details", "update details", "edit my business",
					"modify my business", "fix my business", "correct details",
				},
			},
			{
				Intent:   "add",
				Priority: 5,
				Phrases: []string{
					"add business", "register my business", "create business",
					"new business", "add my business", "register business",
					"list my business", "add a business", "register a business",
					"add new business", "create new business",
				},
			},
		},
	}
}
