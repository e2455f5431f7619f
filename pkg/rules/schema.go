// pkg/rules/schema.go
package rules

// RuleRegistry is the on-disk intent rule table. Rules are evaluated in
// ascending priority order, first match wins, so ordering is load-bearing.
type RuleRegistry struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Rules       []Rule `json:"rules"`
}

// Rule binds a phrase set to an intent at a given priority.
type Rule struct {
	Intent   string   `json:"intent"`
	Priority int      `json:"priority"`
	Phrases  []string `json:"phrases"`
}

// RegistrySchema validates the registry document shape before use.
const RegistrySchema = `{
	"type": "object",
	"required": ["version", "rules"],
	"properties": {
		"version": {"type": "string", "minLength": 1},
		"lastUpdated": {"type": "string"},
		"rules": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["intent", "priority", "phrases"],
				"properties": {
					"intent": {
						"type": "string",
						"enum": ["greeting", "search", "show", "update", "add"]
					},
					"priority": {"type": "integer", "minimum": 1},
					"phrases": {
						"type": "array",
						"minItems": 1,
						"items": {"type": "string", "minLength": 1}
					}
				}
			}
		}
	}
}`
