// internal/assistant/respond/models.go
package respond

type Input struct {
	TemplateID string                 `json:"templateId"`
	Data       map[string]interface{} `json:"data"`
}

type Output struct {
	Text string `json:"text"`
}

// TemplateDefinition is one reply template: markdown text with {{placeholder}}
// slots and an optional JSON schema the data must satisfy before rendering.
type TemplateDefinition struct {
	ID      string                 `json:"id"`
	Schema  map[string]interface{} `json:"schema,omitempty"`
	Text    string                 `json:"text"`
	Version string                 `json:"version,omitempty"`
}
