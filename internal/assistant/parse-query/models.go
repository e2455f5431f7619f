// internal/assistant/parse-query/models.go
package parsequery

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	Keyword  string `json:"keyword"`
	Location string `json:"location"`
}
