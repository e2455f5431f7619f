// internal/assistant/flow/search.go
package flow

import (
	"context"
	"fmt"
	"strings"

	correctspelling "listing-assistant/internal/assistant/correct-spelling"
	rankresults "listing-assistant/internal/assistant/rank-results"
	resolvesearch "listing-assistant/internal/assistant/resolve-search"
	"listing-assistant/internal/assistant/respond"
	"listing-assistant/internal/models"
)

// handleSearchFlow runs the tiered local search and escalates online when
// nothing local matches. Every terminal branch resets the flow; only the
// initial too-short re-prompt keeps it open.
func (e *Engine) handleSearchFlow(ctx context.Context, sess *models.Session, input string) (string, error) {
	state := sess.State
	query := strings.TrimSpace(input)

	if len(query) < 2 {
		return "⚠️ Please enter what you're looking for (at least 2 characters):", nil
	}

	state.Data["search_query"] = query

	resolved, err := e.resolver.Execute(ctx, &resolvesearch.Input{Query: query})
	if err != nil {
		return "", err
	}

	if len(resolved.Results) > 0 {
		state.Reset()
		return e.renderLocalResults(ctx, resolved), nil
	}

	// No local hits: escalate to the online collaborator.
	state.Step = 2

	onlineQuery := query
	if resolved.Keyword != "" && resolved.Location != "" {
		onlineQuery = fmt.Sprintf("%s in %s", resolved.Keyword, resolved.Location)
	} else if resolved.Keyword != "" {
		onlineQuery = resolved.Keyword
	}

	onlineResults, err := e.online.Search(ctx, onlineQuery)
	if err != nil {
		flowErr := e.errors.HandleTurnError(sess.ID, ComponentName, err)
		state.Reset()
		return fmt.Sprintf(`❌ Could not search online: %s

No local results found for "%s".

**What would you like to do?**
- 🔍 Try a different search term
- ➕ Type "**add a new business**" to register one
`, flowErr.Message, query) + e.render(ctx, respond.TemplateSuggestionsAfterSearch, nil), nil
	}

	if len(onlineResults) == 0 {
		state.Reset()
		return e.renderNoResults(ctx, query), nil
	}

	state.Reset()
	return e.renderOnlineResults(ctx, query, resolved, onlineResults), nil
}

func (e *Engine) renderLocalResults(ctx context.Context, resolved *resolvesearch.Output) string {
	var b strings.Builder

	if resolved.Keyword != "" && resolved.Location != "" {
		fmt.Fprintf(&b, "🔍 Searching for **\"%s\"** in **%s**\n\n", resolved.Keyword, resolved.Location)
	} else if resolved.Keyword != "" {
		fmt.Fprintf(&b, "🔍 Searching for **\"%s\"**\n\n", resolved.Keyword)
	}
	if resolved.WasCorrected {
		b.WriteString("💡 _(Auto-corrected your search)_\n\n")
	}

	results := resolved.Results
	if len(results) > e.config.MaxResults {
		results = results[:e.config.MaxResults]
	}

	fmt.Fprintf(&b, "✅ **Found %d top-rated business(es):**\n", len(resolved.Results))
	for i := range results {
		b.WriteString(e.render(ctx, respond.TemplateSearchResult, respond.SearchResultData(&results[i])))
	}
	b.WriteString(e.render(ctx, respond.TemplateSuggestionsAfterSearch, nil))
	return b.String()
}

func (e *Engine) renderOnlineResults(ctx context.Context, query string, resolved *resolvesearch.Output, results []models.OnlineResult) string {
	ranked := results
	if out, err := e.ranker.Execute(ctx, &rankresults.Input{Results: results, Keyword: resolved.Keyword}); err == nil {
		ranked = make([]models.OnlineResult, len(out.Ranked))
		for i := range out.Ranked {
			ranked[i] = out.Ranked[i].OnlineResult
		}
	} else {
		e.logger.Warn("Ranking online results failed", map[string]interface{}{"error": err.Error()})
	}

	if len(ranked) > e.config.MaxResults {
		ranked = ranked[:e.config.MaxResults]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 No local results found for \"%s\".\n", query)
	if resolved.Keyword != "" && resolved.Location != "" {
		fmt.Fprintf(&b, "_(Searched: \"%s\" in %s)_\n", resolved.Keyword, resolved.Location)
	}
	b.WriteString("\n🌐 **Here are results from online search:**\n")
	for i := range ranked {
		b.WriteString(e.render(ctx, respond.TemplateSearchResult, respond.OnlineResultData(&ranked[i])))
	}
	b.WriteString(`

💡 **Tip:** Would you like to add any of these businesses to our database?
Type "**add a new business**" to register one!`)
	b.WriteString(e.render(ctx, respond.TemplateSuggestionsAfterSearch, nil))
	return b.String()
}

func (e *Engine) renderNoResults(ctx context.Context, query string) string {
	suggestionText := ""
	if out, err := e.corrector.Execute(ctx, &correctspelling.Input{Token: query}); err == nil && len(out.Suggestions) > 0 {
		suggestions := out.Suggestions
		if len(suggestions) > 3 {
			suggestions = suggestions[:3]
		}
		suggestionText = fmt.Sprintf("\n\n💡 **Did you mean:** %s?", strings.Join(suggestions, ", "))
	}

	return fmt.Sprintf(`❌ No results found for "%s" in our database or online.%s

**Try searching for:**
- A different business name
- A category (e.g., "Restaurant", "Salon")
- A location (e.g., city name)

Or type "**add a new business**" to register one!
`, query, suggestionText) + e.render(ctx, respond.TemplateSuggestionsAfterSearch, nil)
}
