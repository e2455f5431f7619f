// internal/assistant/respond/format.go
package respond

import (
	"fmt"
	"strings"

	"listing-assistant/internal/models"
)

// ListingData maps a stored listing onto the business-details template.
func ListingData(l *models.Listing) map[string]interface{} {
	return map[string]interface{}{
		"name":     orDefault(l.Name, "N/A"),
		"address":  orDefault(l.Address, "N/A"),
		"phone":    orDefault(l.PhoneNumber, "N/A"),
		"website":  orDefault(l.Website, "Not set"),
		"category": orDefault(l.Category, "N/A"),
		"city":     orDefault(l.City, "N/A"),
		"state":    orDefault(l.State, "N/A"),
	}
}

// SearchResultData maps a stored listing onto the search-result template.
func SearchResultData(l *models.Listing) map[string]interface{} {
	rating := "N/A"
	if l.ReviewsAverage != nil {
		rating = trimFloat(*l.ReviewsAverage)
	}
	return map[string]interface{}{
		"name":     l.Name,
		"address":  orDefault(l.Address, "N/A"),
		"phone":    orDefault(l.PhoneNumber, "N/A"),
		"rating":   rating,
		"reviews":  l.ReviewsCount,
		"category": orDefault(l.Category, "N/A"),
		"source":   "📁 Database",
	}
}

// OnlineResultData maps an external result onto the search-result template.
func OnlineResultData(r *models.OnlineResult) map[string]interface{} {
	rating := "N/A"
	if r.ReviewsAverage != nil {
		rating = trimFloat(*r.ReviewsAverage)
	}
	return map[string]interface{}{
		"name":     r.Name,
		"address":  orDefault(r.Address, "N/A"),
		"phone":    orDefault(r.PhoneNumber, "N/A"),
		"rating":   rating,
		"reviews":  r.ReviewsCount,
		"category": orDefault(r.Category, "N/A"),
		"source":   "🌐 Online",
	}
}

// CategoriesFooter renders the popular-categories block for guidance
// prompts; empty input renders nothing.
func CategoriesFooter(categories []string) string {
	if len(categories) == 0 {
		return ""
	}
	if len(categories) > 8 {
		categories = categories[:8]
	}
	tagged := make([]string, len(categories))
	for i, c := range categories {
		tagged[i] = "🏷️ " + c
	}
	return "\n\n**Popular categories in our database:**\n" + strings.Join(tagged, ", ")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func trimFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
