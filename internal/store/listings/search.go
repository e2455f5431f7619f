// internal/store/listings/search.go
package listings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"listing-assistant/internal/models"
)

var (
	ErrMissingParam      = errors.New("missing required parameter")
	ErrUnknownSearchTier = errors.New("unknown search tier")
)

// SearchTier selects one of the progressively broader lookup strategies.
// Resolution walks them in order and stops at the first tier with rows.
type SearchTier string

const (
	TierKeywordAndLocation SearchTier = "keyword_and_location"
	TierKeywordOnly        SearchTier = "keyword_only"
	TierLocationOnly       SearchTier = "location_only"
	TierFullQuery          SearchTier = "full_query"
)

const searchLimit = 5

const listingColumns = `id, name, COALESCE(address,''), COALESCE(website,''),
	       COALESCE(phone_number,''), COALESCE(category,''), COALESCE(subcategory,''),
	       COALESCE(city,''), COALESCE(state,''), COALESCE(area,''),
	       reviews_count, reviews_average, COALESCE(created_at,'')`

// SearchFunc returns: listings, executionTime (ms), error
type SearchFunc func(ctx context.Context, db *sql.DB, params map[string]interface{}) ([]models.Listing, int64, error)

// SearchRegistry maps each tier to its query. Rows always come back ordered
// by rating then review count, best first, with unrated rows last.
var SearchRegistry = map[SearchTier]SearchFunc{
	TierKeywordAndLocation: searchKeywordAndLocation,
	TierKeywordOnly:        searchKeywordOnly,
	TierLocationOnly:       searchLocationOnly,
	TierFullQuery:          searchFullQuery,
}

// ExecuteSearch dispatches to the tier's query function.
func ExecuteSearch(ctx context.Context, db *sql.DB, tier SearchTier, params map[string]interface{}) ([]models.Listing, int64, error) {
	fn, exists := SearchRegistry[tier]
	if !exists {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownSearchTier, tier)
	}
	return fn(ctx, db, params)
}

func searchKeywordAndLocation(ctx context.Context, db *sql.DB, params map[string]interface{}) ([]models.Listing, int64, error) {
	keyword, ok := params["keyword"].(string)
	if !ok || keyword == "" {
		return nil, 0, ErrMissingParam
	}
	location, ok := params["location"].(string)
	if !ok || location == "" {
		return nil, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM business_listings
		WHERE (name ILIKE $1 OR category ILIKE $1 OR subcategory ILIKE $1)
		  AND (city ILIKE $2 OR address ILIKE $2)
		ORDER BY reviews_average DESC NULLS LAST, reviews_count DESC
		LIMIT $3`,
		contains(keyword), contains(location), searchLimit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := scanListings(rows)
	if err != nil {
		return nil, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, execTime, nil
}

func searchKeywordOnly(ctx context.Context, db *sql.DB, params map[string]interface{}) ([]models.Listing, int64, error) {
	keyword, ok := params["keyword"].(string)
	if !ok || keyword == "" {
		return nil, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM business_listings
		WHERE name ILIKE $1 OR category ILIKE $1 OR subcategory ILIKE $1
		ORDER BY reviews_average DESC NULLS LAST, reviews_count DESC
		LIMIT $2`,
		contains(keyword), searchLimit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := scanListings(rows)
	if err != nil {
		return nil, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, execTime, nil
}

func searchLocationOnly(ctx context.Context, db *sql.DB, params map[string]interface{}) ([]models.Listing, int64, error) {
	location, ok := params["location"].(string)
	if !ok || location == "" {
		return nil, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM business_listings
		WHERE city ILIKE $1 OR address ILIKE $1
		ORDER BY reviews_average DESC NULLS LAST, reviews_count DESC
		LIMIT $2`,
		contains(location), searchLimit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := scanListings(rows)
	if err != nil {
		return nil, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, execTime, nil
}

// searchFullQuery is the last resort: the raw, uncorrected user query
// matched against name, category and city.
func searchFullQuery(ctx context.Context, db *sql.DB, params map[string]interface{}) ([]models.Listing, int64, error) {
	query, ok := params["query"].(string)
	if !ok || query == "" {
		return nil, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM business_listings
		WHERE name ILIKE $1 OR category ILIKE $1 OR city ILIKE $1
		ORDER BY reviews_average DESC NULLS LAST, reviews_count DESC
		LIMIT $2`,
		contains(query), searchLimit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := scanListings(rows)
	if err != nil {
		return nil, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, execTime, nil
}

func contains(term string) string {
	return "%" + term + "%"
}

func scanListings(rows *sql.Rows) ([]models.Listing, error) {
	var results []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *l)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var l models.Listing
	var avg sql.NullFloat64
	err := row.Scan(
		&l.ID, &l.Name, &l.Address, &l.Website,
		&l.PhoneNumber, &l.Category, &l.Subcategory,
		&l.City, &l.State, &l.Area,
		&l.ReviewsCount, &avg, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		v := avg.Float64
		l.ReviewsAverage = &v
	}
	return &l, nil
}
