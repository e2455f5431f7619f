// internal/store/listings/store.go
package listings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"listing-assistant/internal/common/database"
	cerrors "listing-assistant/internal/common/errors"
	"listing-assistant/internal/common/logger"
	"listing-assistant/internal/identity"
	"listing-assistant/internal/models"
)

const createdAtLayout = "2006-01-02 15:04:05"

// Invalidator is notified after every successful write so derived data
// (the spell-correction corpus) can be rebuilt lazily.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Store is the Postgres-backed listing repository. The identity_key column
// holds the digit-only form of phone_number and is written in the same
// statement as any phone change, so identity lookups never go stale.
type Store struct {
	db          *database.PostgresClient
	invalidator Invalidator
	logger      logger.Logger
}

func New(db *database.PostgresClient, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "listings-store"}),
	}
}

// SetInvalidator wires the corpus cache; nil leaves writes un-notified.
func (s *Store) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

// LookupByIdentity returns every listing whose identity key matches the
// digit-only form of phone, most recently created first. An input with no
// digits matches nothing.
func (s *Store) LookupByIdentity(ctx context.Context, phone string) ([]models.Listing, error) {
	key := identity.Normalize(phone)
	if key == "" {
		return nil, nil
	}

	start := time.Now()

	rows, err := s.db.Query(ctx, `
		SELECT `+listingColumns+`
		FROM business_listings
		WHERE identity_key = $1
		ORDER BY created_at DESC`, key)
	if err != nil {
		return nil, cerrors.NewQueryExecutionFailedError("lookup_by_identity", err)
	}
	defer rows.Close()

	results, err := scanListings(rows)
	if err != nil {
		return nil, cerrors.NewQueryExecutionFailedError("lookup_by_identity", err)
	}

	s.logger.Debug("identity lookup complete", map[string]interface{}{
		"rowCount":      len(results),
		"executionTime": time.Since(start).Milliseconds(),
	})
	return results, nil
}

// LookupByID fetches a single listing by primary key. A missing row is
// (nil, nil), not an error.
func (s *Store) LookupByID(ctx context.Context, id int64) (*models.Listing, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+listingColumns+`
		FROM business_listings
		WHERE id = $1
		LIMIT 1`, id)

	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, cerrors.NewQueryExecutionFailedError("lookup_by_id", err)
	}
	return l, nil
}

// Latest fetches the most recently inserted listing.
func (s *Store) Latest(ctx context.Context) (*models.Listing, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+listingColumns+`
		FROM business_listings
		ORDER BY id DESC
		LIMIT 1`)

	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, cerrors.NewQueryExecutionFailedError("latest", err)
	}
	return l, nil
}

// Insert stores a new listing and returns its id. The phone number is
// stored in digit-only form. Inserting the same name/address/area/city/state
// with the same identity key returns the existing row's id instead of
// creating a duplicate.
func (s *Store) Insert(ctx context.Context, in *models.ListingInput) (int64, error) {
	if in == nil {
		return 0, cerrors.NewValidationFailedError("input", "listing input cannot be nil")
	}

	key := identity.Normalize(in.PhoneNumber)
	start := time.Now()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, cerrors.NewDatabaseConnectionFailedError(err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM business_listings
		WHERE LOWER(name) = LOWER($1)
		  AND LOWER(COALESCE(address,'')) = LOWER($2)
		  AND LOWER(COALESCE(area,'')) = LOWER($3)
		  AND LOWER(COALESCE(city,'')) = LOWER($4)
		  AND LOWER(COALESCE(state,'')) = LOWER($5)
		  AND COALESCE(identity_key,'') = $6
		ORDER BY id DESC
		LIMIT 1`,
		in.Name, in.Address, in.Area, in.City, in.State, key).Scan(&existing)
	if err == nil {
		if commitErr := tx.Commit(); commitErr != nil {
			return 0, cerrors.NewDatabaseInsertFailedError(commitErr)
		}
		s.logger.Info("listing already exists, returning existing id", map[string]interface{}{
			"listingId": existing,
		})
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, cerrors.NewQueryExecutionFailedError("insert_dedupe", err)
	}

	createdAt := time.Now().UTC().Format(createdAtLayout)

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO business_listings
		(name, address, website, phone_number, identity_key,
		 reviews_count, reviews_average,
		 category, subcategory, city, state, area, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, NULL, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		in.Name, in.Address, in.Website, key, key,
		in.Category, in.Subcategory, in.City, in.State, in.Area, createdAt).Scan(&id)
	if err != nil {
		return 0, cerrors.NewDatabaseInsertFailedError(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, cerrors.NewDatabaseInsertFailedError(err)
	}

	s.invalidate(ctx)

	s.logger.Info("listing inserted", map[string]interface{}{
		"listingId":     id,
		"executionTime": time.Since(start).Milliseconds(),
	})
	return id, nil
}

// Update rewrites the allow-listed fields of one listing. The row is found
// by id first; when id is zero or matches nothing, every row sharing the
// fallback phone's identity key is updated instead. A phone_number update
// writes the identity_key column in the same statement. Returns whether any
// row changed.
func (s *Store) Update(ctx context.Context, id int64, fallbackPhone string, updates map[string]string) (bool, error) {
	filtered := make(map[string]string, len(updates))
	for k, v := range updates {
		if !models.AllowedUpdateFields[k] {
			continue
		}
		v = strings.TrimSpace(v)
		if k == "phone_number" {
			v = identity.Normalize(v)
		}
		filtered[k] = v
	}
	if len(filtered) == 0 {
		return false, nil
	}
	if p, ok := filtered["phone_number"]; ok {
		filtered["identity_key"] = p
	}

	keys := make([]string, 0, len(filtered))
	for k := range filtered {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	for i, k := range keys {
		sets = append(sets, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, filtered[k])
	}
	setClause := strings.Join(sets, ", ")

	var affected int64
	if id > 0 {
		query := fmt.Sprintf("UPDATE business_listings SET %s WHERE id = $%d", setClause, len(args)+1)
		res, err := s.db.Exec(ctx, query, append(args, id)...)
		if err != nil {
			return false, cerrors.NewDatabaseUpdateFailedError(err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return false, cerrors.NewDatabaseUpdateFailedError(err)
		}
	}

	if affected == 0 && fallbackPhone != "" {
		key := identity.Normalize(fallbackPhone)
		if key != "" {
			query := fmt.Sprintf("UPDATE business_listings SET %s WHERE identity_key = $%d", setClause, len(args)+1)
			res, err := s.db.Exec(ctx, query, append(args, key)...)
			if err != nil {
				return false, cerrors.NewDatabaseUpdateFailedError(err)
			}
			affected, err = res.RowsAffected()
			if err != nil {
				return false, cerrors.NewDatabaseUpdateFailedError(err)
			}
		}
	}

	if affected == 0 {
		return false, nil
	}

	s.invalidate(ctx)

	s.logger.Info("listing updated", map[string]interface{}{
		"listingId":    id,
		"fieldsSet":    keys,
		"rowsAffected": affected,
	})
	return true, nil
}

// Search runs a single resolution tier.
func (s *Store) Search(ctx context.Context, tier SearchTier, params map[string]interface{}) ([]models.Listing, error) {
	results, execTime, err := ExecuteSearch(ctx, s.db.GetDB(), tier, params)
	if err != nil {
		if errors.Is(err, ErrMissingParam) || errors.Is(err, ErrUnknownSearchTier) {
			return nil, err
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, cerrors.NewQueryTimeoutError(string(tier))
		}
		return nil, cerrors.NewSearchQueryFailedError(string(tier), err)
	}

	s.logger.Debug("tier search complete", map[string]interface{}{
		"tier":          string(tier),
		"rowCount":      len(results),
		"executionTime": execTime,
	})
	return results, nil
}

// CorpusTerms collects the lowercase reference vocabulary for spell
// correction: distinct categories, cities, full business names, and name
// first-words longer than two characters.
func (s *Store) CorpusTerms(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	collect := func(query string, expand bool) error {
		rows, err := s.db.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var term string
			if err := rows.Scan(&term); err != nil {
				return err
			}
			term = strings.ToLower(term)
			if term == "" {
				continue
			}
			seen[term] = true
			if expand {
				first := strings.Fields(term)
				if len(first) > 0 && len(first[0]) > 2 {
					seen[first[0]] = true
				}
			}
		}
		return rows.Err()
	}

	if err := collect(`SELECT DISTINCT category FROM business_listings WHERE category IS NOT NULL AND category <> ''`, false); err != nil {
		return nil, cerrors.NewCorpusLoadFailedError(err)
	}
	if err := collect(`SELECT DISTINCT city FROM business_listings WHERE city IS NOT NULL AND city <> ''`, false); err != nil {
		return nil, cerrors.NewCorpusLoadFailedError(err)
	}
	if err := collect(`SELECT DISTINCT name FROM business_listings WHERE name IS NOT NULL AND name <> ''`, true); err != nil {
		return nil, cerrors.NewCorpusLoadFailedError(err)
	}

	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms, nil
}

// SuggestedCategories returns up to limit distinct categories for guidance
// prompts.
func (s *Store) SuggestedCategories(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 15
	}

	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT category FROM business_listings
		WHERE category IS NOT NULL AND category <> ''
		ORDER BY category
		LIMIT $1`, limit)
	if err != nil {
		return nil, cerrors.NewQueryExecutionFailedError("suggested_categories", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, cerrors.NewQueryExecutionFailedError("suggested_categories", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.NewQueryExecutionFailedError("suggested_categories", err)
	}
	return categories, nil
}

func (s *Store) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("corpus invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
