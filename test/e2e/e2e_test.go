// test/e2e/e2e_test.go
//
// End-to-end conversation scenarios: the full pipeline (intent rules,
// query parsing, spell correction, tiered search, flow engine, templates)
// wired against a mocked Postgres, a miniredis corpus cache, and a fake
// web search upstream.
package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	correctspelling "listing-assistant/internal/assistant/correct-spelling"
	"listing-assistant/internal/assistant/flow"
	parseintent "listing-assistant/internal/assistant/parse-intent"
	parsequery "listing-assistant/internal/assistant/parse-query"
	rankresults "listing-assistant/internal/assistant/rank-results"
	resolvesearch "listing-assistant/internal/assistant/resolve-search"
	"listing-assistant/internal/assistant/respond"
	"listing-assistant/internal/common/database"
	cerrors "listing-assistant/internal/common/errors"
	"listing-assistant/internal/common/logger"
	"listing-assistant/internal/models"
	"listing-assistant/internal/online/websearch"
	"listing-assistant/internal/session"
	"listing-assistant/internal/store/corpus"
	"listing-assistant/internal/store/listings"
)

var listingColumns = []string{
	"id", "name", "address", "website", "phone_number", "category",
	"subcategory", "city", "state", "area", "reviews_count",
	"reviews_average", "created_at",
}

// ==========================
// Logger adapters
// ==========================

type piLogger struct{ log logger.Logger }

func (a *piLogger) Info(msg string, fields map[string]interface{})  { a.log.Info(msg, fields) }
func (a *piLogger) Warn(msg string, fields map[string]interface{})  { a.log.Warn(msg, fields) }
func (a *piLogger) Error(msg string, fields map[string]interface{}) { a.log.Error(msg, fields) }
func (a *piLogger) With(fields map[string]interface{}) parseintent.Logger {
	return &piLogger{log: a.log.With(fields)}
}

type pqLogger struct{ log logger.Logger }

func (a *pqLogger) Debug(msg string, fields map[string]interface{}) { a.log.Debug(msg, fields) }
func (a *pqLogger) Info(msg string, fields map[string]interface{})  { a.log.Info(msg, fields) }
func (a *pqLogger) With(fields map[string]interface{}) parsequery.Logger {
	return &pqLogger{log: a.log.With(fields)}
}

type csLogger struct{ log logger.Logger }

func (a *csLogger) Debug(msg string, fields map[string]interface{}) { a.log.Debug(msg, fields) }
func (a *csLogger) Info(msg string, fields map[string]interface{})  { a.log.Info(msg, fields) }
func (a *csLogger) Warn(msg string, fields map[string]interface{})  { a.log.Warn(msg, fields) }
func (a *csLogger) With(fields map[string]interface{}) correctspelling.Logger {
	return &csLogger{log: a.log.With(fields)}
}

type rsLogger struct{ log logger.Logger }

func (a *rsLogger) Debug(msg string, fields map[string]interface{}) { a.log.Debug(msg, fields) }
func (a *rsLogger) Info(msg string, fields map[string]interface{})  { a.log.Info(msg, fields) }
func (a *rsLogger) Warn(msg string, fields map[string]interface{})  { a.log.Warn(msg, fields) }
func (a *rsLogger) With(fields map[string]interface{}) resolvesearch.Logger {
	return &rsLogger{log: a.log.With(fields)}
}

type wsLogger struct{ log logger.Logger }

func (a *wsLogger) Info(msg string, fields map[string]interface{})  { a.log.Info(msg, fields) }
func (a *wsLogger) Warn(msg string, fields map[string]interface{})  { a.log.Warn(msg, fields) }
func (a *wsLogger) Error(msg string, fields map[string]interface{}) { a.log.Error(msg, fields) }
func (a *wsLogger) With(fields map[string]interface{}) websearch.Logger {
	return &wsLogger{log: a.log.With(fields)}
}

// ==========================
// Stack
// ==========================

type stack struct {
	engine   *flow.Engine
	sessions *session.Manager
	mock     sqlmock.Sqlmock
	redis    *miniredis.Miniredis
	web      *httptest.Server
}

// newStack builds the whole pipeline. webHandler serves the fake online
// search API; nil means every online call fails upstream.
func newStack(t *testing.T, webHandler http.HandlerFunc) *stack {
	t.Helper()
	log := logger.NewTestLogger(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	pg := &database.PostgresClient{DB: db}

	mr := miniredis.RunT(t)
	rdb := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	store := listings.New(pg, log)
	cache := corpus.NewCache(rdb, store, 10*time.Minute, log)
	store.SetInvalidator(cache)

	intents, err := parseintent.NewHandler(&parseintent.Config{}, &piLogger{log: log})
	require.NoError(t, err)
	parser := parsequery.NewHandler(parsequery.LoadConfig(), &pqLogger{log: log})
	corrector := correctspelling.NewHandler(correctspelling.LoadConfig(), cache, &csLogger{log: log})
	resolver := resolvesearch.NewHandler(resolvesearch.LoadConfig(), parser, corrector, store, &rsLogger{log: log})

	if webHandler == nil {
		webHandler = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}
	}
	web := httptest.NewServer(webHandler)
	t.Cleanup(web.Close)
	online := websearch.NewProvider(&websearch.Config{
		BaseURL: web.URL,
		APIKey:  "test-key",
	}, &wsLogger{log: log})

	engine := flow.NewEngine(
		&flow.Config{},
		intents,
		store,
		resolver,
		corrector,
		online,
		rankresults.NewHandler(&rankresults.Config{}, log),
		respond.NewHandler(&respond.Config{}, log),
		cerrors.NewErrorHandler(log),
		log,
	)

	return &stack{
		engine:   engine,
		sessions: session.NewManager(session.Config{}, log),
		mock:     mock,
		redis:    mr,
		web:      web,
	}
}

func (s *stack) login(t *testing.T, phone string) *models.Session {
	t.Helper()
	sess, err := s.sessions.Login(phone)
	require.NoError(t, err)
	return sess
}

func (s *stack) turn(t *testing.T, sess *models.Session, text string) string {
	t.Helper()
	reply, err := s.engine.ProcessTurn(context.Background(), sess, text)
	require.NoError(t, err)
	return reply
}

func cafeRow() *sqlmock.Rows {
	return sqlmock.NewRows(listingColumns).AddRow(
		int64(7), "Green Leaf Cafe", "5 Lake Rd", "", "9822200022",
		"Cafe", "", "Pune", "MH", "", 12, 4.4, "2024-03-01 10:00:00",
	)
}

// ==========================
// Scenarios
// ==========================

func TestConversation_GreetingThenShow(t *testing.T) {
	s := newStack(t, nil)
	sess := s.login(t, "98222 00022")

	reply := s.turn(t, sess, "hi")
	assert.Contains(t, reply, "Search for a business")
	assert.Contains(t, reply, "Add a new business")

	reply = s.turn(t, sess, "show my business")
	assert.Contains(t, reply, "phone number")

	s.mock.ExpectQuery(`WHERE identity_key = \$1`).
		WithArgs("9822200022").
		WillReturnRows(cafeRow())

	reply = s.turn(t, sess, "98222 00022")
	assert.Contains(t, reply, "Business Found!")
	assert.Contains(t, reply, "Green Leaf Cafe")
	assert.Contains(t, reply, "Adding a website can increase visibility")
	assert.Equal(t, models.ModeNone, sess.State.Mode)

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestConversation_UpdateJourney(t *testing.T) {
	s := newStack(t, nil)
	sess := s.login(t, "9822200022")

	s.turn(t, sess, "update my business")

	s.mock.ExpectQuery(`WHERE identity_key = \$1`).
		WithArgs("9822200022").
		WillReturnRows(cafeRow())

	reply := s.turn(t, sess, "9822200022")
	require.Contains(t, reply, "Which field would you like to update?")
	require.Contains(t, reply, "1️⃣ **Name** - Current: Green Leaf Cafe")

	reply = s.turn(t, sess, "name")
	require.Contains(t, reply, "Updating **Name**")

	s.mock.ExpectExec(`UPDATE business_listings SET name = \$1 WHERE id = \$2`).
		WithArgs("Blue Tokai Cafe", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Refresh read after the write.
	s.mock.ExpectQuery(`WHERE identity_key = \$1`).
		WithArgs("9822200022").
		WillReturnRows(sqlmock.NewRows(listingColumns).AddRow(
			int64(7), "Blue Tokai Cafe", "5 Lake Rd", "", "9822200022",
			"Cafe", "", "Pune", "MH", "", 12, 4.4, "2024-03-01 10:00:00",
		))

	reply = s.turn(t, sess, "Blue Tokai Cafe")
	assert.Contains(t, reply, "Successfully Updated!")
	assert.Contains(t, reply, "**Name** has been updated to: **Blue Tokai Cafe**")
	assert.Equal(t, 2, sess.State.Step)

	// The write bumped the corpus version.
	version, err := s.redis.Get("corpus:version")
	require.NoError(t, err)
	assert.Equal(t, "1", version)

	reply = s.turn(t, sess, "done")
	assert.Contains(t, reply, "Update complete!")
	assert.Contains(t, reply, "Blue Tokai Cafe")
	assert.Equal(t, models.ModeNone, sess.State.Mode)

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestConversation_AddJourney(t *testing.T) {
	s := newStack(t, nil)
	sess := s.login(t, "9822200022")

	reply := s.turn(t, sess, "add a new business")
	require.Contains(t, reply, "What is the name of your business?")

	answers := []string{"Wave Sushi", "98765 43210", "12 Beach Rd, Goa", "skip", "Restaurant", "Panaji"}
	for _, a := range answers {
		reply = s.turn(t, sess, a)
		require.NotContains(t, reply, "⚠️")
	}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT id FROM business_listings`).
		WillReturnError(sql.ErrNoRows)
	s.mock.ExpectQuery(`INSERT INTO business_listings`).
		WithArgs("Wave Sushi", "12 Beach Rd, Goa", "", "9876543210", "9876543210",
			"Restaurant", "", "Panaji", "GA", "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	s.mock.ExpectCommit()
	// Read-back of the stored row.
	s.mock.ExpectQuery(`WHERE identity_key = \$1`).
		WithArgs("9876543210").
		WillReturnRows(sqlmock.NewRows(listingColumns).AddRow(
			int64(42), "Wave Sushi", "12 Beach Rd, Goa", "", "9876543210",
			"Restaurant", "", "Panaji", "GA", "", 0, nil, "2024-03-01 10:00:00",
		))

	reply = s.turn(t, sess, "GA")
	assert.Contains(t, reply, "Business Added Successfully!")
	assert.Contains(t, reply, "ID: **42**")
	assert.Contains(t, reply, "**Phone:** 9876543210")
	assert.Equal(t, models.ModeNone, sess.State.Mode)
	require.NotNil(t, sess.State.CurrentBusiness)
	assert.Equal(t, int64(42), sess.State.CurrentBusiness.ID)

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestConversation_SearchEscalatesOnline(t *testing.T) {
	s := newStack(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"title": "Wave Sushi", "address": "12 Beach Rd", "rating": 4.8, "reviews": 90},
			},
		})
	})
	sess := s.login(t, "9822200022")

	// Spell-correction corpus: three vocabulary reads, cached afterwards.
	s.mock.ExpectQuery(`SELECT DISTINCT category FROM business_listings`).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("Cafe"))
	s.mock.ExpectQuery(`SELECT DISTINCT city FROM business_listings`).
		WillReturnRows(sqlmock.NewRows([]string{"city"}).AddRow("Goa"))
	s.mock.ExpectQuery(`SELECT DISTINCT name FROM business_listings`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Green Leaf Cafe"))

	// All four local tiers come back empty.
	empty := func() *sqlmock.Rows { return sqlmock.NewRows(listingColumns) }
	s.mock.ExpectQuery(`AND \(city ILIKE \$2 OR address ILIKE \$2\)`).
		WithArgs("%sushi%", "%goa%", 5).
		WillReturnRows(empty())
	s.mock.ExpectQuery(`WHERE name ILIKE \$1 OR category ILIKE \$1 OR subcategory ILIKE \$1`).
		WillReturnRows(empty())
	s.mock.ExpectQuery(`WHERE city ILIKE \$1 OR address ILIKE \$1`).
		WillReturnRows(empty())
	s.mock.ExpectQuery(`name ILIKE \$1 OR category ILIKE \$1 OR city ILIKE \$1`).
		WillReturnRows(empty())

	reply := s.turn(t, sess, "find sushi in goa")

	assert.Contains(t, reply, `No local results found for "sushi in goa"`)
	assert.Contains(t, reply, `_(Searched: "sushi" in goa)_`)
	assert.Contains(t, reply, "results from online search")
	assert.Contains(t, reply, "Wave Sushi")
	assert.Contains(t, reply, "🌐 Online")
	assert.Equal(t, models.ModeNone, sess.State.Mode)

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestConversation_CancelMidFlow(t *testing.T) {
	s := newStack(t, nil)
	sess := s.login(t, "9822200022")

	s.turn(t, sess, "add a new business")
	s.turn(t, sess, "Wave Sushi")
	require.Equal(t, 2, sess.State.Step)

	reply := s.turn(t, sess, "cancel")
	assert.Contains(t, reply, "cancelled the current operation")
	assert.Equal(t, models.ModeNone, sess.State.Mode)
	assert.Empty(t, sess.State.Data)
}
