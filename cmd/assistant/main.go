// cmd/assistant/main.go
//
// Assistant service entrypoint: wires storage, cache, online search and the
// conversation pipeline together, then serves the login/chat API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	correctspelling "listing-assistant/internal/assistant/correct-spelling"
	"listing-assistant/internal/assistant/flow"
	parseintent "listing-assistant/internal/assistant/parse-intent"
	parsequery "listing-assistant/internal/assistant/parse-query"
	rankresults "listing-assistant/internal/assistant/rank-results"
	resolvesearch "listing-assistant/internal/assistant/resolve-search"
	"listing-assistant/internal/assistant/respond"
	"listing-assistant/internal/common/config"
	"listing-assistant/internal/common/database"
	cerrors "listing-assistant/internal/common/errors"
	"listing-assistant/internal/common/logger"
	"listing-assistant/internal/common/observability"
	"listing-assistant/internal/models"
	"listing-assistant/internal/online/essearch"
	"listing-assistant/internal/online/websearch"
	"listing-assistant/internal/session"
	"listing-assistant/internal/store/corpus"
	"listing-assistant/internal/store/listings"
)

// retryWithBackoff retries an operation with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = operation()
		if err == nil {
			if attempt > 1 {
				log.Info("Operation succeeded after retry",
					zap.String("operation", operationName),
					zap.Int("attempt", attempt))
			}
			return nil
		}

		log.Warn("Operation failed, retrying...",
			zap.String("operation", operationName),
			zap.Int("attempt", attempt),
			zap.Int("maxRetries", maxRetries),
			zap.Duration("nextDelay", delay),
			zap.Error(err))

		if attempt < maxRetries {
			time.Sleep(delay)
			delay *= 2
			if delay > 30*time.Second {
				delay = 30 * time.Second
			}
		}
	}

	return err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zapBoot := logger.New("info", "console")
		zapBoot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assistant service...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment))

	obs := observability.New("assistant")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		// The corpus cache degrades to direct reads, so Redis is not fatal.
		zapLog.Warn("redis unavailable, corpus cache disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Init Elasticsearch with retry (optional index search) ---
	var es *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.GetURL() != "" {
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping()
		}, 10, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, index search disabled", zap.Error(err))
			es = nil
		} else {
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Storage and corpus cache ---
	store := listings.New(pg, log)
	var cache *corpus.Cache
	if rdb != nil {
		cache = corpus.NewCache(rdb, store, 10*time.Minute, log)
		store.SetInvalidator(cache)
	}

	// --- Conversation pipeline components ---
	intents, err := parseintent.NewHandler(&parseintent.Config{
		RegistryPath: cfg.Rules.RegistryPath,
	}, &parseIntentLoggerAdapter{log: log})
	if err != nil {
		zapLog.Fatal("intent rule registry invalid", zap.Error(err))
	}

	parser := parsequery.NewHandler(parsequery.LoadConfig(), &parseQueryLoggerAdapter{log: log})

	spellCfg := correctspelling.LoadConfig()
	if cfg.Assistant.SpellCutoff > 0 {
		spellCfg.Cutoff = cfg.Assistant.SpellCutoff
	}
	var corpusSource correctspelling.CorpusProvider = storeCorpusSource{store: store}
	if cache != nil {
		corpusSource = cache
	}
	corrector := correctspelling.NewHandler(spellCfg, corpusSource, &correctSpellingLoggerAdapter{log: log})

	resolver := resolvesearch.NewHandler(resolvesearch.LoadConfig(), parser, corrector, store,
		&resolveSearchLoggerAdapter{log: log})

	web := websearch.NewProvider(&websearch.Config{
		BaseURL:    cfg.APIs.WebSearch.BaseURL,
		APIKey:     cfg.APIs.WebSearch.APIKey,
		EngineID:   cfg.APIs.WebSearch.EngineID,
		MaxResults: cfg.Assistant.MaxResults,
		Timeout:    config.GetDuration(cfg.APIs.WebSearch.Timeout),
	}, &webSearchLoggerAdapter{log: log})

	online := &onlineSearcher{web: web, logger: log}
	if es != nil {
		online.index = essearch.NewProvider(&essearch.Config{
			Index:      cfg.Database.Elasticsearch.Index,
			MaxResults: cfg.Assistant.MaxResults,
		}, es.Client, log)
	}

	ranker := rankresults.NewHandler(&rankresults.Config{}, log)
	renderer := respond.NewHandler(&respond.Config{RegistryPath: cfg.Template.RegistryPath}, log)

	engine := flow.NewEngine(
		&flow.Config{
			MaxResults:    cfg.Assistant.MaxResults,
			CategoryLimit: cfg.Assistant.SuggestedLimit,
		},
		intents, store, resolver, corrector, online, ranker, renderer,
		cerrors.NewErrorHandler(log), log,
	)

	sessions := session.NewManager(session.Config{
		TTL:         time.Duration(cfg.Session.TTL) * time.Second,
		MaxSessions: cfg.Session.MaxSessions,
	}, log)

	// Expired-session sweep.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessions.InvalidateExpired()
			case <-sweepDone:
				return
			}
		}
	}()

	api := &apiServer{
		engine:   engine,
		sessions: sessions,
		store:    store,
		obs:      obs,
		logger:   log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/login", api.handleLogin)
	mux.HandleFunc("/v1/chat", api.handleChat)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pg.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/debug/pprof/", pprof.Index)
	metricsMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	metricsMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	metricsMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	metricsSrv := &http.Server{Addr: cfg.Server.MetricsAddress, Handler: metricsMux}

	go func() {
		zapLog.Info("Metrics server listening", zap.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		zapLog.Info("API server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("api server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	close(sweepDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("api server shutdown failed", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("metrics server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}

// ==========================
// HTTP API
// ==========================

type apiServer struct {
	engine   *flow.Engine
	sessions *session.Manager
	store    *listings.Store
	obs      *observability.Observability
	logger   logger.Logger
}

type loginRequest struct {
	Phone string `json:"phone"`
}

type loginResponse struct {
	SessionID string `json:"sessionId"`
	Greeting  string `json:"greeting,omitempty"`
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (a *apiServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	phone := strings.TrimSpace(req.Phone)

	// Login requires at least one registered listing for the number.
	matches, err := a.store.LookupByIdentity(r.Context(), phone)
	if err != nil {
		a.logger.Error("Login lookup failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if len(matches) == 0 {
		writeError(w, http.StatusNotFound, "No businesses found for this phone number")
		return
	}

	sess, err := a.sessions.Login(phone)
	if err != nil {
		if errors.Is(err, session.ErrInvalidPhone) {
			writeError(w, http.StatusBadRequest, "Please enter a valid phone number")
			return
		}
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	sess.State.CurrentBusiness = &matches[0]

	writeJSON(w, http.StatusOK, loginResponse{SessionID: sess.ID})
}

func (a *apiServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := a.sessions.Find(req.SessionID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "session not found or expired")
		return
	}

	start := time.Now()
	reply, err := a.engine.ProcessTurn(r.Context(), sess, req.Message)
	if err != nil {
		a.obs.RecordTurnProcessed(r.Context(), "error")
		a.logger.Error("Turn processing failed", map[string]interface{}{
			"sessionId": req.SessionID,
			"error":     err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "turn processing failed")
		return
	}
	a.obs.RecordTurnProcessed(r.Context(), "ok")
	a.obs.RecordTurnDuration(r.Context(), time.Since(start), "ok")

	if err := a.sessions.Update(sess); err != nil {
		a.logger.Warn("Session refresh failed", map[string]interface{}{"sessionId": sess.ID})
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// storeCorpusSource reads corpus terms straight from Postgres when no
// Redis cache is available.
type storeCorpusSource struct{ store *listings.Store }

func (s storeCorpusSource) Terms(ctx context.Context) ([]string, error) {
	return s.store.CorpusTerms(ctx)
}

// ==========================
// Online search composition
// ==========================

// onlineSearcher tries the search index first when one is configured and
// falls back to the web API. The flow engine passes queries shaped as
// "keyword in location", a bare keyword, or raw text.
type onlineSearcher struct {
	index  *essearch.Provider
	web    *websearch.Provider
	logger logger.Logger
}

func (o *onlineSearcher) Search(ctx context.Context, query string) ([]models.OnlineResult, error) {
	if o.index != nil {
		keyword, location := splitOnlineQuery(query)
		results, err := o.index.Search(ctx, keyword, location)
		if err != nil {
			o.logger.Warn("Index search failed, falling back to web", map[string]interface{}{
				"query": query,
				"error": err.Error(),
			})
		} else if len(results) > 0 {
			return results, nil
		}
	}
	return o.web.Search(ctx, query)
}

// splitOnlineQuery undoes the "keyword in location" assembly; queries
// without the separator are all keyword.
func splitOnlineQuery(query string) (string, string) {
	if i := strings.LastIndex(query, " in "); i >= 0 {
		return strings.TrimSpace(query[:i]), strings.TrimSpace(query[i+4:])
	}
	return strings.TrimSpace(query), ""
}

// ==========================
// Per-component logger adapters
// ==========================

type parseIntentLoggerAdapter struct{ log logger.Logger }

func (a *parseIntentLoggerAdapter) Info(msg string, fields map[string]interface{})  { a.log.Info(msg, fields) }
func (a *parseIntentLoggerAdapter) Warn(msg string, fields map[string]interface{})  { a.log.Warn(msg, fields) }
func (a *parseIntentLoggerAdapter) Error(msg string, fields map[string]interface{}) { a.log.Error(msg, fields) }
func (a *parseIntentLoggerAdapter) With(fields map[string]interface{}) parseintent.Logger {
	return &parseIntentLoggerAdapter{log: a.log.With(fields)}
}

type parseQueryLoggerAdapter struct{ log logger.Logger }

func (a *parseQueryLoggerAdapter) Debug(msg string, fields map[string]interface{}) { a.log.Debug(msg, fields) }
func (a *parseQueryLoggerAdapter) Info(msg string, fields map[string]interface{})  { a.log.Info(msg, fields) }
func (a *parseQueryLoggerAdapter) With(fields map[string]interface{}) parsequery.Logger {
	return &parseQueryLoggerAdapter{log: a.log.With(fields)}
}

type correctSpellingLoggerAdapter struct{ log logger.Logger }

func (a *correctSpellingLoggerAdapter) Debug(msg string, fields map[string]interface{}) { a.log.Debug(msg, fields) }
func (a *correctSpellingLoggerAdapter) Info(msg string, fields map[string]interface{})  { a.log.Info(msg, fields) }
func (a *correctSpellingLoggerAdapter) Warn(msg string, fields map[string]interface{})  { a.log.Warn(msg, fields) }
func (a *correctSpellingLoggerAdapter) With(fields map[string]interface{}) correctspelling.Logger {
	return &correctSpellingLoggerAdapter{log: a.log.With(fields)}
}

type resolveSearchLoggerAdapter struct{ log logger.Logger }

func (a *resolveSearchLoggerAdapter) Debug(msg string, fields map[string]interface{}) { a.log.Debug(msg, fields) }
func (a *resolveSearchLoggerAdapter) Info(msg string, fields map[string]interface{})  { a.log.Info(msg, fields) }
func (a *resolveSearchLoggerAdapter) Warn(msg string, fields map[string]interface{})  { a.log.Warn(msg, fields) }
func (a *resolveSearchLoggerAdapter) With(fields map[string]interface{}) resolvesearch.Logger {
	return &resolveSearchLoggerAdapter{log: a.log.With(fields)}
}

type webSearchLoggerAdapter struct{ log logger.Logger }

func (a *webSearchLoggerAdapter) Info(msg string, fields map[string]interface{})  { a.log.Info(msg, fields) }
func (a *webSearchLoggerAdapter) Warn(msg string, fields map[string]interface{})  { a.log.Warn(msg, fields) }
func (a *webSearchLoggerAdapter) Error(msg string, fields map[string]interface{}) { a.log.Error(msg, fields) }
func (a *webSearchLoggerAdapter) With(fields map[string]interface{}) websearch.Logger {
	return &webSearchLoggerAdapter{log: a.log.With(fields)}
}
