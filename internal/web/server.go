package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rev-net/revdash/internal/chain"
	"github.com/rev-net/revdash/internal/logger"
	"github.com/rev-net/revdash/internal/scheduler"
	"github.com/rev-net/revdash/internal/state"
)

// Source serves the latest refreshed networks.
type Source interface {
	Networks() []scheduler.NetworkView
	Network(chainID int64, projectID uint64) (scheduler.NetworkView, bool)
	History(ctx context.Context, chainID int64, projectID uint64, limit int) ([]state.NetworkSnapshot, error)
	ActivitySummary(ctx context.Context, chainID int64, projectID uint64) (*state.ActivitySummary, error)
}

var _ Source = (*scheduler.Refresher)(nil)

// WebServer serves the dashboard's JSON API.
type WebServer struct {
	router    *mux.Router
	port      string
	source    Source
	resolver  chain.NameResolver
	submitter chain.TransactionSubmitter
	now       func() time.Time
	started   time.Time
	log       zerolog.Logger
	server    *http.Server
}

// NewWebServer creates a new web server instance. resolver may be nil, in which case
// addresses are shown shortened; a nil submitter refuses every transaction.
func NewWebServer(port string, source Source, resolver chain.NameResolver, submitter chain.TransactionSubmitter) *WebServer {
	if port == "" {
		port = "8080"
	}
	if submitter == nil {
		submitter = chain.NoopSubmitter{}
	}

	server := &WebServer{
		router:    mux.NewRouter(),
		port:      port,
		source:    source,
		resolver:  resolver,
		submitter: submitter,
		now:       time.Now,
		started:   time.Now(),
		log:       logger.GetForComponent("web_server"),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/networks", ws.handleListNetworks).Methods("GET")

	network := api.PathPrefix("/networks/{chain:[0-9]+}/{project:[0-9]+}").Subrouter()
	network.HandleFunc("", ws.handleGetNetwork).Methods("GET")
	network.HandleFunc("/quote/pay", ws.handlePayQuote).Methods("GET")
	network.HandleFunc("/quote/cashout", ws.handleCashOutQuote).Methods("GET")
	network.HandleFunc("/activity", ws.handleGetActivity).Methods("GET")
	network.HandleFunc("/participants", ws.handleGetParticipants).Methods("GET")
	network.HandleFunc("/history", ws.handleGetHistory).Methods("GET")

	api.HandleFunc("/create/step", ws.handleCreateStep).Methods("POST", "OPTIONS")
	api.HandleFunc("/create/preview", ws.handleCreatePreview).Methods("POST", "OPTIONS")
	api.HandleFunc("/tx", ws.handleSubmitTx).Methods("POST", "OPTIONS")

	ws.router.Use(ws.requestIDMiddleware)
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Handler exposes the router, for tests and embedding.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// Start starts the web server and blocks until it stops.
func (ws *WebServer) Start() error {
	ws.log.Info().Str("port", ws.port).Msg("Starting web server")

	ws.server = &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	if ws.server == nil {
		return nil
	}
	return ws.server.Shutdown(ctx)
}

// handleHealth reports refresh and database status. Any network whose last refresh failed,
// or no refreshed network at all, degrades the service.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	views := ws.source.Networks()
	failing := []string{}
	var lastRefresh time.Time
	for _, v := range views {
		if v.LastError != "" {
			failing = append(failing, v.Network.Key())
		}
		if v.RefreshedAt.After(lastRefresh) {
			lastRefresh = v.RefreshedAt
		}
	}
	hasErrors := len(views) == 0 || len(failing) > 0

	database := "disabled"
	if state.DB != nil {
		database = "ok"
		if err := state.TestDBConnection(); err != nil {
			database = "unreachable"
			hasErrors = true
		}
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if hasErrors {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": ws.now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
			"uptime_seconds":   int64(time.Since(ws.started).Seconds()),
		},
		"refresh": map[string]interface{}{
			"networks":         len(views),
			"failing_networks": failing,
			"last_refresh":     nullableTime(lastRefresh),
			"database":         database,
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		ws.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":      true,
		"message":    message,
		"request_id": w.Header().Get(requestIDHeader),
		"timestamp":  ws.now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// writeError maps err onto a status code and logs server-side failures.
func (ws *WebServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		ws.log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		ws.writeErrorResponse(w, status, "internal error")
		return
	}
	ws.writeErrorResponse(w, status, err.Error())
}

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware tags every request with an id, reusing the caller's when present.
func (ws *WebServer) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		ws.log.Info().
			Str("request_id", w.Header().Get(requestIDHeader)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
