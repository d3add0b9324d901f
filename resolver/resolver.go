package resolver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vitalvas/deeplink/deeplink"
	"github.com/vitalvas/deeplink/linkconfig"
	"github.com/vitalvas/deeplink/linkhandlers"
)

// Config configures the resolver handler.
type Config struct {
	// Logger receives one record per request. Defaults to a logger that
	// discards everything.
	Logger *slog.Logger

	// Gatherer enables GET /metrics when set.
	Gatherer prometheus.Gatherer

	// Hostname is written to the X-Server-Hostname response header when
	// set.
	Hostname string
}

type server struct {
	table  *linkconfig.Table
	logger *slog.Logger
}

// errorResponse is the JSON body of failed /resolve requests.
type errorResponse struct {
	Error string `json:"error"`
}

// New returns an http.Handler that resolves deep links against table.
//
//   - GET /healthz responds with "ok".
//   - GET /resolve?url=<link> responds with the JSON resolution of link.
//   - GET /metrics serves cfg.Gatherer when set.
//
// Any other request resolves its own URL and redirects to the target with
// 302 Found, or responds 404 Not Found.
func New(table *linkconfig.Table, cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &server{table: table, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if cfg.Hostname != "" {
		r.Use(middleware.SetHeader("X-Server-Hostname", cfg.Hostname))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/resolve", s.resolve)
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	r.NotFound(s.redirect)

	return r
}

func (s *server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *server) resolve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing url parameter"})
		return
	}

	res, err := s.table.ResolveString(linkhandlers.WithDispatchID(r.Context(), middleware.GetReqID(r.Context())), raw)
	if err != nil {
		writeJSON(w, statusOf(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// redirect resolves the request URL itself.
func (s *server) redirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	u := requestURL(r)

	res, err := s.table.Resolve(linkhandlers.WithDispatchID(r.Context(), middleware.GetReqID(r.Context())), u)
	if err != nil || res.Target == "" {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, res.Target, http.StatusFound)
}

// logRequests logs every request with its chi request ID.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.LogAttrs(r.Context(), slog.LevelInfo, "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// requestURL reconstructs the absolute URL of r.
func requestURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Host = r.Host
	if r.TLS != nil {
		u.Scheme = "https"
	} else {
		u.Scheme = "http"
	}
	return &u
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, deeplink.ErrMalformedURL):
		return http.StatusBadRequest
	case errors.Is(err, linkconfig.ErrHostNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, deeplink.ErrNoMatch):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
