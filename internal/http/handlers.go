package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"awbrn/engine/internal/logging"
	"awbrn/engine/internal/replay"
)

// ReadinessProvider exposes viewer state required for readiness checks.
type ReadinessProvider interface {
	ViewerCount() int
	StartupError() error
	Uptime() time.Duration
}

// StatsFunc returns cumulative broadcast and client statistics.
type StatsFunc func() (broadcasts int64, clients int)

// PlaybackFunc reports the current playback position.
type PlaybackFunc func() (turn, turnCount int, day uint32)

// BundleExporter writes the loaded replay out as a bundle and returns its location.
type BundleExporter interface {
	ExportBundle(ctx context.Context) (string, error)
}

// BundleExporterFunc adapts a function into a BundleExporter.
type BundleExporterFunc func(ctx context.Context) (string, error)

// ExportBundle implements BundleExporter.
func (f BundleExporterFunc) ExportBundle(ctx context.Context) (string, error) { return f(ctx) }

// RateLimiter gates how frequently sensitive operations may be invoked.
type RateLimiter interface {
	Allow() bool
}

// Options configures the HandlerSet.
type Options struct {
	Logger      *logging.Logger
	Readiness   ReadinessProvider
	Stats       StatsFunc
	Playback    PlaybackFunc
	Exporter    BundleExporter
	AdminToken  string
	RateLimiter RateLimiter
	TimeSource  func() time.Time
	ExportStats func() replay.ExportStats
}

// HandlerSet bundles the viewer operational handlers.
type HandlerSet struct {
	logger      *logging.Logger
	readiness   ReadinessProvider
	stats       StatsFunc
	playback    PlaybackFunc
	exporter    BundleExporter
	adminToken  string
	rateLimiter RateLimiter
	now         func() time.Time
	exportStats func() replay.ExportStats
}

// NewHandlerSet constructs a HandlerSet using the provided options.
func NewHandlerSet(opts Options) *HandlerSet {
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	now := opts.TimeSource
	if now == nil {
		now = time.Now
	}
	return &HandlerSet{
		logger:      logger,
		readiness:   opts.Readiness,
		stats:       opts.Stats,
		playback:    opts.Playback,
		exporter:    opts.Exporter,
		adminToken:  strings.TrimSpace(opts.AdminToken),
		rateLimiter: opts.RateLimiter,
		now:         now,
		exportStats: opts.ExportStats,
	}
}

// Register attaches all handlers to the provided mux.
func (h *HandlerSet) Register(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc("/livez", h.LivenessHandler())
	mux.HandleFunc("/readyz", h.ReadinessHandler())
	mux.HandleFunc("/metrics", h.MetricsHandler())
	mux.HandleFunc("/replay/export", h.ExportHandler())
}

// LivenessHandler reports that the HTTP server is reachable.
func (h *HandlerSet) LivenessHandler() http.HandlerFunc {
	type response struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{
			Status:    "alive",
			Timestamp: h.now().UTC().Format(time.RFC3339Nano),
		})
	}
}

// ReadinessHandler reports viewer readiness, including client counts and startup status.
func (h *HandlerSet) ReadinessHandler() http.HandlerFunc {
	type response struct {
		Status        string  `json:"status"`
		Message       string  `json:"message,omitempty"`
		UptimeSeconds float64 `json:"uptime_seconds"`
		Clients       int     `json:"clients"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		resp := response{Status: "ok"}
		if h.readiness != nil {
			resp.Clients = h.readiness.ViewerCount()
			resp.UptimeSeconds = h.readiness.Uptime().Seconds()
			if err := h.readiness.StartupError(); err != nil {
				status = http.StatusServiceUnavailable
				resp.Status = "error"
				resp.Message = err.Error()
			}
		}
		writeJSON(w, status, resp)
	}
}

// MetricsHandler emits Prometheus compatible text metrics.
func (h *HandlerSet) MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		broadcasts, clients := h.metricsStats()

		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		if h.readiness != nil {
			fmt.Fprintf(w, "# HELP viewer_uptime_seconds Viewer uptime in seconds.\n")
			fmt.Fprintf(w, "# TYPE viewer_uptime_seconds gauge\n")
			fmt.Fprintf(w, "viewer_uptime_seconds %.0f\n", h.readiness.Uptime().Seconds())
		}

		fmt.Fprintf(w, "# HELP viewer_clients Current connected WebSocket clients.\n")
		fmt.Fprintf(w, "# TYPE viewer_clients gauge\n")
		fmt.Fprintf(w, "viewer_clients %d\n", clients)

		fmt.Fprintf(w, "# HELP viewer_broadcasts_total Total snapshot payloads delivered.\n")
		fmt.Fprintf(w, "# TYPE viewer_broadcasts_total counter\n")
		fmt.Fprintf(w, "viewer_broadcasts_total %d\n", broadcasts)

		if h.playback != nil {
			turn, total, day := h.playback()
			fmt.Fprintf(w, "# HELP viewer_playback_turn Current playback position.\n")
			fmt.Fprintf(w, "# TYPE viewer_playback_turn gauge\n")
			fmt.Fprintf(w, "viewer_playback_turn %d\n", turn)
			fmt.Fprintf(w, "# HELP viewer_playback_turn_count Total turns in the loaded replay.\n")
			fmt.Fprintf(w, "# TYPE viewer_playback_turn_count gauge\n")
			fmt.Fprintf(w, "viewer_playback_turn_count %d\n", total)
			fmt.Fprintf(w, "# HELP viewer_playback_day Current in-game day.\n")
			fmt.Fprintf(w, "# TYPE viewer_playback_day gauge\n")
			fmt.Fprintf(w, "viewer_playback_day %d\n", day)
		}
		if h.exportStats != nil {
			stats := h.exportStats()
			fmt.Fprintf(w, "# HELP viewer_bundle_exports_total Replay bundles exported successfully.\n")
			fmt.Fprintf(w, "# TYPE viewer_bundle_exports_total counter\n")
			fmt.Fprintf(w, "viewer_bundle_exports_total %d\n", stats.Exports)
		}
	}
}

// ExportHandler authorises and triggers a replay bundle export.
func (h *HandlerSet) ExportHandler() http.HandlerFunc {
	type response struct {
		Status   string `json:"status"`
		Location string `json:"location,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := h.logger.With(
			logging.String("handler", "replay_export"),
			logging.String("remote_addr", r.RemoteAddr),
		)
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.adminToken == "" {
			reqLogger.Warn("export denied: admin auth disabled")
			http.Error(w, "admin authentication not configured", http.StatusForbidden)
			return
		}
		if !h.authorise(r) {
			reqLogger.Warn("export denied: unauthorized request")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if h.rateLimiter != nil && !h.rateLimiter.Allow() {
			reqLogger.Warn("export denied: rate limit exceeded")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		if h.exporter == nil {
			reqLogger.Warn("export denied: no exporter configured")
			http.Error(w, "bundle export is unavailable", http.StatusServiceUnavailable)
			return
		}
		location, err := h.exporter.ExportBundle(r.Context())
		if err != nil {
			reqLogger.Error("bundle export failed", logging.Error(err))
			http.Error(w, "failed to export bundle", http.StatusInternalServerError)
			return
		}
		reqLogger.Info("bundle exported", logging.String("location", location))
		writeJSON(w, http.StatusAccepted, response{Status: "accepted", Location: location})
	}
}

func (h *HandlerSet) metricsStats() (broadcasts int64, clients int) {
	if h.stats != nil {
		return h.stats()
	}
	if h.readiness != nil {
		clients = h.readiness.ViewerCount()
	}
	return
}

func (h *HandlerSet) authorise(r *http.Request) bool {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	var token string
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		token = strings.TrimSpace(header[7:])
	} else if header != "" {
		token = header
	}
	if token == "" {
		token = strings.TrimSpace(r.Header.Get("X-Admin-Token"))
	}
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("token"))
	}
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) == 1
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}
