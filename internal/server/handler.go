package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"PriceSniper/internal/calculator"
	"PriceSniper/internal/collector"
	"PriceSniper/internal/logger"
	"PriceSniper/internal/model"
	"PriceSniper/internal/recorder"
	"PriceSniper/internal/watch"
)

const (
	defaultReadingLimit = 20
	maxReadingLimit     = 500
)

// Handler serves the dashboard as JSON.
type Handler struct {
	collector *collector.Collector
	watch     *watch.Manager
	recorder  recorder.Recorder
	now       func() time.Time
}

func NewHandler(col *collector.Collector, wm *watch.Manager, rec recorder.Recorder) *Handler {
	return &Handler{collector: col, watch: wm, recorder: rec, now: time.Now}
}

// Routes registers every endpoint and wraps them with request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /api/dashboard", h.Dashboard)
	mux.HandleFunc("GET /api/products/{id}/card", h.Card)
	mux.HandleFunc("GET /api/products/{id}/readings", h.Readings)
	return logRequests(mux)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"tracker": h.collector.Fetcher.Name(),
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.collector.Dashboard(r.Context(), h.watch, h.now())
	if err != nil {
		logger.L.Errorw("failed to build dashboard", "error", err)
		writeError(w, http.StatusBadGateway, "tracker unavailable")
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// Card renders one product. An explicit ?window= overrides the saved
// selection for this request only.
func (h *Handler) Card(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	window := h.watch.Window(id)
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, ok := calculator.ParseWindow(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown window, expected one of 7D, 30D, 3M, 1Y, ALL")
			return
		}
		window = parsed
	}

	card, err := h.collector.CardByID(r.Context(), id, window, h.now())
	if err != nil {
		if collector.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		logger.L.Errorw("failed to build card", "error", err, "product_id", id)
		writeError(w, http.StatusBadGateway, "tracker unavailable")
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// Readings returns cached gauge readings, newest first.
func (h *Handler) Readings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	limit := defaultReadingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxReadingLimit)
	}

	readings, err := h.recorder.RecentReadings(id, limit)
	if err != nil {
		logger.L.Errorw("failed to load readings", "error", err, "product_id", id)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if readings == nil {
		readings = []model.Reading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Warnw("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.L.Infow("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
