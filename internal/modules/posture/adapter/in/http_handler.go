package in

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	posturein "posturetrack/internal/modules/posture/port/in"
	apperrors "posturetrack/internal/platform/errors"
	"posturetrack/internal/platform/telemetry"
)

const defaultRecentLimit = 5

// HTTPHandler serves the read-only history API.
type HTTPHandler struct {
	uc posturein.Usecase
}

func NewHTTPHandler(uc posturein.Usecase) *HTTPHandler {
	return &HTTPHandler{uc: uc}
}

// Register mounts the history routes on mux, instrumented with otelhttp.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.Handle("/records/recent", otelhttp.NewHandler(corsMiddleware(http.HandlerFunc(h.recent)), "GET /records/recent"))
	mux.Handle("/records/latest", otelhttp.NewHandler(corsMiddleware(http.HandlerFunc(h.latest)), "GET /records/latest"))
	mux.Handle("/healthz", otelhttp.NewHandler(http.HandlerFunc(h.health), "GET /healthz"))
}

func (h *HTTPHandler) recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.uc.Recent(r.Context(), limit)
	if err != nil {
		telemetry.GetLogger().ErrorContext(r.Context(), "list recent records", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *HTTPHandler) latest(w http.ResponseWriter, r *http.Request) {
	record, err := h.uc.Latest(r.Context())
	switch {
	case errors.Is(err, apperrors.ErrNoRecords):
		writeError(w, http.StatusNotFound, "no records yet")
	case err != nil:
		telemetry.GetLogger().ErrorContext(r.Context(), "load latest record", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load record")
	default:
		writeJSON(w, http.StatusOK, record)
	}
}

func (h *HTTPHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "posturetrack",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// corsMiddleware keeps browser dashboards on other origins working.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
