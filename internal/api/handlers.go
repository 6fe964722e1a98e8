// Package api exposes HTTP handlers for GreenPoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"example.com/greenpoints/internal/docstore"
	"example.com/greenpoints/internal/domain"
)

const maxErrorDetail = 60

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service      *domain.Service
	inspector    docstore.Inspector
	databaseURL  bool
	databaseName bool
	logger       logrus.FieldLogger
}

// Option configures optional behaviour for the Handler.
type Option func(*Handler)

// WithInspector lets GET /test probe the backing store.
func WithInspector(inspector docstore.Inspector) Option {
	return func(h *Handler) {
		h.inspector = inspector
	}
}

// WithDatabaseEnv records whether DATABASE_URL and DATABASE_NAME were configured.
func WithDatabaseEnv(urlSet, nameSet bool) Option {
	return func(h *Handler) {
		h.databaseURL = urlSet
		h.databaseName = nameSet
	}
}

// WithLogger overrides the logger used for server errors.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.root)
	mux.HandleFunc("/test", h.status)
	mux.HandleFunc("/healthz", healthz)
	mux.HandleFunc("/api/leaderboard", h.leaderboard)
	mux.HandleFunc("/api/activities", h.activities)
	mux.HandleFunc("/api/activity-types", activityTypes)
	mux.HandleFunc("/api/badges", h.badges)
	mux.HandleFunc("/api/summary", h.summary)
	mux.HandleFunc("/api/seed", h.seed)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "GreenPoints API running"})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	resp := StatusView{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		DatabaseURL:      setLabel(h.databaseURL),
		DatabaseName:     setLabel(h.databaseName),
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	if h.inspector != nil {
		if err := h.inspector.Ping(r.Context()); err != nil {
			resp.Database = "⚠️ " + truncate(err.Error(), maxErrorDetail)
		} else {
			resp.Database = "✅ Connected & Working"
			resp.ConnectionStatus = "Connected"
			if names, err := h.inspector.Collections(r.Context()); err != nil {
				resp.Database = "⚠️ " + truncate(err.Error(), maxErrorDetail)
			} else {
				resp.Collections = names
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	limit, ok := queryLimit(w, r, domain.DefaultLeaderboardLimit)
	if !ok {
		return
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewLeaderboardView(entries))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.logActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) logActivity(w http.ResponseWriter, r *http.Request) {
	var req LogActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	res, err := h.service.LogActivity(r.Context(), req.input())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewLogActivityResponse(*res))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r, domain.DefaultActivityLimit)
	if !ok {
		return
	}

	activities, err := h.service.ListActivities(r.Context(), r.URL.Query().Get("username"), limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		items = append(items, toActivityView(a))
	}
	writeJSON(w, http.StatusOK, items)
}

func activityTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	types := domain.ActivityTypes()
	items := make([]ActivityTypeView, 0, len(types))
	for _, t := range types {
		items = append(items, ActivityTypeView{ActivityType: string(t), PointsPerUnit: domain.PointsPerUnit(t)})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) badges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	badges, err := h.service.ListBadges(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBadgeViews(badges))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	summary, err := h.service.ShareableSummary(r.Context(), req.Username)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewSummaryView(*summary))
}

func (h *Handler) seed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	results, err := h.service.Seed(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewSeedResponse(results))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidActivityType) {
		writeError(w, http.StatusBadRequest, "invalid_activity_type", "Unknown activity type")
		return
	}
	if errors.Is(err, domain.ErrQuantityTooLarge) {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	entry := h.logger.WithError(err)
	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) {
		entry = entry.WithField("op", storageErr.Op)
	}
	entry.Error("request failed")
	writeError(w, http.StatusInternalServerError, "server_error", err.Error())
}

// queryLimit parses ?limit=; zero or negative values fall back to the default.
func queryLimit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "limit must be an integer")
		return 0, false
	}
	if parsed <= 0 {
		return fallback, true
	}
	return parsed, true
}

func setLabel(set bool) string {
	if set {
		return "✅ Set"
	}
	return "❌ Not Set"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
