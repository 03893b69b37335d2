// Package server exposes the aggregation core over a small JSON HTTP API.
// Handlers are thin adapters: they parse identifiers, call into the services,
// and encode results. All business rules live in internal/service.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmcdole/creatorstats/internal/domain"
	"github.com/mmcdole/creatorstats/internal/service"
)

// App wires the HTTP handlers to the aggregation services.
type App struct {
	owned    *service.OwnedService
	totals   *service.TotalsService
	queue    *service.RefreshQueue
	sessions *service.SessionManager
	registry *prometheus.Registry // nil disables /metrics
	logger   *slog.Logger
}

// New constructs the HTTP adapter.
func New(
	owned *service.OwnedService,
	totals *service.TotalsService,
	queue *service.RefreshQueue,
	sessions *service.SessionManager,
	registry *prometheus.Registry,
	logger *slog.Logger,
) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		owned:    owned,
		totals:   totals,
		queue:    queue,
		sessions: sessions,
		registry: registry,
		logger:   logger,
	}
}

// Routes returns the fully configured application HTTP handler.
func (a *App) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("GET /users/{id}/games", a.handleOwnedGames)
	mux.HandleFunc("GET /users/{id}/totals", a.handleTotals)
	mux.HandleFunc("GET /users/{id}/selection", a.handleSelection)
	mux.HandleFunc("PUT /users/{id}/selection", a.handleSelect)
	mux.HandleFunc("POST /users/{id}/refresh", a.handleRefresh)
	mux.HandleFunc("POST /sessions/{id}", a.handleSessionStart)
	mux.HandleFunc("DELETE /sessions/{id}", a.handleSessionEnd)
	if a.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}
	return mux
}

func (a *App) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (a *App) handleOwnedGames(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	games := a.owned.OwnedGames(r.Context(), userID)
	writeJSON(w, http.StatusOK, map[string]any{"data": games})
}

func (a *App) handleTotals(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.totals.Totals(r.Context(), userID))
}

func (a *App) handleSelection(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	game, found := a.owned.CurrentSelection(r.Context(), userID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no selection"})
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (a *App) handleSelect(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		UniverseID int64 `json:"universeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UniverseID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "universeId required"})
		return
	}
	if err := a.owned.Select(r.Context(), userID, body.UniverseID); err != nil {
		if errors.Is(err, domain.ErrNotOwned) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "universe not owned"})
			return
		}
		a.logger.Error("selection update failed", "userId", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "selection update failed"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	notify := r.URL.Query().Get("notify") == "true"
	a.queue.Enqueue(userID, notify)
	w.WriteHeader(http.StatusAccepted)
}

func (a *App) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	info := a.sessions.Start(r.Context(), userID)
	writeJSON(w, http.StatusOK, info)
}

func (a *App) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	a.sessions.End(userID)
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path segment; on failure it writes a 400 response.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}
