package status

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/otp-enc.net/internal/core/ports/primary"
	"gitlab.com/otp-enc.net/internal/core/ports/secondary"
	"gitlab.com/otp-enc.net/internal/domain"
	"gitlab.com/otp-enc.net/internal/handlers"
)

const (
	defaultSessionLimit = 20
	maxSessionLimit     = 256
)

// StatsProvider is satisfied by *tcp.TCPServer
type StatsProvider interface {
	Stats() domain.ServerStats
}

type ApiHandler struct {
	Stats       StatsProvider
	SessionRepo secondary.SessionRepository
	logger      primary.Logger
}

func NewHandler(stats StatsProvider, sessionRepo secondary.SessionRepository, logger primary.Logger) *ApiHandler {
	return &ApiHandler{
		Stats:       stats,
		SessionRepo: sessionRepo,
		logger:      logger,
	}
}

func (api *ApiHandler) Register(r *mux.Router) {
	r.HandleFunc("/healthz", api.Health).Methods("GET")
	r.HandleFunc("/api/status", api.GetStatus).Methods("GET")
	r.HandleFunc("/api/sessions", api.GetSessions).Methods("GET")
	r.HandleFunc("/api/sessions/{sessionId}", api.GetSession).Methods("GET")
}

func (api *ApiHandler) Health(w http.ResponseWriter, _ *http.Request) {
	handlers.ResponseWithJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (api *ApiHandler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	handlers.ResponseWithJson(w, http.StatusOK, api.Stats.Stats())
}

func (api *ApiHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultSessionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			handlers.ResponseError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxSessionLimit)
	}

	sessions, err := api.SessionRepo.RecentSessions(r.Context(), limit)
	if err != nil {
		api.logger.Error("Failed to list sessions", "error", err)
		handlers.ResponseError(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}

	handlers.ResponseWithJson(w, http.StatusOK, sessions)
}

func (api *ApiHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["sessionId"])
	if err != nil {
		handlers.ResponseError(w, "invalid session id", http.StatusBadRequest)
		return
	}

	session, err := api.SessionRepo.GetSession(r.Context(), id)
	if err != nil {
		api.logger.Error("Failed to get session", "sessionId", id, "error", err)
		handlers.ResponseError(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		handlers.ResponseError(w, "session not found", http.StatusNotFound)
		return
	}

	handlers.ResponseWithJson(w, http.StatusOK, session)
}
