package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vfilipov/traintrack/internal/middleware"
	"github.com/vfilipov/traintrack/internal/telemetry/metrics"
	"github.com/vfilipov/traintrack/internal/telemetry/tracing"
	"github.com/vfilipov/traintrack/pkg"
)

type sessionsRepo interface {
	List(ctx context.Context, userID int) ([]Session, error)
	Get(ctx context.Context, userID, id int) (*Session, error)
	Create(
		ctx context.Context,
		userID int,
		programID *int,
		date time.Time,
		durationMinutes *int,
		notes *string,
		performances []PerformanceInput,
	) (int, error)
	AddPerformance(ctx context.Context, userID, sessionID int, perf PerformanceInput) error
	Delete(ctx context.Context, userID, id int) error
}

type CreateSessionResponse struct {
	SessionID int `json:"sessionId"`
}

type Handler struct {
	repo           sessionsRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo sessionsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/sessions", handler.HandleList).Methods("GET", "OPTIONS").Name("list-sessions")
	r.HandleFunc("/sessions", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-session")
	r.HandleFunc("/sessions/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-session")
	r.HandleFunc("/sessions/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-session")
	r.HandleFunc("/sessions/{id}/performances", handler.HandleAddPerformance).Methods("POST", "OPTIONS").Name("new-performance")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.list")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	sessions, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list sessions for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	sessionsJson, err := json.Marshal(sessions)
	if err != nil {
		log.Errorf("marshal sessions: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, sessionsJson)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.get")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid session id", http.StatusBadRequest)
		return
	}

	session, err := handler.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			pkg.WriteJSONError(w, "session not found", http.StatusNotFound)
			return
		}
		log.Errorf("get session %d for user %d: %s", id, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	sessionJson, err := json.Marshal(session)
	if err != nil {
		log.Errorf("marshal session: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, sessionJson)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.create")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	var createReq struct {
		ProgramID       *int               `json:"programme_id"`
		Date            *time.Time         `json:"date"`
		DurationMinutes *int               `json:"duration"`
		Notes           *string            `json:"notes"`
		Performances    []PerformanceInput `json:"performances"`
	}
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		log.Tracef("new session, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	date := time.Now()
	if createReq.Date != nil {
		date = *createReq.Date
	}

	sessionID, err := handler.repo.Create(
		ctx, userID,
		createReq.ProgramID, date, createReq.DurationMinutes, createReq.Notes,
		createReq.Performances,
	)
	if err != nil {
		if errors.Is(err, ErrUnknownExercise) {
			pkg.WriteJSONError(w, "unknown exercise in performances", http.StatusBadRequest)
			return
		}
		log.Errorf("create session for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterLoggedSessions.Inc()
	}

	respJson, err := json.Marshal(CreateSessionResponse{SessionID: sessionID})
	if err != nil {
		log.Errorf("marshal create session response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new session logged: %d, user %d", sessionID, userID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) HandleAddPerformance(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.addPerformance")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	sessionID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid session id", http.StatusBadRequest)
		return
	}

	var perf PerformanceInput
	if err := json.NewDecoder(r.Body).Decode(&perf); err != nil {
		log.Tracef("new performance, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := handler.repo.AddPerformance(ctx, userID, sessionID, perf); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			pkg.WriteJSONError(w, "session not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrUnknownExercise) {
			pkg.WriteJSONError(w, "unknown exercise", http.StatusBadRequest)
			return
		}
		log.Errorf("add performance to session %d for user %d: %s", sessionID, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("performance added to session %d", sessionID)
	pkg.WriteResponse(w, pkg.ContentType.JSON, `{"message":"performance added"}`, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.delete")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid session id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			pkg.WriteJSONError(w, "session not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete session %d for user %d: %s", id, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("session deleted: %d", id)
	pkg.WriteJSONResponseOK(w, `{"message":"session deleted"}`)
}
