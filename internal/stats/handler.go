package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vfilipov/traintrack/internal/middleware"
	"github.com/vfilipov/traintrack/internal/telemetry/tracing"
	"github.com/vfilipov/traintrack/pkg"
)

type statsRepo interface {
	ExerciseHistory(ctx context.Context, userID, exerciseID int) ([]HistoryEntry, error)
	ExerciseSummary(ctx context.Context, userID, exerciseID int) (*ExerciseSummary, error)
	GlobalSummary(ctx context.Context, userID int) (*GlobalSummary, error)
	ExerciseChart(ctx context.Context, userID, exerciseID int) ([]ChartPoint, error)
}

type Handler struct {
	repo statsRepo
}

func NewHandler(repo statsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	statsRouter := r.PathPrefix("/stats").Subrouter()
	statsRouter.HandleFunc("/exercise/{id}", handler.HandleExerciseHistory).Methods("GET", "OPTIONS").Name("exercise-history")
	statsRouter.HandleFunc("/exercise/{id}/summary", handler.HandleExerciseSummary).Methods("GET", "OPTIONS").Name("exercise-summary")
	statsRouter.HandleFunc("/exercise/{id}/chart", handler.HandleExerciseChart).Methods("GET", "OPTIONS").Name("exercise-chart")
	statsRouter.HandleFunc("/global", handler.HandleGlobalSummary).Methods("GET", "OPTIONS").Name("global-summary")
}

func (handler *Handler) HandleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.exerciseHistory")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	exerciseID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	history, err := handler.repo.ExerciseHistory(ctx, userID, exerciseID)
	if err != nil {
		log.Errorf("exercise %d history for user %d: %s", exerciseID, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	historyJson, err := json.Marshal(history)
	if err != nil {
		log.Errorf("marshal exercise history: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, historyJson)
}

func (handler *Handler) HandleExerciseSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.exerciseSummary")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	exerciseID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	summary, err := handler.repo.ExerciseSummary(ctx, userID, exerciseID)
	if err != nil {
		log.Errorf("exercise %d summary for user %d: %s", exerciseID, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("marshal exercise summary: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, summaryJson)
}

func (handler *Handler) HandleGlobalSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.globalSummary")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	summary, err := handler.repo.GlobalSummary(ctx, userID)
	if err != nil {
		log.Errorf("global summary for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("marshal global summary: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, summaryJson)
}

func (handler *Handler) HandleExerciseChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.exerciseChart")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	exerciseID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	points, err := handler.repo.ExerciseChart(ctx, userID, exerciseID)
	if err != nil {
		log.Errorf("exercise %d chart for user %d: %s", exerciseID, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pointsJson, err := json.Marshal(points)
	if err != nil {
		log.Errorf("marshal chart points: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, pointsJson)
}
