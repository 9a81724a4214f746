package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vfilipov/traintrack/internal/middleware"
	"github.com/vfilipov/traintrack/internal/telemetry/tracing"
	"github.com/vfilipov/traintrack/pkg"
)

type exercisesRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, id int) (*Exercise, error)
	List(ctx context.Context, callerID int) ([]Exercise, error)
	Update(ctx context.Context, callerID int, exercise Exercise) error
	Delete(ctx context.Context, callerID, id int) error
}

type CreateExerciseResponse struct {
	ExerciseID int `json:"exerciseId"`
}

type Handler struct {
	repo exercisesRepo
}

func NewHandler(repo exercisesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/exercises", handler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/exercises/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	r.HandleFunc("/exercises/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-exercise")
	r.HandleFunc("/exercises/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	exercises, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list exercises for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("marshal exercises: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exercisesJson)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	exercise, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			pkg.WriteJSONError(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("get exercise %d: %s", id, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	exerciseJson, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("marshal exercise: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exerciseJson)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.create")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if exercise.Name == "" || exercise.MuscleGroup == "" {
		pkg.WriteJSONError(w, "name and muscle group are required", http.StatusBadRequest)
		return
	}

	// owner always derives from the token, never from the payload
	exercise.CreatedBy = &userID

	addedExercise, err := handler.repo.Add(ctx, exercise)
	if err != nil {
		log.Errorf("add exercise [%s] for user %d: %s", exercise.Name, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(CreateExerciseResponse{ExerciseID: addedExercise.ID})
	if err != nil {
		log.Errorf("marshal create exercise response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new exercise added: %d [%s]", addedExercise.ID, addedExercise.Name)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		log.Tracef("update exercise, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if exercise.Name == "" || exercise.MuscleGroup == "" {
		pkg.WriteJSONError(w, "name and muscle group are required", http.StatusBadRequest)
		return
	}

	exercise.ID = id
	if err := handler.repo.Update(ctx, userID, exercise); err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			pkg.WriteJSONError(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("update exercise %d for user %d: %s", id, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("exercise updated: %d [%s]", id, exercise.Name)
	pkg.WriteJSONResponseOK(w, `{"message":"exercise updated"}`)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			pkg.WriteJSONError(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete exercise %d for user %d: %s", id, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("exercise deleted: %d", id)
	pkg.WriteJSONResponseOK(w, `{"message":"exercise deleted"}`)
}
