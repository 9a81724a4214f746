package programs

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

type programsRepo interface {
	List(ctx context.Context, userID int) ([]Program, error)
	Get(ctx context.Context, userID, id int) (*Program, error)
	Create(ctx context.Context, userID int, name string, description *string, links []ExerciseLink) (int, error)
	Update(ctx context.Context, userID, id int, name, description *string, links []ExerciseLink) error
	Delete(ctx context.Context, userID, id int) error
}

type CreateProgramResponse struct {
	ProgramID int `json:"programmeId"`
}

type Handler struct {
	repo programsRepo
}

func NewHandler(repo programsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/programmes", handler.HandleList).Methods("GET", "OPTIONS").Name("list-programmes")
	r.HandleFunc("/programmes", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-programme")
	r.HandleFunc("/programmes/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-programme")
	r.HandleFunc("/programmes/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-programme")
	r.HandleFunc("/programmes/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-programme")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.list")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	programs, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list programmes for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	programsJson, err := json.Marshal(programs)
	if err != nil {
		log.Errorf("marshal programmes: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, programsJson)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.get")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid programme id", http.StatusBadRequest)
		return
	}

	program, err := handler.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			pkg.WriteJSONError(w, "programme not found", http.StatusNotFound)
			return
		}
		log.Errorf("get programme %d for user %d: %s", id, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	programJson, err := json.Marshal(program)
	if err != nil {
		log.Errorf("marshal programme: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, programJson)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.create")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	var createReq struct {
		Name        string         `json:"name"`
		Description *string        `json:"description"`
		Exercises   []ExerciseLink `json:"exercises"`
	}
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		log.Tracef("new programme, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if createReq.Name == "" {
		pkg.WriteJSONError(w, "programme name is required", http.StatusBadRequest)
		return
	}

	programID, err := handler.repo.Create(ctx, userID, createReq.Name, createReq.Description, createReq.Exercises)
	if err != nil {
		if errors.Is(err, ErrUnknownExercise) {
			pkg.WriteJSONError(w, "unknown exercise in programme", http.StatusBadRequest)
			return
		}
		log.Errorf("create programme [%s] for user %d: %s", createReq.Name, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(CreateProgramResponse{ProgramID: programID})
	if err != nil {
		log.Errorf("marshal create programme response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new programme created: %d [%s]", programID, createReq.Name)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.update")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid programme id", http.StatusBadRequest)
		return
	}

	// a missing exercises field leaves the existing links untouched,
	// a present one replaces them wholesale
	var updateReq struct {
		Name        *string        `json:"name"`
		Description *string        `json:"description"`
		Exercises   []ExerciseLink `json:"exercises"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Tracef("update programme, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	err = handler.repo.Update(ctx, userID, id, updateReq.Name, updateReq.Description, updateReq.Exercises)
	if err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			pkg.WriteJSONError(w, "programme not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrUnknownExercise) {
			pkg.WriteJSONError(w, "unknown exercise in programme", http.StatusBadRequest)
			return
		}
		log.Errorf("update programme %d for user %d: %s", id, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("programme updated: %d", id)
	pkg.WriteJSONResponseOK(w, `{"message":"programme updated"}`)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.delete")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid programme id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			pkg.WriteJSONError(w, "programme not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete programme %d for user %d: %s", id, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("programme deleted: %d", id)
	pkg.WriteJSONResponseOK(w, `{"message":"programme deleted"}`)
}
