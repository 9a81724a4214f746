package programs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vfilipov/traintrack/internal/middleware"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func authedRequest(t *testing.T, userID int, method, target, body string) *http.Request {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, target, nil)
	} else {
		req, err = http.NewRequest(method, target, strings.NewReader(body))
	}
	require.NoError(t, err)
	return req.WithContext(middleware.ContextWithUserID(context.Background(), userID))
}

func TestHandler_HandleCreate(t *testing.T) {
	repo := NewMockProgramsRepo()
	handler := NewHandler(repo)

	reqBody := `{
		"name": "Push Day",
		"description": "chest and triceps",
		"exercises": [
			{"exercise_id": 3, "series": 5, "reps_cible": 5},
			{"exercise_id": 4}
		]
	}`
	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, authedRequest(t, 7, "POST", "/programmes", reqBody))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CreateProgramResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ProgramID)

	program, err := repo.Get(context.Background(), 7, resp.ProgramID)
	require.NoError(t, err)
	assert.Equal(t, "Push Day", program.Name)
	require.Len(t, program.Exercises, 2)

	// positions follow the array order
	assert.Equal(t, 1, program.Exercises[0].Position)
	assert.Equal(t, 3, program.Exercises[0].ExerciseID)
	assert.Equal(t, 5, program.Exercises[0].Series)
	assert.Equal(t, 5, program.Exercises[0].TargetReps)

	// omitted series and reps fall back to 3x10
	assert.Equal(t, 2, program.Exercises[1].Position)
	assert.Equal(t, 3, program.Exercises[1].Series)
	assert.Equal(t, 10, program.Exercises[1].TargetReps)
}

func TestHandler_HandleCreate_MissingName(t *testing.T) {
	handler := NewHandler(NewMockProgramsRepo())

	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, authedRequest(t, 7, "POST", "/programmes", `{"exercises":[]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleList(t *testing.T) {
	repo := NewMockProgramsRepo()
	handler := NewHandler(repo)

	ctx := context.Background()
	_, err := repo.Create(ctx, 7, "Push Day", nil, nil)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 8, "Leg Day", nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.HandleList(rec, authedRequest(t, 7, "GET", "/programmes", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []Program
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Push Day", listed[0].Name)
}

func TestHandler_HandleGet_Ownership(t *testing.T) {
	repo := NewMockProgramsRepo()
	handler := NewHandler(repo)

	_, err := repo.Create(context.Background(), 7, "Push Day", nil, []ExerciseLink{{ExerciseID: 3}})
	require.NoError(t, err)

	router := mux.NewRouter()
	handler.SetupRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "GET", "/programmes/1", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var program Program
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &program))
	assert.Equal(t, "Push Day", program.Name)
	require.Len(t, program.Exercises, 1)

	// someone else's programme is indistinguishable from a missing one
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 8, "GET", "/programmes/1", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "GET", "/programmes/42", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_HandleUpdate(t *testing.T) {
	repo := NewMockProgramsRepo()
	handler := NewHandler(repo)

	_, err := repo.Create(
		context.Background(), 7, "Push Day", nil,
		[]ExerciseLink{{ExerciseID: 3}, {ExerciseID: 4}},
	)
	require.NoError(t, err)

	router := mux.NewRouter()
	handler.SetupRoutes(router)

	// name only: links stay untouched
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "PUT", "/programmes/1", `{"name":"Pull Day"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	program, err := repo.Get(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pull Day", program.Name)
	assert.Len(t, program.Exercises, 2)

	// present exercises array replaces the links wholesale
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "PUT", "/programmes/1",
		`{"exercises":[{"exercise_id":9,"series":4,"reps_cible":12}]}`))
	require.Equal(t, http.StatusOK, rec.Code)

	program, err = repo.Get(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Len(t, program.Exercises, 1)
	assert.Equal(t, 9, program.Exercises[0].ExerciseID)
	assert.Equal(t, 4, program.Exercises[0].Series)
	assert.Equal(t, 12, program.Exercises[0].TargetReps)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 8, "PUT", "/programmes/1", `{"name":"Hijacked"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_HandleDelete(t *testing.T) {
	repo := NewMockProgramsRepo()
	handler := NewHandler(repo)

	_, err := repo.Create(context.Background(), 7, "Push Day", nil, nil)
	require.NoError(t, err)

	router := mux.NewRouter()
	handler.SetupRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 8, "DELETE", "/programmes/1", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "DELETE", "/programmes/1", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = repo.Get(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrProgramNotFound)
}
