package exercises

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
	repo := NewMockExercisesRepo()
	handler := NewHandler(repo)

	// created_by in the payload must be ignored, owner comes from the token
	reqBody := `{"name":"Squat","muscle_group":"legs","description":"barbell back squat","created_by":999}`
	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, authedRequest(t, 7, "POST", "/exercises", reqBody))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CreateExerciseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ExerciseID)

	added, err := repo.Get(context.Background(), resp.ExerciseID)
	require.NoError(t, err)
	assert.Equal(t, "Squat", added.Name)
	assert.Equal(t, "legs", added.MuscleGroup)
	require.NotNil(t, added.CreatedBy)
	assert.Equal(t, 7, *added.CreatedBy)
}

func TestHandler_HandleCreate_MissingFields(t *testing.T) {
	handler := NewHandler(NewMockExercisesRepo())

	for _, reqBody := range []string{
		`{"muscle_group":"legs"}`,
		`{"name":"Squat"}`,
		`{}`,
	} {
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, authedRequest(t, 7, "POST", "/exercises", reqBody))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", reqBody)
	}
}

func TestHandler_HandleList(t *testing.T) {
	repo := NewMockExercisesRepo()
	handler := NewHandler(repo)

	owner := 7
	other := 8
	ctx := context.Background()
	_, err := repo.Add(ctx, Exercise{Name: "Bench Press", MuscleGroup: "chest"}) // global
	require.NoError(t, err)
	_, err = repo.Add(ctx, Exercise{Name: "Squat", MuscleGroup: "legs", CreatedBy: &owner})
	require.NoError(t, err)
	_, err = repo.Add(ctx, Exercise{Name: "Deadlift", MuscleGroup: "back", CreatedBy: &other})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.HandleList(rec, authedRequest(t, owner, "GET", "/exercises", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []Exercise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	// global union owned, other users' exercises stay invisible
	assert.Equal(t, "Bench Press", listed[0].Name)
	assert.Equal(t, "Squat", listed[1].Name)
}

func TestHandler_HandleGet(t *testing.T) {
	repo := NewMockExercisesRepo()
	handler := NewHandler(repo)

	added, err := repo.Add(context.Background(), Exercise{Name: "Squat", MuscleGroup: "legs"})
	require.NoError(t, err)

	router := mux.NewRouter()
	handler.SetupRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "GET", "/exercises/1", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var exercise Exercise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exercise))
	assert.Equal(t, added.ID, exercise.ID)
	assert.Equal(t, "Squat", exercise.Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "GET", "/exercises/42", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "GET", "/exercises/squat", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleUpdate(t *testing.T) {
	repo := NewMockExercisesRepo()
	handler := NewHandler(repo)

	owner := 7
	_, err := repo.Add(context.Background(), Exercise{Name: "Squat", MuscleGroup: "legs", CreatedBy: &owner})
	require.NoError(t, err)

	router := mux.NewRouter()
	handler.SetupRoutes(router)

	reqBody := `{"name":"Front Squat","muscle_group":"legs"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, owner, "PUT", "/exercises/1", reqBody))
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Front Squat", updated.Name)

	// not the owner: absent and not-owned look the same
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 8, "PUT", "/exercises/1", reqBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_HandleDelete(t *testing.T) {
	repo := NewMockExercisesRepo()
	handler := NewHandler(repo)

	owner := 7
	ctx := context.Background()
	_, err := repo.Add(ctx, Exercise{Name: "Squat", MuscleGroup: "legs", CreatedBy: &owner})
	require.NoError(t, err)
	_, err = repo.Add(ctx, Exercise{Name: "Bench Press", MuscleGroup: "chest"}) // global
	require.NoError(t, err)

	router := mux.NewRouter()
	handler.SetupRoutes(router)

	// global exercises are not deletable through the standard path
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, owner, "DELETE", "/exercises/2", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, owner, "DELETE", "/exercises/1", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}
