package stats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vfilipov/traintrack/internal/middleware"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type repoMock struct {
	history map[int][]HistoryEntry
	summary map[int]*ExerciseSummary
	global  *GlobalSummary
	chart   map[int][]ChartPoint
}

func newRepoMock() *repoMock {
	return &repoMock{
		history: make(map[int][]HistoryEntry),
		summary: make(map[int]*ExerciseSummary),
		chart:   make(map[int][]ChartPoint),
	}
}

func (r *repoMock) ExerciseHistory(_ context.Context, _, exerciseID int) ([]HistoryEntry, error) {
	history, ok := r.history[exerciseID]
	if !ok {
		return make([]HistoryEntry, 0), nil
	}
	return history, nil
}

func (r *repoMock) ExerciseSummary(_ context.Context, _, exerciseID int) (*ExerciseSummary, error) {
	summary, ok := r.summary[exerciseID]
	if !ok {
		return &ExerciseSummary{}, nil
	}
	return summary, nil
}

func (r *repoMock) GlobalSummary(_ context.Context, _ int) (*GlobalSummary, error) {
	if r.global == nil {
		return nil, errors.New("global summary not set")
	}
	return r.global, nil
}

func (r *repoMock) ExerciseChart(_ context.Context, _, exerciseID int) ([]ChartPoint, error) {
	return r.chart[exerciseID], nil
}

func authedRequest(t *testing.T, userID int, target string) *http.Request {
	t.Helper()
	req, err := http.NewRequest("GET", target, nil)
	require.NoError(t, err)
	return req.WithContext(middleware.ContextWithUserID(context.Background(), userID))
}

func TestHandler_HandleExerciseHistory(t *testing.T) {
	repo := newRepoMock()
	now := time.Now()
	notes := gofakeit.Sentence(4)
	repo.history[3] = []HistoryEntry{
		{Date: now, SetNumber: 1, Reps: 8, Weight: 80, Notes: &notes},
		{Date: now, SetNumber: 2, Reps: 6, Weight: 85},
	}

	router := mux.NewRouter()
	NewHandler(repo).SetupRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "/stats/exercise/3"))
	require.Equal(t, http.StatusOK, rec.Code)

	var history []HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].SetNumber)
	require.NotNil(t, history[0].Notes)
	assert.Equal(t, notes, *history[0].Notes)

	// an exercise never performed yields an empty list, not an error
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "/stats/exercise/42"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "/stats/exercise/squat"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleExerciseSummary(t *testing.T) {
	repo := newRepoMock()
	repo.summary[3] = &ExerciseSummary{
		MaxWeight:    110,
		MaxReps:      12,
		SessionCount: 14,
		TotalVolume:  9840,
		LastPerformance: &LastPerformance{
			Date:      time.Date(2026, 8, 20, 18, 30, 0, 0, time.UTC),
			Weight:    100,
			Reps:      5,
			SetNumber: 3,
		},
	}

	router := mux.NewRouter()
	NewHandler(repo).SetupRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "/stats/exercise/3/summary"))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary ExerciseSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 110.0, summary.MaxWeight)
	assert.Equal(t, 12, summary.MaxReps)
	assert.Equal(t, 14, summary.SessionCount)
	assert.Equal(t, 9840.0, summary.TotalVolume)
	require.NotNil(t, summary.LastPerformance)
	assert.Equal(t, 100.0, summary.LastPerformance.Weight)

	// no sets logged: zeroed summary with a null last performance
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "/stats/exercise/42/summary"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Zero(t, summary.MaxWeight)
	assert.Zero(t, summary.SessionCount)
	assert.Nil(t, summary.LastPerformance)
}

func TestHandler_HandleGlobalSummary(t *testing.T) {
	repo := newRepoMock()
	repo.global = &GlobalSummary{
		TotalSessions: 42,
		TotalVolume:   123456,
		SessionsPerMonth: []MonthCount{
			{Month: "2026-08", SessionCount: 9},
			{Month: "2026-07", SessionCount: 11},
		},
		TopExercises: []ExerciseUsage{
			{Name: "Squat", MuscleGroup: "legs", SessionCount: 30},
			{Name: "Bench Press", MuscleGroup: "chest", SessionCount: 25},
		},
	}

	router := mux.NewRouter()
	NewHandler(repo).SetupRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "/stats/global"))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary GlobalSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 42, summary.TotalSessions)
	require.Len(t, summary.SessionsPerMonth, 2)
	assert.Equal(t, "2026-08", summary.SessionsPerMonth[0].Month)
	require.Len(t, summary.TopExercises, 2)
	assert.Equal(t, "Squat", summary.TopExercises[0].Name)
}

func TestHandler_HandleGlobalSummary_RepoError(t *testing.T) {
	router := mux.NewRouter()
	NewHandler(newRepoMock()).SetupRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "/stats/global"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// internal details stay out of the response body
	assert.Equal(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestHandler_HandleExerciseChart(t *testing.T) {
	repo := newRepoMock()
	repo.chart[3] = []ChartPoint{
		{Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), AvgWeight: 77.5, MaxWeight: 85},
		{Date: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), AvgWeight: 82.5, MaxWeight: 90},
	}

	router := mux.NewRouter()
	NewHandler(repo).SetupRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, 7, "/stats/exercise/3/chart"))
	require.Equal(t, http.StatusOK, rec.Code)

	var points []ChartPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 2)
	// oldest date first
	assert.True(t, points[0].Date.Before(points[1].Date))
	assert.Equal(t, 77.5, points[0].AvgWeight)
	assert.Equal(t, 90.0, points[1].MaxWeight)
}
