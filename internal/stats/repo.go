package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vfilipov/traintrack/internal/telemetry/tracing"
)

// historyLimit caps the per-exercise history to the most recent sets.
const historyLimit = 100

// chartLimit caps the per-exercise chart to the earliest distinct dates.
const chartLimit = 50

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ExerciseHistory returns the caller's logged sets for one exercise, newest
// session first, sets in order within a session, capped at 100 rows.
func (r *Repo) ExerciseHistory(ctx context.Context, userID, exerciseID int) (_ []HistoryEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.stats.exerciseHistory")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.Int("exercise.id", exerciseID),
	)

	rows, err := r.db.Query(
		ctx,
		`SELECT s.date, pf.set_number, pf.reps, pf.weight, pf.notes
			FROM performance pf
			JOIN training_session s ON pf.session_id = s.id
			WHERE pf.exercise_id = $1 AND s.user_id = $2
			ORDER BY s.date DESC, pf.set_number ASC
			LIMIT $3;`,
		exerciseID, userID, historyLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercise history: %w", err)
	}
	defer rows.Close()

	history := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Date, &e.SetNumber, &e.Reps, &e.Weight, &e.Notes); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		history = append(history, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return history, nil
}

// ExerciseSummary aggregates every set the caller logged for one exercise.
// An exercise with no logged sets yields a zeroed summary, not an error.
func (r *Repo) ExerciseSummary(ctx context.Context, userID, exerciseID int) (_ *ExerciseSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.stats.exerciseSummary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.Int("exercise.id", exerciseID),
	)

	var summary ExerciseSummary
	err = r.db.QueryRow(
		ctx,
		`SELECT
				COALESCE(MAX(pf.weight), 0),
				COALESCE(MAX(pf.reps), 0),
				COUNT(DISTINCT s.id),
				COALESCE(SUM(pf.weight * pf.reps), 0)
			FROM performance pf
			JOIN training_session s ON pf.session_id = s.id
			WHERE pf.exercise_id = $1 AND s.user_id = $2;`,
		exerciseID, userID,
	).Scan(&summary.MaxWeight, &summary.MaxReps, &summary.SessionCount, &summary.TotalVolume)
	if err != nil {
		return nil, fmt.Errorf("query exercise summary: %w", err)
	}

	var last LastPerformance
	err = r.db.QueryRow(
		ctx,
		`SELECT s.date, pf.weight, pf.reps, pf.set_number
			FROM performance pf
			JOIN training_session s ON pf.session_id = s.id
			WHERE pf.exercise_id = $1 AND s.user_id = $2
			ORDER BY s.date DESC
			LIMIT 1;`,
		exerciseID, userID,
	).Scan(&last.Date, &last.Weight, &last.Reps, &last.SetNumber)
	switch {
	case err == nil:
		summary.LastPerformance = &last
	case errors.Is(err, pgx.ErrNoRows):
		err = nil
	default:
		return nil, fmt.Errorf("query last performance: %w", err)
	}

	return &summary, nil
}

// GlobalSummary rolls up the caller's whole training log: session and volume
// totals, sessions per calendar month over the last 12 months (newest month
// first) and the ten most practised exercises by distinct-session count.
func (r *Repo) GlobalSummary(ctx context.Context, userID int) (_ *GlobalSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.stats.globalSummary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	summary := GlobalSummary{
		SessionsPerMonth: make([]MonthCount, 0),
		TopExercises:     make([]ExerciseUsage, 0),
	}

	err = r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM training_session WHERE user_id = $1;`,
		userID,
	).Scan(&summary.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("query session count: %w", err)
	}

	err = r.db.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(pf.weight * pf.reps), 0)
			FROM performance pf
			JOIN training_session s ON pf.session_id = s.id
			WHERE s.user_id = $1;`,
		userID,
	).Scan(&summary.TotalVolume)
	if err != nil {
		return nil, fmt.Errorf("query total volume: %w", err)
	}

	monthRows, err := r.db.Query(
		ctx,
		`SELECT to_char(date, 'YYYY-MM') AS month, COUNT(*)
			FROM training_session
			WHERE user_id = $1 AND date >= now() - INTERVAL '12 months'
			GROUP BY month
			ORDER BY month DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions per month: %w", err)
	}
	defer monthRows.Close()

	for monthRows.Next() {
		var mc MonthCount
		if err := monthRows.Scan(&mc.Month, &mc.SessionCount); err != nil {
			return nil, fmt.Errorf("scan month count: %w", err)
		}
		summary.SessionsPerMonth = append(summary.SessionsPerMonth, mc)
	}
	if err := monthRows.Err(); err != nil {
		return nil, fmt.Errorf("month rows: %w", err)
	}

	topRows, err := r.db.Query(
		ctx,
		`SELECT e.name, e.muscle_group, COUNT(DISTINCT s.id) AS session_count
			FROM performance pf
			JOIN training_session s ON pf.session_id = s.id
			JOIN exercise e ON pf.exercise_id = e.id
			WHERE s.user_id = $1
			GROUP BY e.id, e.name, e.muscle_group
			ORDER BY session_count DESC
			LIMIT 10;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query top exercises: %w", err)
	}
	defer topRows.Close()

	for topRows.Next() {
		var eu ExerciseUsage
		if err := topRows.Scan(&eu.Name, &eu.MuscleGroup, &eu.SessionCount); err != nil {
			return nil, fmt.Errorf("scan exercise usage: %w", err)
		}
		summary.TopExercises = append(summary.TopExercises, eu)
	}
	if err := topRows.Err(); err != nil {
		return nil, fmt.Errorf("top rows: %w", err)
	}

	return &summary, nil
}

// ExerciseChart returns per-calendar-date average and max weights for one
// exercise, oldest date first, capped at 50 points.
func (r *Repo) ExerciseChart(ctx context.Context, userID, exerciseID int) (_ []ChartPoint, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.stats.exerciseChart")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.Int("exercise.id", exerciseID),
	)

	rows, err := r.db.Query(
		ctx,
		`SELECT s.date::date AS day, AVG(pf.weight), MAX(pf.weight)
			FROM performance pf
			JOIN training_session s ON pf.session_id = s.id
			WHERE pf.exercise_id = $1 AND s.user_id = $2
			GROUP BY day
			ORDER BY day ASC
			LIMIT $3;`,
		exerciseID, userID, chartLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercise chart: %w", err)
	}
	defer rows.Close()

	points := make([]ChartPoint, 0)
	for rows.Next() {
		var p ChartPoint
		if err := rows.Scan(&p.Date, &p.AvgWeight, &p.MaxWeight); err != nil {
			return nil, fmt.Errorf("scan chart point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return points, nil
}
