package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vfilipov/traintrack/internal/telemetry/tracing"
	"github.com/vfilipov/traintrack/pkg"
)

var (
	ErrSessionNotFound = errors.New("session not found")

	// ErrUnknownExercise marks a performance referencing a nonexistent
	// catalog entry.
	ErrUnknownExercise = errors.New("unknown exercise")
)

// listLimit caps the session listing to the most recent entries.
const listLimit = 50

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns the caller's most recent sessions (newest first, capped at
// 50), each annotated with its source programme name if any.
func (r *Repo) List(ctx context.Context, userID int) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT s.id, s.user_id, s.program_id, p.name, s.date, s.duration_minutes, s.notes
			FROM training_session s
			LEFT JOIN program p ON s.program_id = p.id
			WHERE s.user_id = $1
			ORDER BY s.date DESC
			LIMIT $2;`,
		userID, listLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.ProgramID, &s.ProgramName,
			&s.Date, &s.DurationMinutes, &s.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if sessions == nil {
		sessions = make([]Session, 0)
	}
	return sessions, nil
}

// Get returns a caller-owned session with its performances joined with the
// exercise catalog fields, in insertion order.
func (r *Repo) Get(ctx context.Context, userID, id int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	session := &Session{}
	err = r.db.QueryRow(
		ctx,
		`SELECT s.id, s.user_id, s.program_id, p.name, s.date, s.duration_minutes, s.notes
			FROM training_session s
			LEFT JOIN program p ON s.program_id = p.id
			WHERE s.id = $1 AND s.user_id = $2;`,
		id, userID,
	).Scan(
		&session.ID, &session.UserID, &session.ProgramID, &session.ProgramName,
		&session.Date, &session.DurationMinutes, &session.Notes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT pf.id, pf.exercise_id, pf.set_number, pf.reps, pf.weight, pf.notes,
				e.name, e.muscle_group
			FROM performance pf
			JOIN exercise e ON pf.exercise_id = e.id
			WHERE pf.session_id = $1
			ORDER BY pf.id;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query performances: %w", err)
	}
	defer rows.Close()

	session.Performances = make([]Performance, 0)
	for rows.Next() {
		var p Performance
		if err := rows.Scan(
			&p.ID, &p.ExerciseID, &p.SetNumber, &p.Reps, &p.Weight, &p.Notes,
			&p.ExerciseName, &p.MuscleGroup,
		); err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		session.Performances = append(session.Performances, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return session, nil
}

// Create inserts the session row and all its performance rows in a single
// transaction: either everything persists or nothing does.
func (r *Repo) Create(
	ctx context.Context,
	userID int,
	programID *int,
	date time.Time,
	durationMinutes *int,
	notes *string,
	performances []PerformanceInput,
) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("performances.count", len(performances)))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var sessionID int
	err = tx.QueryRow(
		ctx,
		`INSERT INTO training_session (user_id, program_id, date, duration_minutes, notes)
			VALUES ($1, $2, $3, $4, $5)
		RETURNING id;`,
		userID, programID, date, durationMinutes, notes,
	).Scan(&sessionID)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}

	for i, perf := range performances {
		if _, err = tx.Exec(
			ctx,
			`INSERT INTO performance (session_id, exercise_id, set_number, reps, weight, notes)
				VALUES ($1, $2, $3, $4, $5, $6);`,
			sessionID, perf.ExerciseID, perf.SetNumber, perf.Reps, perf.Weight, perf.Notes,
		); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return 0, fmt.Errorf("insert performance %d: %w", i+1, ErrUnknownExercise)
			}
			return 0, fmt.Errorf("insert performance %d: %w", i+1, err)
		}
	}

	span.SetAttributes(attribute.Int("session.id", sessionID))
	return sessionID, nil
}

// AddPerformance appends a single performance row to a caller-owned session.
// One statement after the ownership check, no transaction needed.
func (r *Repo) AddPerformance(ctx context.Context, userID, sessionID int, perf PerformanceInput) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.addPerformance")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	var ownerCheck int
	err = r.db.QueryRow(
		ctx,
		`SELECT id FROM training_session WHERE id = $1 AND user_id = $2;`,
		sessionID, userID,
	).Scan(&ownerCheck)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("query session: %w", err)
	}

	if _, err = r.db.Exec(
		ctx,
		`INSERT INTO performance (session_id, exercise_id, set_number, reps, weight, notes)
			VALUES ($1, $2, $3, $4, $5, $6);`,
		sessionID, perf.ExerciseID, perf.SetNumber, perf.Reps, perf.Weight, perf.Notes,
	); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return fmt.Errorf("insert performance: %w", ErrUnknownExercise)
		}
		return fmt.Errorf("insert performance: %w", err)
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	// performances go away through the FK cascade
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM training_session WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}
