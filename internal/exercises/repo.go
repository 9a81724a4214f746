package exercises

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vfilipov/traintrack/internal/telemetry/tracing"
)

var ErrExerciseNotFound = errors.New("exercise not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO exercise
				(name, muscle_group, description, image_url, created_by)
				VALUES ($1, $2, $3, $4, $5)
			RETURNING id;`,
		exercise.Name, exercise.MuscleGroup, exercise.Description, exercise.ImageURL, exercise.CreatedBy,
	).Scan(&exercise.ID)
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", exercise.ID))
	return &exercise, nil
}

// Get has no ownership filter: any authenticated caller may read any
// exercise by id.
func (r *Repo) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	exercise := &Exercise{}
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name, muscle_group, description, image_url, created_by
			FROM exercise
			WHERE id = $1;`,
		id,
	).Scan(
		&exercise.ID, &exercise.Name, &exercise.MuscleGroup,
		&exercise.Description, &exercise.ImageURL, &exercise.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("query exercise: %w", err)
	}

	return exercise, nil
}

// List returns the union of global exercises and the caller's own ones.
func (r *Repo) List(ctx context.Context, callerID int) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("caller.id", callerID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, muscle_group, description, image_url, created_by
			FROM exercise
			WHERE created_by IS NULL OR created_by = $1
			ORDER BY name;`,
		callerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	return rows2exercises(rows)
}

// Update overwrites the mutable fields of a caller-owned exercise. Global
// exercises and other users' exercises are invisible to the ownership filter,
// both produce ErrExerciseNotFound.
func (r *Repo) Update(ctx context.Context, callerID int, exercise Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", exercise.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE exercise SET name = $1, muscle_group = $2, description = $3, image_url = $4
			WHERE id = $5 AND created_by = $6;`,
		exercise.Name, exercise.MuscleGroup, exercise.Description, exercise.ImageURL,
		exercise.ID, callerID,
	)
	if err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, callerID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercise WHERE id = $1 AND created_by = $2;`,
		id, callerID,
	)
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(
			&e.ID, &e.Name, &e.MuscleGroup,
			&e.Description, &e.ImageURL, &e.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if exercises == nil {
		exercises = make([]Exercise, 0)
	}
	return exercises, nil
}
