package programs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vfilipov/traintrack/internal/telemetry/tracing"
	"github.com/vfilipov/traintrack/pkg"
)

var (
	ErrProgramNotFound = errors.New("programme not found")

	// ErrUnknownExercise marks a link referencing a nonexistent catalog entry.
	ErrUnknownExercise = errors.New("unknown exercise")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) List(ctx context.Context, userID int) (_ []Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, description, created_at
			FROM program
			WHERE user_id = $1
			ORDER BY created_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query programmes: %w", err)
	}
	defer rows.Close()

	var programs []Program
	for rows.Next() {
		var p Program
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan programme: %w", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if programs == nil {
		programs = make([]Program, 0)
	}
	return programs, nil
}

// Get returns a caller-owned programme together with its exercise links,
// joined with the catalog fields and ordered by position.
func (r *Repo) Get(ctx context.Context, userID, id int) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	program := &Program{}
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, name, description, created_at
			FROM program
			WHERE id = $1 AND user_id = $2;`,
		id, userID,
	).Scan(&program.ID, &program.UserID, &program.Name, &program.Description, &program.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("query programme: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT pe.id, pe.exercise_id, pe.position, pe.sets, pe.target_reps,
				e.name, e.muscle_group, e.description
			FROM program_exercise pe
			JOIN exercise e ON pe.exercise_id = e.id
			WHERE pe.program_id = $1
			ORDER BY pe.position;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query programme exercises: %w", err)
	}
	defer rows.Close()

	program.Exercises = make([]ProgramExercise, 0)
	for rows.Next() {
		var pe ProgramExercise
		if err := rows.Scan(
			&pe.ID, &pe.ExerciseID, &pe.Position, &pe.Series, &pe.TargetReps,
			&pe.ExerciseName, &pe.MuscleGroup, &pe.ExerciseDescription,
		); err != nil {
			return nil, fmt.Errorf("scan programme exercise: %w", err)
		}
		program.Exercises = append(program.Exercises, pe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return program, nil
}

// Create inserts the programme row and all its exercise links in a single
// transaction: either everything persists or nothing does. Link position is
// derived from the array index (1-based).
func (r *Repo) Create(
	ctx context.Context,
	userID int,
	name string,
	description *string,
	links []ExerciseLink,
) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("links.count", len(links)))

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

	var programID int
	err = tx.QueryRow(
		ctx,
		`INSERT INTO program (user_id, name, description)
			VALUES ($1, $2, $3)
		RETURNING id;`,
		userID, name, description,
	).Scan(&programID)
	if err != nil {
		return 0, fmt.Errorf("insert programme: %w", err)
	}

	if err = insertLinks(ctx, tx, programID, links); err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int("program.id", programID))
	return programID, nil
}

// Update renames a caller-owned programme and, when links is non-nil,
// replaces the whole link set (delete-all then re-insert) in the same
// transaction. A nil links slice leaves the existing links untouched.
func (r *Repo) Update(
	ctx context.Context,
	userID, id int,
	name *string,
	description *string,
	links []ExerciseLink,
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
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

	tag, err := tx.Exec(
		ctx,
		`UPDATE program
			SET name = COALESCE($1, name), description = COALESCE($2, description)
			WHERE id = $3 AND user_id = $4;`,
		name, description, id, userID,
	)
	if err != nil {
		return fmt.Errorf("update programme: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProgramNotFound
	}

	if links != nil {
		if _, err = tx.Exec(
			ctx,
			`DELETE FROM program_exercise WHERE program_id = $1;`,
			id,
		); err != nil {
			return fmt.Errorf("delete old programme exercises: %w", err)
		}

		if err = insertLinks(ctx, tx, id, links); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	// links go away through the FK cascade
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM program WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete programme: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProgramNotFound
	}
	return nil
}

func insertLinks(ctx context.Context, tx pgx.Tx, programID int, links []ExerciseLink) error {
	for i, link := range links {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO program_exercise (program_id, exercise_id, position, sets, target_reps)
				VALUES ($1, $2, $3, $4, $5);`,
			programID, link.ExerciseID, i+1, link.seriesOrDefault(), link.targetRepsOrDefault(),
		); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return fmt.Errorf("insert programme exercise %d: %w", i+1, ErrUnknownExercise)
			}
			return fmt.Errorf("insert programme exercise %d: %w", i+1, err)
		}
	}
	return nil
}
