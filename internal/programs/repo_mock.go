package programs

import (
	"context"
	"sort"
	"time"
)

type repoMock struct {
	nextID     int
	nextLinkID int
	programs   map[int]*Program
}

func NewMockProgramsRepo() *repoMock {
	return &repoMock{
		nextID:     1,
		nextLinkID: 1,
		programs:   make(map[int]*Program),
	}
}

func (r *repoMock) links(links []ExerciseLink) []ProgramExercise {
	rows := make([]ProgramExercise, 0, len(links))
	for i, l := range links {
		rows = append(rows, ProgramExercise{
			ID:         r.nextLinkID,
			ExerciseID: l.ExerciseID,
			Position:   i + 1,
			Series:     l.seriesOrDefault(),
			TargetReps: l.targetRepsOrDefault(),
		})
		r.nextLinkID++
	}
	return rows
}

func (r *repoMock) List(_ context.Context, userID int) ([]Program, error) {
	programs := make([]Program, 0)
	for _, p := range r.programs {
		if p.UserID == userID {
			listed := *p
			listed.Exercises = nil
			programs = append(programs, listed)
		}
	}
	sort.Slice(programs, func(i, j int) bool {
		return programs[i].CreatedAt.After(programs[j].CreatedAt)
	})
	return programs, nil
}

func (r *repoMock) Get(_ context.Context, userID, id int) (*Program, error) {
	program, ok := r.programs[id]
	if !ok || program.UserID != userID {
		return nil, ErrProgramNotFound
	}
	return program, nil
}

func (r *repoMock) Create(_ context.Context, userID int, name string, description *string, links []ExerciseLink) (int, error) {
	program := &Program{
		ID:          r.nextID,
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
		Exercises:   r.links(links),
	}
	r.nextID++
	r.programs[program.ID] = program
	return program.ID, nil
}

func (r *repoMock) Update(ctx context.Context, userID, id int, name, description *string, links []ExerciseLink) error {
	program, err := r.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if name != nil {
		program.Name = *name
	}
	if description != nil {
		program.Description = description
	}
	if links != nil {
		program.Exercises = r.links(links)
	}
	return nil
}

func (r *repoMock) Delete(ctx context.Context, userID, id int) error {
	if _, err := r.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(r.programs, id)
	return nil
}
