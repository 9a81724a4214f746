package exercises

import (
	"context"
	"sort"
)

type repoMock struct {
	nextID    int
	exercises map[int]*Exercise
}

func NewMockExercisesRepo() *repoMock {
	return &repoMock{
		nextID:    1,
		exercises: make(map[int]*Exercise),
	}
}

func (r *repoMock) Add(_ context.Context, exercise Exercise) (*Exercise, error) {
	exercise.ID = r.nextID
	r.nextID++
	r.exercises[exercise.ID] = &exercise
	return &exercise, nil
}

func (r *repoMock) Get(_ context.Context, id int) (*Exercise, error) {
	exercise, ok := r.exercises[id]
	if !ok {
		return nil, ErrExerciseNotFound
	}
	return exercise, nil
}

func (r *repoMock) List(_ context.Context, callerID int) ([]Exercise, error) {
	exercises := make([]Exercise, 0)
	for _, e := range r.exercises {
		if e.IsGlobal() || *e.CreatedBy == callerID {
			exercises = append(exercises, *e)
		}
	}
	sort.Slice(exercises, func(i, j int) bool {
		return exercises[i].Name < exercises[j].Name
	})
	return exercises, nil
}

func (r *repoMock) Update(_ context.Context, callerID int, exercise Exercise) error {
	existing, ok := r.exercises[exercise.ID]
	if !ok || existing.IsGlobal() || *existing.CreatedBy != callerID {
		return ErrExerciseNotFound
	}
	exercise.CreatedBy = existing.CreatedBy
	r.exercises[exercise.ID] = &exercise
	return nil
}

func (r *repoMock) Delete(_ context.Context, callerID, id int) error {
	existing, ok := r.exercises[id]
	if !ok || existing.IsGlobal() || *existing.CreatedBy != callerID {
		return ErrExerciseNotFound
	}
	delete(r.exercises, id)
	return nil
}
