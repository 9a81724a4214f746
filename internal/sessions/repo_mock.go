package sessions

import (
	"context"
	"sort"
	"time"
)

type repoMock struct {
	nextID     int
	nextPerfID int
	sessions   map[int]*Session
}

func NewMockSessionsRepo() *repoMock {
	return &repoMock{
		nextID:     1,
		nextPerfID: 1,
		sessions:   make(map[int]*Session),
	}
}

func (r *repoMock) List(_ context.Context, userID int) ([]Session, error) {
	sessions := make([]Session, 0)
	for _, s := range r.sessions {
		if s.UserID == userID {
			listed := *s
			listed.Performances = nil
			sessions = append(sessions, listed)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Date.After(sessions[j].Date)
	})
	return sessions, nil
}

func (r *repoMock) Get(_ context.Context, userID, id int) (*Session, error) {
	session, ok := r.sessions[id]
	if !ok || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (r *repoMock) Create(
	_ context.Context,
	userID int,
	programID *int,
	date time.Time,
	durationMinutes *int,
	notes *string,
	performances []PerformanceInput,
) (int, error) {
	session := &Session{
		ID:              r.nextID,
		UserID:          userID,
		ProgramID:       programID,
		Date:            date,
		DurationMinutes: durationMinutes,
		Notes:           notes,
	}
	r.nextID++
	for _, p := range performances {
		session.Performances = append(session.Performances, Performance{
			ID:         r.nextPerfID,
			ExerciseID: p.ExerciseID,
			SetNumber:  p.SetNumber,
			Reps:       p.Reps,
			Weight:     p.Weight,
			Notes:      p.Notes,
		})
		r.nextPerfID++
	}
	r.sessions[session.ID] = session
	return session.ID, nil
}

func (r *repoMock) AddPerformance(ctx context.Context, userID, sessionID int, perf PerformanceInput) error {
	session, err := r.Get(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	session.Performances = append(session.Performances, Performance{
		ID:         r.nextPerfID,
		ExerciseID: perf.ExerciseID,
		SetNumber:  perf.SetNumber,
		Reps:       perf.Reps,
		Weight:     perf.Weight,
		Notes:      perf.Notes,
	})
	r.nextPerfID++
	return nil
}

func (r *repoMock) Delete(ctx context.Context, userID, id int) error {
	if _, err := r.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(r.sessions, id)
	return nil
}
