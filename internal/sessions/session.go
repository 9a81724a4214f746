package sessions

import "time"

// Session is one logged workout. ProgramID is informational only: the
// performances are never reconciled against the linked programme's contents.
type Session struct {
	ID              int           `json:"id"`
	UserID          int           `json:"user_id"`
	ProgramID       *int          `json:"programme_id,omitempty"`
	ProgramName     *string       `json:"programme_name,omitempty"`
	Date            time.Time     `json:"date"`
	DurationMinutes *int          `json:"duration,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
	Performances    []Performance `json:"performances,omitempty"`
}

// Performance is one recorded set within a session. SetNumber is
// caller-supplied and deliberately not validated for uniqueness or
// contiguity.
type Performance struct {
	ID         int     `json:"id"`
	ExerciseID int     `json:"exercise_id"`
	SetNumber  int     `json:"set_number"`
	Reps       int     `json:"reps"`
	Weight     float64 `json:"weight"`
	Notes      *string `json:"notes,omitempty"`

	ExerciseName string `json:"exercise_name,omitempty"`
	MuscleGroup  string `json:"muscle_group,omitempty"`
}

// PerformanceInput is the write-side shape of one performance entry.
type PerformanceInput struct {
	ExerciseID int     `json:"exercise_id"`
	SetNumber  int     `json:"set_number"`
	Reps       int     `json:"reps"`
	Weight     float64 `json:"weight"`
	Notes      *string `json:"notes"`
}
