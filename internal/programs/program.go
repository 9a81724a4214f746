package programs

import "time"

type Program struct {
	ID          int               `json:"id"`
	UserID      int               `json:"user_id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Exercises   []ProgramExercise `json:"exercises,omitempty"`
}

// ProgramExercise is one link row of a programme, joined with the catalog
// fields of the referenced exercise. Position is 1-based and contiguous,
// it defines the execution order.
type ProgramExercise struct {
	ID         int `json:"id"`
	ExerciseID int `json:"exercise_id"`
	Position   int `json:"position"`
	Series     int `json:"series"`
	TargetReps int `json:"reps_cible"`

	ExerciseName        string  `json:"name"`
	MuscleGroup         string  `json:"muscle_group"`
	ExerciseDescription *string `json:"exercise_description,omitempty"`
}

// ExerciseLink is the write-side shape of one programme entry. Order comes
// from the array index at write time, never from a client-supplied position.
type ExerciseLink struct {
	ExerciseID int `json:"exercise_id"`
	Series     int `json:"series"`
	TargetReps int `json:"reps_cible"`
}

const (
	defaultSeries     = 3
	defaultTargetReps = 10
)

func (l ExerciseLink) seriesOrDefault() int {
	if l.Series <= 0 {
		return defaultSeries
	}
	return l.Series
}

func (l ExerciseLink) targetRepsOrDefault() int {
	if l.TargetReps <= 0 {
		return defaultTargetReps
	}
	return l.TargetReps
}
