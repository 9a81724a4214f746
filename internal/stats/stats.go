package stats

import "time"

// HistoryEntry is one logged set of an exercise, newest session first.
type HistoryEntry struct {
	Date      time.Time `json:"date"`
	SetNumber int       `json:"set_number"`
	Reps      int       `json:"reps"`
	Weight    float64   `json:"weight"`
	Notes     *string   `json:"notes,omitempty"`
}

type LastPerformance struct {
	Date      time.Time `json:"date"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	SetNumber int       `json:"set_number"`
}

// ExerciseSummary aggregates every logged set of one exercise for one user.
type ExerciseSummary struct {
	MaxWeight       float64          `json:"maxWeight"`
	MaxReps         int              `json:"maxReps"`
	SessionCount    int              `json:"sessionCount"`
	TotalVolume     float64          `json:"totalVolume"`
	LastPerformance *LastPerformance `json:"lastPerformance"`
}

type MonthCount struct {
	Month        string `json:"month"`
	SessionCount int    `json:"sessionCount"`
}

type ExerciseUsage struct {
	Name         string `json:"name"`
	MuscleGroup  string `json:"muscle_group"`
	SessionCount int    `json:"sessionCount"`
}

type GlobalSummary struct {
	TotalSessions    int             `json:"totalSessions"`
	TotalVolume      float64         `json:"totalVolume"`
	SessionsPerMonth []MonthCount    `json:"sessionsPerMonth"`
	TopExercises     []ExerciseUsage `json:"topExercises"`
}

// ChartPoint is the per-calendar-date weight rollup of one exercise.
type ChartPoint struct {
	Date      time.Time `json:"date"`
	AvgWeight float64   `json:"avgWeight"`
	MaxWeight float64   `json:"maxWeight"`
}
