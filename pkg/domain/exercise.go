package domain

import "time"

// Exercise is a read-only entry from the exercise catalog.
type Exercise struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BodyPart  string `json:"bodyPart"`
	Target    string `json:"target"`
	Equipment string `json:"equipment"`
	GifURL    string `json:"gifUrl,omitempty"`
}

// WorkoutPlan is a multi-day routine produced by the plan generator.
type WorkoutPlan struct {
	Name      string    `json:"name" yaml:"name"`
	Goal      Goal      `json:"goal" yaml:"goal"`
	Level     Level     `json:"level" yaml:"level"`
	Routines  []Routine `json:"routines" yaml:"routines"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Routine is one day's worth of prescribed exercises.
type Routine struct {
	Day       string            `json:"day" yaml:"day"`
	Exercises []PlannedExercise `json:"exercises" yaml:"exercises"`
}

// PlannedExercise is a catalog exercise with its prescription.
type PlannedExercise struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Sets   int     `json:"sets" yaml:"sets"`
	Reps   int     `json:"reps" yaml:"reps"`
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Notes  string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ExerciseCount returns the total number of planned exercises across all days.
func (p *WorkoutPlan) ExerciseCount() int {
	n := 0
	for _, r := range p.Routines {
		n += len(r.Exercises)
	}
	return n
}
