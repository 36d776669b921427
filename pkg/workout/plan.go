package workout

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/naveenspark/fitline/pkg/domain"
)

// Edit is a change to one planned exercise. Nil fields are left alone.
type Edit struct {
	Sets   *int
	Reps   *int
	Weight *float64
}

// EditExercise applies e to the exercise at index ex of routine day.
func EditExercise(plan *domain.WorkoutPlan, day, ex int, e Edit) error {
	if plan == nil || day < 0 || day >= len(plan.Routines) {
		return fmt.Errorf("workout.EditExercise: no day %d", day+1)
	}
	exercises := plan.Routines[day].Exercises
	if ex < 0 || ex >= len(exercises) {
		return fmt.Errorf("workout.EditExercise: no exercise %d on %s", ex+1, plan.Routines[day].Day)
	}
	target := &exercises[ex]
	if e.Sets != nil {
		if *e.Sets < 1 {
			return fmt.Errorf("workout.EditExercise: %w: sets must be at least 1", ErrInvalidPreferences)
		}
		target.Sets = *e.Sets
	}
	if e.Reps != nil {
		if *e.Reps < 1 {
			return fmt.Errorf("workout.EditExercise: %w: reps must be at least 1", ErrInvalidPreferences)
		}
		target.Reps = *e.Reps
	}
	if e.Weight != nil {
		if *e.Weight < 0 {
			return fmt.Errorf("workout.EditExercise: %w: weight cannot be negative", ErrInvalidPreferences)
		}
		target.Weight = *e.Weight
	}
	return nil
}

// ExportYAML writes plan as a YAML document.
func ExportYAML(w io.Writer, plan *domain.WorkoutPlan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("workout.ExportYAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("workout.ExportYAML: %w", err)
	}
	return nil
}

// ImportYAML reads a plan written by ExportYAML.
func ImportYAML(r io.Reader) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	if err := yaml.NewDecoder(r).Decode(&plan); err != nil {
		return nil, fmt.Errorf("workout.ImportYAML: %w", err)
	}
	return &plan, nil
}

// Text renders plan as plain text for the clipboard.
func Text(plan *domain.WorkoutPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %s)\n", plan.Name, plan.Goal.Label(), plan.Level)
	for _, r := range plan.Routines {
		fmt.Fprintf(&b, "\n%s\n", r.Day)
		if len(r.Exercises) == 0 {
			b.WriteString("  rest\n")
			continue
		}
		for i, ex := range r.Exercises {
			fmt.Fprintf(&b, "  %d. %s  %dx%d", i+1, ex.Name, ex.Sets, ex.Reps)
			if ex.Weight > 0 {
				fmt.Fprintf(&b, " @ %g", ex.Weight)
			}
			if ex.Notes != "" {
				fmt.Fprintf(&b, "  (%s)", ex.Notes)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
