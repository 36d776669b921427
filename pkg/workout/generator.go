// Package workout builds multi-day training plans from the exercise catalog.
package workout

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/naveenspark/fitline/pkg/domain"
)

// ErrInvalidPreferences is returned before any work when Preferences are
// out of range.
var ErrInvalidPreferences = errors.New("invalid plan preferences")

const (
	MinDays     = 2
	MaxDays     = 6
	DefaultDays = 3

	PlanName = "Personalized Plan"
)

// Preferences drive one plan generation.
type Preferences struct {
	Goal  domain.Goal  `validate:"required,oneof=build_muscle lose_fat increase_strength general_fitness"`
	Level domain.Level `validate:"required,oneof=beginner intermediate advanced"`
	Days  int          `validate:"min=2,max=6"`

	// Equipment keeps exercises whose equipment contains it, ignoring case.
	Equipment string
	// BodyParts and Targets restrict the catalog; when both are empty the
	// goal decides the body parts.
	BodyParts []string
	Targets   []string
	// PerDay overrides the level's exercise count.
	PerDay int `validate:"omitempty,min=1,max=30"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks p, filling Days with the default when unset.
func (p *Preferences) Validate() error {
	if p.Days == 0 {
		p.Days = DefaultDays
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalidPreferences, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.Field() {
			case "Days":
				msgs = append(msgs, fmt.Sprintf("days must be between %d and %d", MinDays, MaxDays))
			case "PerDay":
				msgs = append(msgs, "exercises per day must be between 1 and 30")
			default:
				msgs = append(msgs, fmt.Sprintf("unknown %s %q", strings.ToLower(fe.Field()), fe.Value()))
			}
		}
		return fmt.Errorf("%w: %s", ErrInvalidPreferences, strings.Join(msgs, "; "))
	}
	return nil
}

// GoalBodyParts is the fallback body-part selection for a goal.
func GoalBodyParts(g domain.Goal) []string {
	switch g {
	case domain.GoalBuildMuscle, domain.GoalIncreaseStrength:
		return []string{"chest", "back", "upper legs", "shoulders", "upper arms"}
	case domain.GoalLoseFat:
		return []string{"cardio", "full body", "lower legs", "back", "chest"}
	default:
		return []string{"full body", "cardio", "upper legs", "upper arms"}
	}
}

// ExercisesPerDay is the most exercises a day holds at a level.
func ExercisesPerDay(l domain.Level) int {
	switch l {
	case domain.LevelIntermediate:
		return 10
	case domain.LevelAdvanced:
		return 12
	default:
		return 8
	}
}

// Prescription returns the sets and reps for every exercise in a plan.
// It depends only on level and goal.
func Prescription(l domain.Level, g domain.Goal) (sets, reps int) {
	sets, reps = 3, 12
	if l == domain.LevelAdvanced {
		sets = 4
	}
	if g == domain.GoalBuildMuscle {
		reps = 8
	}
	return sets, reps
}

// Filter applies the equipment, body-part and target restrictions of p.
func Filter(p Preferences, catalog []domain.Exercise) []domain.Exercise {
	equipment := strings.ToLower(strings.TrimSpace(p.Equipment))
	bodyParts := lowerSet(p.BodyParts)
	targets := lowerSet(p.Targets)
	if len(bodyParts) == 0 && len(targets) == 0 {
		bodyParts = lowerSet(GoalBodyParts(p.Goal))
	}

	var out []domain.Exercise
	for _, ex := range catalog {
		if equipment != "" && !strings.Contains(strings.ToLower(ex.Equipment), equipment) {
			continue
		}
		if len(bodyParts) > 0 && !bodyParts[strings.ToLower(ex.BodyPart)] {
			continue
		}
		if len(targets) > 0 && !targets[strings.ToLower(ex.Target)] {
			continue
		}
		out = append(out, ex)
	}
	return out
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = true
		}
	}
	return set
}

// Generate builds a plan of p.Days routines. Each day is an independent
// shuffle of the filtered catalog, so an exercise may appear on several
// days but never twice in one day. A small catalog yields short days, not
// an error. A nil rng uses a time-seeded source.
func Generate(p Preferences, catalog []domain.Exercise, rng *rand.Rand) (*domain.WorkoutPlan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>17))
	}

	pool := Filter(p, catalog)
	perDay := p.PerDay
	if perDay == 0 {
		perDay = ExercisesPerDay(p.Level)
	}
	sets, reps := Prescription(p.Level, p.Goal)

	plan := &domain.WorkoutPlan{
		Name:      PlanName,
		Goal:      p.Goal,
		Level:     p.Level,
		CreatedAt: time.Now(),
	}
	for d := range p.Days {
		shuffled := make([]domain.Exercise, len(pool))
		copy(shuffled, pool)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		used := make(map[string]bool, perDay)
		routine := domain.Routine{Day: fmt.Sprintf("Day %d", d+1), Exercises: []domain.PlannedExercise{}}
		for _, ex := range shuffled {
			if len(routine.Exercises) == perDay {
				break
			}
			if used[ex.ID] {
				continue
			}
			used[ex.ID] = true
			routine.Exercises = append(routine.Exercises, domain.PlannedExercise{
				ID:    ex.ID,
				Name:  ex.Name,
				Sets:  sets,
				Reps:  reps,
				Notes: ex.BodyPart + " | " + ex.Equipment,
			})
		}
		plan.Routines = append(plan.Routines, routine)
	}
	return plan, nil
}
