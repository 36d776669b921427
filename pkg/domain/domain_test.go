package domain

import (
	"testing"
	"time"
)

func TestGoalValid(t *testing.T) {
	tests := []struct {
		name  string
		goal  Goal
		valid bool
	}{
		{"build muscle", GoalBuildMuscle, true},
		{"lose fat", GoalLoseFat, true},
		{"strength", GoalIncreaseStrength, true},
		{"general", GoalGeneralFitness, true},
		{"empty", "", false},
		{"unknown", "get_huge", false},
		{"label form", "build muscle", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.goal.Valid(); got != tt.valid {
				t.Errorf("Goal(%q).Valid() = %v, want %v", tt.goal, got, tt.valid)
			}
		})
	}
}

func TestGoalLabel(t *testing.T) {
	if got := GoalIncreaseStrength.Label(); got != "increase strength" {
		t.Errorf("Label() = %q", got)
	}
	if got := Goal("yoga").Label(); got != "yoga" {
		t.Errorf("unknown goal Label() = %q, want raw value", got)
	}
}

func TestLevelValid(t *testing.T) {
	for _, l := range Levels {
		if !l.Valid() {
			t.Errorf("Level(%q).Valid() = false", l)
		}
	}
	if Level("expert").Valid() {
		t.Error("expert should not be a valid level")
	}
}

func TestCalorieTotals(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, loc)
	entries := []CalorieEntry{
		{Food: "oats", Calories: 300, Protein: 10, Carbs: 50, LoggedAt: time.Date(2026, 3, 10, 7, 0, 0, 0, loc)},
		{Food: "eggs", Calories: 150, Protein: 12, Fat: 10, LoggedAt: time.Date(2026, 3, 10, 20, 0, 0, 0, loc)},
		// 23:30 UTC on the 9th is 01:30 on the 10th in loc.
		{Food: "late snack", Calories: 100, LoggedAt: time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)},
		{Food: "yesterday", Calories: 900, LoggedAt: time.Date(2026, 3, 9, 12, 0, 0, 0, loc)},
	}

	got := CalorieTotals(entries, day)
	if got.Calories != 550 {
		t.Errorf("Calories = %v, want 550", got.Calories)
	}
	if got.Protein != 22 || got.Fat != 10 || got.Carbs != 50 {
		t.Errorf("macros = P%v F%v C%v, want P22 F10 C50", got.Protein, got.Fat, got.Carbs)
	}
}

func TestActivityWhen(t *testing.T) {
	a := Activity{Time: "2026-03-10T08:00:00Z"}
	if want := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC); !a.When().Equal(want) {
		t.Errorf("When() = %v, want %v", a.When(), want)
	}
	if !(Activity{Time: "2 hours ago"}).When().IsZero() {
		t.Error("non-timestamp Time should give the zero time")
	}
}

func TestExerciseCount(t *testing.T) {
	p := &WorkoutPlan{Routines: []Routine{
		{Day: "Day 1", Exercises: make([]PlannedExercise, 4)},
		{Day: "Day 2"},
		{Day: "Day 3", Exercises: make([]PlannedExercise, 2)},
	}}
	if got := p.ExerciseCount(); got != 6 {
		t.Errorf("ExerciseCount() = %d, want 6", got)
	}
}
