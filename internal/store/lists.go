package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/naveenspark/fitline/pkg/domain"
)

// Notes returns the saved workout notes, newest last.
func (s *DB) Notes() ([]domain.Note, error) {
	var notes []domain.Note
	if _, err := s.Get(notesKey, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// AddNote appends a note and returns it.
func (s *DB) AddNote(text string) (domain.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Note{}, fmt.Errorf("store.AddNote: empty note")
	}
	notes, err := s.Notes()
	if err != nil {
		return domain.Note{}, err
	}
	n := domain.Note{ID: uuid.New(), Text: text, CreatedAt: time.Now()}
	notes = append(notes, n)
	if err := s.Put(notesKey, notes); err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

// DeleteNote removes a note by ID. Unknown IDs are ignored.
func (s *DB) DeleteNote(id uuid.UUID) error {
	notes, err := s.Notes()
	if err != nil {
		return err
	}
	kept := notes[:0]
	for _, n := range notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	return s.Put(notesKey, kept)
}

// CalorieEntries returns the saved calorie-tracker entries.
func (s *DB) CalorieEntries() ([]domain.CalorieEntry, error) {
	var entries []domain.CalorieEntry
	if _, err := s.Get(caloriesKey, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddCalorieEntry appends an entry, assigning its ID and timestamp when unset.
func (s *DB) AddCalorieEntry(e domain.CalorieEntry) (domain.CalorieEntry, error) {
	if strings.TrimSpace(e.Food) == "" {
		return domain.CalorieEntry{}, fmt.Errorf("store.AddCalorieEntry: food is required")
	}
	if e.Calories < 0 {
		return domain.CalorieEntry{}, fmt.Errorf("store.AddCalorieEntry: calories must not be negative")
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.LoggedAt.IsZero() {
		e.LoggedAt = time.Now()
	}
	entries, err := s.CalorieEntries()
	if err != nil {
		return domain.CalorieEntry{}, err
	}
	entries = append(entries, e)
	if err := s.Put(caloriesKey, entries); err != nil {
		return domain.CalorieEntry{}, err
	}
	return e, nil
}

// WorkoutPlan returns the cached plan, or nil when none has been generated.
func (s *DB) WorkoutPlan() (*domain.WorkoutPlan, error) {
	var p domain.WorkoutPlan
	ok, err := s.Get(workoutPlanKey, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// SaveWorkoutPlan replaces the cached plan.
func (s *DB) SaveWorkoutPlan(p *domain.WorkoutPlan) error {
	return s.Put(workoutPlanKey, p)
}
