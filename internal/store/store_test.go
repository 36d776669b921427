package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/fitline/pkg/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMissingKey(t *testing.T) {
	db := openTestDB(t)

	var s string
	ok, err := db.Get("nope", &s)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutGetDelete(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Put("access_token", "a1"))
	require.NoError(t, db.Put("refresh_token", "r1"))

	var got string
	ok, err := db.Get("access_token", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a1", got)

	require.NoError(t, db.Put("access_token", "a2"))
	_, err = db.Get("access_token", &got)
	require.NoError(t, err)
	assert.Equal(t, "a2", got)

	require.NoError(t, db.Delete("access_token", "refresh_token", "never-written"))
	ok, err = db.Get("access_token", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.Put("entitlement", domain.Entitlement{IsPremium: true}))
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()

	var e domain.Entitlement
	ok, err := db.Get("entitlement", &e)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, e.IsPremium)
}

func TestNewerSchemaVersionRejected(t *testing.T) {
	db := openTestDB(t)

	_, err := db.db.Exec(`INSERT INTO documents (key, body) VALUES (?, ?)`,
		workoutPlanKey, `{"version":99,"data":{"name":"future"}}`)
	require.NoError(t, err)

	var p domain.WorkoutPlan
	_, err = db.Get(workoutPlanKey, &p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersion))
}

func TestNotes(t *testing.T) {
	db := openTestDB(t)

	_, err := db.AddNote("   ")
	require.Error(t, err)

	first, err := db.AddNote("squats felt heavy")
	require.NoError(t, err)
	_, err = db.AddNote("  deadlift PR  ")
	require.NoError(t, err)

	notes, err := db.Notes()
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "deadlift PR", notes[1].Text)

	require.NoError(t, db.DeleteNote(first.ID))
	notes, err = db.Notes()
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "deadlift PR", notes[0].Text)
}

func TestCalorieEntries(t *testing.T) {
	db := openTestDB(t)

	_, err := db.AddCalorieEntry(domain.CalorieEntry{Food: ""})
	require.Error(t, err)
	_, err = db.AddCalorieEntry(domain.CalorieEntry{Food: "oats", Calories: -1})
	require.Error(t, err)

	now := time.Now()
	_, err = db.AddCalorieEntry(domain.CalorieEntry{Food: "oats", Calories: 300, Protein: 10})
	require.NoError(t, err)
	_, err = db.AddCalorieEntry(domain.CalorieEntry{Food: "eggs", Calories: 150, Protein: 12})
	require.NoError(t, err)
	_, err = db.AddCalorieEntry(domain.CalorieEntry{Food: "pizza", Calories: 800, LoggedAt: now.AddDate(0, 0, -1)})
	require.NoError(t, err)

	entries, err := db.CalorieEntries()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	total := domain.CalorieTotals(entries, now)
	assert.InDelta(t, 450, total.Calories, 0.001)
	assert.InDelta(t, 22, total.Protein, 0.001)
}

func TestWorkoutPlanRoundTrip(t *testing.T) {
	db := openTestDB(t)

	p, err := db.WorkoutPlan()
	require.NoError(t, err)
	assert.Nil(t, p)

	plan := &domain.WorkoutPlan{
		Name:  "Personalized Plan",
		Goal:  domain.GoalLoseFat,
		Level: domain.LevelBeginner,
		Routines: []domain.Routine{
			{Day: "Day 1", Exercises: []domain.PlannedExercise{{ID: "0001", Name: "burpee", Sets: 3, Reps: 12}}},
		},
	}
	require.NoError(t, db.SaveWorkoutPlan(plan))

	got, err := db.WorkoutPlan()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, plan.Routines, got.Routines)
	assert.Equal(t, domain.GoalLoseFat, got.Goal)
}
