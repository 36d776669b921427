package domain

import (
	"time"

	"github.com/google/uuid"
)

// Note is a free-text workout note kept on this machine.
type Note struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CalorieEntry is a calorie-tracker line kept on this machine.
type CalorieEntry struct {
	ID       uuid.UUID `json:"id"`
	Food     string    `json:"food"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein,omitempty"`
	Fat      float64   `json:"fat,omitempty"`
	Carbs    float64   `json:"carbs,omitempty"`
	LoggedAt time.Time `json:"logged_at"`
}

// CalorieTotals sums the macro columns of entries logged on day (local date).
func CalorieTotals(entries []CalorieEntry, day time.Time) CalorieEntry {
	var total CalorieEntry
	y, m, d := day.Date()
	for _, e := range entries {
		ey, em, ed := e.LoggedAt.In(day.Location()).Date()
		if ey != y || em != m || ed != d {
			continue
		}
		total.Calories += e.Calories
		total.Protein += e.Protein
		total.Fat += e.Fat
		total.Carbs += e.Carbs
	}
	return total
}

// Entitlement is the member's paid-feature state as last confirmed by the server.
type Entitlement struct {
	IsPremium        bool      `json:"is_premium"`
	PendingSessionID string    `json:"pending_session_id,omitempty"`
	VerifiedAt       time.Time `json:"verified_at,omitempty"`
}
