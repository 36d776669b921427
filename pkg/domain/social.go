package domain

import "time"

// WorkoutLog is one logged set of work.
type WorkoutLog struct {
	ID       int     `json:"id,omitempty"`
	Date     string  `json:"date,omitempty"` // YYYY-MM-DD, assigned by the server
	Exercise string  `json:"exercise"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	Weight   float64 `json:"weight,omitempty"`
	Calories float64 `json:"calories,omitempty"`
	Duration int     `json:"duration,omitempty"` // minutes
}

// Activity is an entry in the social activity feed.
type Activity struct {
	ID       int    `json:"id,omitempty"`
	Username string `json:"username"`
	Type     string `json:"type,omitempty"`
	Action   string `json:"action"`
	Time     string `json:"time,omitempty"` // RFC 3339 when the server sends a timestamp
	Likes    int    `json:"likes,omitempty"`
	Comments int    `json:"comments,omitempty"`
}

// When parses Time, returning the zero time when it is not a timestamp.
func (a Activity) When() time.Time {
	t, err := time.Parse(time.RFC3339, a.Time)
	if err != nil {
		return time.Time{}
	}
	return t
}

// LeaderboardEntry is a ranked member on the leaderboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Workouts int    `json:"workouts"`
	Streak   int    `json:"streak"`
}

// ChatReply is the premium coach's answer.
type ChatReply struct {
	Response string `json:"response"`
}
