package domain

// User is the authenticated member's profile.
type User struct {
	ID              int    `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	FitnessGoal     Goal   `json:"fitness_goal"`
	ExperienceLevel Level  `json:"experience_level"`
}

// UserStats is the dashboard summary returned by /user/stats/.
type UserStats struct {
	TotalWorkouts  int     `json:"total_workouts"`
	CurrentStreak  int     `json:"current_streak"`
	TotalCalories  float64 `json:"total_calories"`
	TotalMinutes   int     `json:"total_minutes"`
	PersonalBests  int     `json:"personal_bests"`
	WorkoutsThisWk int     `json:"workouts_this_week"`
}

// AccountStatus is the entitlement status returned by /account/status/.
type AccountStatus struct {
	IsPremium bool `json:"is_premium"`
}
