package domain

// Goal is a member's training goal.
type Goal string

const (
	GoalBuildMuscle      Goal = "build_muscle"
	GoalLoseFat          Goal = "lose_fat"
	GoalIncreaseStrength Goal = "increase_strength"
	GoalGeneralFitness   Goal = "general_fitness"
)

// Level is a member's experience level.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Goals lists the valid goals in display order.
var Goals = []Goal{GoalBuildMuscle, GoalLoseFat, GoalIncreaseStrength, GoalGeneralFitness}

// Levels lists the valid levels in display order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Valid reports whether g is a known goal.
func (g Goal) Valid() bool {
	for _, v := range Goals {
		if v == g {
			return true
		}
	}
	return false
}

// Label renders the goal for humans ("build muscle").
func (g Goal) Label() string {
	switch g {
	case GoalBuildMuscle:
		return "build muscle"
	case GoalLoseFat:
		return "lose fat"
	case GoalIncreaseStrength:
		return "increase strength"
	case GoalGeneralFitness:
		return "general fitness"
	}
	return string(g)
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	for _, v := range Levels {
		if v == l {
			return true
		}
	}
	return false
}
