// Package buildup advances the goal-ramp state of build-up habits. The
// transitions are pure: they take a config value and return the next state
// without touching the input.
package buildup

import "github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"

// Complete applies one true completion to the ramp: the streak grows, and on
// reaching DaysForIncrement the current value steps up (clamped to the goal)
// while the streak resets to 0.
func Complete(cfg domain.BuildUpConfig) domain.BuildUpConfig {
	next := cfg
	next.CurrentStreak++

	if next.CurrentStreak >= next.DaysForIncrement {
		next.CurrentValue += next.IncrementValue
		if next.CurrentValue > next.GoalValue {
			next.CurrentValue = next.GoalValue
		}
		next.CurrentStreak = 0
	}
	return next
}

// Uncomplete applies marking a previously-done day as not done: the streak
// resets, but value increments already granted are kept. The asymmetry is
// specified behavior, not an oversight.
func Uncomplete(cfg domain.BuildUpConfig) domain.BuildUpConfig {
	next := cfg
	next.CurrentStreak = 0
	return next
}

// AtGoal reports whether the ramp has reached its goal value.
func AtGoal(cfg domain.BuildUpConfig) bool {
	return cfg.CurrentValue >= cfg.GoalValue
}
