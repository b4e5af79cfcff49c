// internal/game/score.go
//
// Scoring for a solved round. Pure and total: no failure modes, all
// inputs are clamped to be non-negative.
//
// Formula:
//   points = (100 + timeBonus + speedBonus + levelBonus) × streakMultiplier
// where:
//   timeBonus        = remaining seconds × 10
//   speedBonus       = step function of remaining/initial (see speedBonus)
//   levelBonus       = level × 5
//   streakMultiplier = min(streak, MaxStreakMultiplier), streak counted
//                      after incrementing for the current success.

package game

const basePoints = 100

// Points computes the score awarded for a solved round.
func Points(remainingSec, initialSec, streak, level int) int {
	if remainingSec < 0 {
		remainingSec = 0
	}
	if streak < 1 {
		streak = 1
	}
	if level < 1 {
		level = 1
	}

	timeBonus := remainingSec * 10
	levelBonus := level * 5

	mult := streak
	if mult > MaxStreakMultiplier {
		mult = MaxStreakMultiplier
	}

	return (basePoints + timeBonus + speedBonus(remainingSec, initialSec) + levelBonus) * mult
}

// speedBonus rewards answering early in the round.
func speedBonus(remainingSec, initialSec int) int {
	if initialSec <= 0 {
		return 0
	}
	ratio := float64(remainingSec) / float64(initialSec)
	switch {
	case ratio >= 0.8:
		return 100
	case ratio >= 0.6:
		return 50
	case ratio >= 0.4:
		return 25
	default:
		return 0
	}
}
