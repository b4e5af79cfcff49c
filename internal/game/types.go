// internal/game/types.go
//
// Core type definitions for the word-bridge round engine.
// Defines:
//   - Puzzle: the two endpoint words of a round.
//   - Outcome: how a round ended (solved/timed-out/skipped).
//   - Phase: coarse engine state (not started/active/bonus/over).
//   - Session: game-wide counters owned by the engine.
//   - ValidationReason / ValidationResult: verdicts from the validator.
// Tuning constants for the whole game live at the bottom.

package game

import "time"

// WordLength is the fixed length of every endpoint and bridge word.
const WordLength = 5

// Puzzle holds the two endpoint words of a round.
// Both are exactly five uppercase letters and immutable once assigned;
// advancing the round replaces the Puzzle wholesale.
type Puzzle struct {
	StartWord string `json:"startWord"`
	EndWord   string `json:"endWord"`
}

// Outcome is the terminal result of a round. A round commits at most one.
type Outcome string

const (
	OutcomeSolved   Outcome = "solved"
	OutcomeTimedOut Outcome = "timed_out"
	OutcomeSkipped  Outcome = "skipped"
)

// Phase is the engine's coarse state.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseRound      Phase = "round_active"
	PhaseBonus      Phase = "bonus_active"
	PhaseGameOver   Phase = "game_over"
)

// Round is the unit the engine sequences. Index starts at 0.
type Round struct {
	Index      int
	Puzzle     Puzzle
	TimeBudget time.Duration
	Outcome    Outcome // empty until committed
}

// Session aggregates game-wide state. The engine owns it exclusively.
type Session struct {
	Score           int  `json:"score"`
	Streak          int  `json:"streak"`
	Solved          int  `json:"solved"`
	Level           int  `json:"level"`
	RoundsRemaining int  `json:"roundsRemaining"`
	BonusPhase      bool `json:"bonusPhase"`
	Terminal        bool `json:"terminal"`
}

// ValidationReason explains why a candidate was rejected.
type ValidationReason string

const (
	ReasonNone                ValidationReason = ""
	ReasonWrongLength         ValidationReason = "wrong_length"
	ReasonEqualsEndpoint      ValidationReason = "equals_endpoint"
	ReasonNotAWord            ValidationReason = "not_a_word"
	ReasonInsufficientOverlap ValidationReason = "insufficient_overlap"
)

// ValidationResult is the verdict for a single candidate word.
type ValidationResult struct {
	Valid  bool             `json:"valid"`
	Reason ValidationReason `json:"reason,omitempty"`
}

// Game tuning constants.
const (
	// TotalRounds is the regular round budget before the bonus phase.
	TotalRounds = 10

	// MinSharedLetters is the overlap a bridge word needs with each endpoint.
	MinSharedLetters = 2

	// MaxStreakMultiplier caps the scoring streak multiplier.
	MaxStreakMultiplier = 10

	// LevelUpThreshold is the number of solves per level.
	LevelUpThreshold = 5

	// SkipPenalty is applied to the session score on an explicit skip.
	SkipPenalty = -50

	// BaseRoundSeconds and MinRoundSeconds bound the per-round countdown.
	BaseRoundSeconds = 30
	MinRoundSeconds  = 15
)

// DurationForLevel derives the round time budget from the player level:
// max(15, 30 - floor(level/3)) seconds.
func DurationForLevel(level int) time.Duration {
	secs := BaseRoundSeconds - level/3
	if secs < MinRoundSeconds {
		secs = MinRoundSeconds
	}
	return time.Duration(secs) * time.Second
}
