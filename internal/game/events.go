// internal/game/events.go
//
// Semantic events emitted by the round engine. Achievement, analytics,
// leaderboard, and relay collaborators subscribe to these; the engine
// never depends on a subscriber's completion or success.

package game

// EventType labels an engine event.
type EventType string

const (
	EventRoundStart   EventType = "round_start"
	EventPuzzleSolved EventType = "puzzle_solved"
	EventPuzzleFailed EventType = "puzzle_failed"
	EventGameOver     EventType = "game_over"
)

// Event carries the engine state relevant to one semantic occurrence.
// Fields beyond Type/SessionID/Round are populated where meaningful:
// Word for solved/failed, Puzzle for round_start, the counters always.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId"`
	Round     int       `json:"round"`
	Word      string    `json:"word,omitempty"`
	Puzzle    Puzzle    `json:"puzzle,omitempty"`
	Score     int       `json:"score"`
	Streak    int       `json:"streak"`
	Level     int       `json:"level"`
	Bonus     bool      `json:"bonus"`
}

// EventSink receives engine events. Sinks run on the caller's goroutine
// after engine state has been committed and the engine lock released, so
// reading the engine (Snapshot) from a sink is safe.
type EventSink func(Event)
