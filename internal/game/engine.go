// internal/game/engine.go
//
// The round engine: sequences rounds, races the countdown against the
// asynchronous dictionary verdict, chains endpoint words between rounds,
// applies scoring, and decides entry into and exit from the bonus phase.
//
// Race discipline:
//   - A submission cancels the countdown before evaluating; if the cancel
//     loses (the clock already expired) the submission is discarded.
//   - Every round carries a generation ticket. Timer expiry and late
//     verdicts check the ticket before committing, so a round commits
//     exactly one Outcome.
//   - All state mutation happens under one mutex; the only blocking work
//     (the dictionary lookup) runs outside it with the clock frozen and
//     a resolving flag excluding concurrent submissions.
//
// Chaining: a solved round's answer becomes the next start word; a
// timed-out or skipped round keeps its start word. The end word is drawn
// fresh from the word source — or, in synchronized (two-player) mode,
// supplied externally via FeedPuzzle.

package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// WordSource supplies endpoint words. Implemented by words.Selector.
type WordSource interface {
	Pick(count, roundNumber int, previous []string) []string
}

// Expected engine refusals. These are verdicts, not faults.
var (
	ErrAlreadyStarted  = errors.New("game already started")
	ErrNotActive       = errors.New("no active round")
	ErrBusy            = errors.New("a submission is already being evaluated")
	ErrTooLate         = errors.New("round already resolved")
	ErrSkipUnavailable = errors.New("skip is not available in the bonus phase")
	ErrAwaitingPuzzle  = errors.New("waiting for a synchronized puzzle")
	ErrNotSynchronized = errors.New("engine is not in synchronized mode")
)

// recentWordWindow bounds the no-repeat history fed to the word source.
const recentWordWindow = 20

// Engine drives a single game session.
type Engine struct {
	mu sync.Mutex

	id        string
	phase     Phase
	sess      Session
	round     Round
	gen       uint64
	resolving bool

	timer     *Countdown
	source    WordSource
	validator *Validator
	recent    []string

	synced       bool
	awaitingFeed bool
	chainStart   string

	sink        EventSink
	pending     []Event
	durationFor func(level int) time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink registers the event subscriber.
func WithSink(s EventSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithSynchronized puts the engine in two-player synchronized mode:
// puzzles arrive via FeedPuzzle instead of the word source.
func WithSynchronized() Option {
	return func(e *Engine) { e.synced = true }
}

// WithDurationFunc overrides the level → round duration mapping (tests).
func WithDurationFunc(f func(level int) time.Duration) Option {
	return func(e *Engine) { e.durationFor = f }
}

// NewEngine constructs an idle engine.
func NewEngine(source WordSource, validator *Validator, opts ...Option) *Engine {
	e := &Engine{
		id:          randomID(),
		phase:       PhaseNotStarted,
		timer:       NewCountdown(),
		source:      source,
		validator:   validator,
		durationFor: DurationForLevel,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ID returns the session identifier.
func (e *Engine) ID() string { return e.id }

// Snapshot is a point-in-time view of the engine for callers.
type Snapshot struct {
	ID         string        `json:"sessionId"`
	Phase      Phase         `json:"phase"`
	Session    Session       `json:"session"`
	RoundIndex int           `json:"round"`
	Puzzle     Puzzle        `json:"puzzle"`
	TimeBudget time.Duration `json:"-"`
	Remaining  time.Duration `json:"-"`

	BudgetSeconds    float64 `json:"timeBudgetSeconds"`
	RemainingSeconds float64 `json:"remainingSeconds"`
}

// SubmitResult reports the verdict and resulting state for one submission.
type SubmitResult struct {
	Validation ValidationResult `json:"validation"`
	Awarded    int              `json:"awarded"`
	Snapshot   Snapshot         `json:"state"`
}

// Start resets the session to defaults and begins the first round.
// Valid only once per engine.
func (e *Engine) Start() (Snapshot, error) {
	e.mu.Lock()
	if e.phase != PhaseNotStarted {
		e.mu.Unlock()
		return Snapshot{}, ErrAlreadyStarted
	}
	e.sess = Session{
		Level:           1,
		RoundsRemaining: TotalRounds,
	}
	e.phase = PhaseRound

	if e.synced {
		e.awaitingFeed = true
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, nil
	}

	pair := e.source.Pick(2, 1, nil)
	if len(pair) < 2 {
		e.mu.Unlock()
		return Snapshot{}, errors.New("word source returned no opening puzzle")
	}
	e.beginRoundLocked(0, Puzzle{StartWord: pair[0], EndWord: pair[1]})
	snap := e.snapshotLocked()
	evs := e.takePendingLocked()
	e.mu.Unlock()

	e.emit(evs)
	return snap, nil
}

// Submit evaluates a candidate bridge word for the active round.
// The countdown is cancelled before evaluation; a submission that loses
// the race against expiry returns ErrTooLate and changes nothing.
func (e *Engine) Submit(ctx context.Context, candidate string) (SubmitResult, error) {
	e.mu.Lock()
	if e.sess.Terminal || (e.phase != PhaseRound && e.phase != PhaseBonus) {
		e.mu.Unlock()
		return SubmitResult{}, ErrNotActive
	}
	if e.awaitingFeed {
		e.mu.Unlock()
		return SubmitResult{}, ErrAwaitingPuzzle
	}
	if e.resolving {
		e.mu.Unlock()
		return SubmitResult{}, ErrBusy
	}

	remaining := e.timer.Remaining()
	if !e.timer.Cancel() {
		// The clock expired first; the timeout resolution owns this round.
		e.mu.Unlock()
		return SubmitResult{}, ErrTooLate
	}
	gen := e.gen
	puzzle := e.round.Puzzle
	e.resolving = true
	e.mu.Unlock()

	// Clock frozen, no timeout can race this verdict.
	verdict := e.validator.Validate(ctx, candidate, puzzle.StartWord, puzzle.EndWord)

	e.mu.Lock()
	e.resolving = false
	if e.sess.Terminal || gen != e.gen {
		// Superseded while evaluating; discard rather than double-apply.
		e.mu.Unlock()
		return SubmitResult{}, ErrTooLate
	}

	var awarded int
	if verdict.Valid {
		awarded = e.commitSolvedLocked(normalizeWord(candidate), remaining)
	} else {
		e.commitInvalidLocked(normalizeWord(candidate), remaining, gen)
	}

	res := SubmitResult{
		Validation: verdict,
		Awarded:    awarded,
		Snapshot:   e.snapshotLocked(),
	}
	evs := e.takePendingLocked()
	e.mu.Unlock()

	e.emit(evs)
	return res, nil
}

// Skip resolves the active round as skipped: fixed score penalty, streak
// reset, chaining as for a timeout. Unavailable in the bonus phase.
func (e *Engine) Skip() (Snapshot, error) {
	e.mu.Lock()
	if e.sess.Terminal || (e.phase != PhaseRound && e.phase != PhaseBonus) {
		e.mu.Unlock()
		return Snapshot{}, ErrNotActive
	}
	if e.phase == PhaseBonus {
		e.mu.Unlock()
		return Snapshot{}, ErrSkipUnavailable
	}
	if e.awaitingFeed {
		e.mu.Unlock()
		return Snapshot{}, ErrAwaitingPuzzle
	}
	if e.resolving {
		e.mu.Unlock()
		return Snapshot{}, ErrBusy
	}
	if !e.timer.Cancel() {
		e.mu.Unlock()
		return Snapshot{}, ErrTooLate
	}

	e.sess.Score += SkipPenalty
	if e.sess.Score < 0 {
		e.sess.Score = 0
	}
	e.sess.Streak = 0
	e.round.Outcome = OutcomeSkipped
	e.pushEventLocked(EventPuzzleFailed, e.round.Puzzle.StartWord)
	e.advanceLocked(e.round.Puzzle.StartWord, false)

	snap := e.snapshotLocked()
	evs := e.takePendingLocked()
	e.mu.Unlock()

	e.emit(evs)
	return snap, nil
}

// FeedPuzzle supplies the next round's endpoints in synchronized mode.
func (e *Engine) FeedPuzzle(startWord, endWord string) (Snapshot, error) {
	e.mu.Lock()
	if !e.synced {
		e.mu.Unlock()
		return Snapshot{}, ErrNotSynchronized
	}
	if e.sess.Terminal {
		e.mu.Unlock()
		return Snapshot{}, ErrNotActive
	}
	if !e.awaitingFeed {
		e.mu.Unlock()
		return Snapshot{}, ErrBusy
	}
	start := normalizeWord(startWord)
	if e.chainStart != "" && start != e.chainStart {
		// The relay is authoritative for synchronized chains; note the
		// divergence but follow the supplied puzzle.
		log.Debug().Str("session", e.id).Str("local", e.chainStart).Str("fed", start).Msg("synchronized chain diverged")
	}
	e.awaitingFeed = false
	idx := 0
	if e.round.Outcome != "" || e.round.Puzzle.StartWord != "" {
		idx = e.round.Index + 1
	}
	e.beginRoundLocked(idx, Puzzle{
		StartWord: start,
		EndWord:   normalizeWord(endWord),
	})
	snap := e.snapshotLocked()
	evs := e.takePendingLocked()
	e.mu.Unlock()

	e.emit(evs)
	return snap, nil
}

// Snapshot returns the current engine view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Stop cancels any running countdown. The engine stays inspectable.
func (e *Engine) Stop() {
	e.timer.Cancel()
}

// ----------------------------- internals -----------------------------

// onTimeout is the countdown callback for round generation gen.
func (e *Engine) onTimeout(gen uint64) {
	e.mu.Lock()
	if e.sess.Terminal || e.resolving || gen != e.gen {
		// A submission won the race, or the round already advanced.
		e.mu.Unlock()
		return
	}
	e.sess.Streak = 0
	e.round.Outcome = OutcomeTimedOut
	e.pushEventLocked(EventPuzzleFailed, e.round.Puzzle.StartWord)
	e.advanceLocked(e.round.Puzzle.StartWord, false)
	evs := e.takePendingLocked()
	e.mu.Unlock()

	e.emit(evs)
}

// commitSolvedLocked applies a valid submission and advances the chain.
// Returns the points awarded.
func (e *Engine) commitSolvedLocked(word string, remaining time.Duration) int {
	e.sess.Solved++
	e.sess.Streak++

	// The level in effect when the word was submitted scores this solve;
	// a level-up earned here applies from the next round on.
	levelAtSolve := e.sess.Level
	if e.sess.Solved%LevelUpThreshold == 0 {
		e.sess.Level++
	}

	pts := Points(
		int(remaining/time.Second),
		int(e.round.TimeBudget/time.Second),
		e.sess.Streak,
		levelAtSolve,
	)
	e.sess.Score += pts
	e.round.Outcome = OutcomeSolved
	e.pushEventLocked(EventPuzzleSolved, word)
	e.advanceLocked(word, true)
	return pts
}

// commitInvalidLocked applies an invalid submission: streak reset, and
// either bonus-phase game over or a resumed countdown on the same round.
func (e *Engine) commitInvalidLocked(word string, remaining time.Duration, gen uint64) {
	e.sess.Streak = 0
	e.pushEventLocked(EventPuzzleFailed, word)
	if e.sess.BonusPhase {
		e.gameOverLocked()
		return
	}
	// Same round, same generation: resume the frozen clock.
	e.timer.Start(remaining, func() { e.onTimeout(gen) })
}

// advanceLocked applies the round-budget rule and starts the next round
// (or ends the game). nextStart is the chain word for the next round.
func (e *Engine) advanceLocked(nextStart string, success bool) {
	switch {
	case e.sess.BonusPhase:
		if !success {
			e.gameOverLocked()
			return
		}
	case e.sess.RoundsRemaining == 1:
		if !success {
			e.gameOverLocked()
			return
		}
		// Perfect finish of the regular budget: unlimited bonus rounds.
		e.sess.BonusPhase = true
		e.sess.RoundsRemaining = 0
		e.phase = PhaseBonus
		log.Debug().Str("session", e.id).Msg("entering bonus phase")
	default:
		e.sess.RoundsRemaining--
	}

	e.gen++
	nextIndex := e.round.Index + 1

	if e.synced {
		e.awaitingFeed = true
		e.chainStart = nextStart
		return
	}

	end := e.drawEndpointLocked(nextStart)
	e.beginRoundLocked(nextIndex, Puzzle{StartWord: nextStart, EndWord: end})
}

// beginRoundLocked installs a round and starts its countdown.
func (e *Engine) beginRoundLocked(index int, p Puzzle) {
	e.round = Round{
		Index:      index,
		Puzzle:     p,
		TimeBudget: e.durationFor(e.sess.Level),
	}
	e.rememberLocked(p.StartWord, p.EndWord)

	gen := e.gen
	e.timer.Start(e.round.TimeBudget, func() { e.onTimeout(gen) })
	e.pending = append(e.pending, Event{
		Type:      EventRoundStart,
		SessionID: e.id,
		Round:     index,
		Puzzle:    p,
		Score:     e.sess.Score,
		Streak:    e.sess.Streak,
		Level:     e.sess.Level,
		Bonus:     e.sess.BonusPhase,
	})
}

// drawEndpointLocked picks a fresh end word, avoiding recent words and
// the chained start word.
func (e *Engine) drawEndpointLocked(start string) string {
	previous := append(append([]string{}, e.recent...), start)
	picked := e.source.Pick(1, e.round.Index+2, previous)
	if len(picked) == 0 {
		// The selector's own fallback makes this unreachable unless the
		// corpus is empty, which aborts at startup.
		return start
	}
	return picked[0]
}

// gameOverLocked is the one-way terminal transition.
func (e *Engine) gameOverLocked() {
	e.sess.Terminal = true
	e.phase = PhaseGameOver
	e.timer.Cancel()
	e.pushEventLocked(EventGameOver, "")
	log.Debug().Str("session", e.id).Int("score", e.sess.Score).Msg("game over")
}

// rememberLocked records words in the bounded no-repeat window.
func (e *Engine) rememberLocked(ws ...string) {
	e.recent = append(e.recent, ws...)
	if n := len(e.recent); n > recentWordWindow {
		e.recent = e.recent[n-recentWordWindow:]
	}
}

func (e *Engine) pushEventLocked(t EventType, word string) {
	e.pending = append(e.pending, Event{
		Type:      t,
		SessionID: e.id,
		Round:     e.round.Index,
		Word:      word,
		Score:     e.sess.Score,
		Streak:    e.sess.Streak,
		Level:     e.sess.Level,
		Bonus:     e.sess.BonusPhase,
	})
}

func (e *Engine) takePendingLocked() []Event {
	evs := e.pending
	e.pending = nil
	return evs
}

func (e *Engine) emit(evs []Event) {
	if e.sink == nil {
		return
	}
	for _, ev := range evs {
		e.sink(ev)
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	remaining := e.timer.Remaining()
	return Snapshot{
		ID:               e.id,
		Phase:            e.phase,
		Session:          e.sess,
		RoundIndex:       e.round.Index,
		Puzzle:           e.round.Puzzle,
		TimeBudget:       e.round.TimeBudget,
		Remaining:        remaining,
		BudgetSeconds:    e.round.TimeBudget.Seconds(),
		RemainingSeconds: remaining.Seconds(),
	}
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
