// internal/match/queue.go
//
// FIFO pairing queue for two-player matches. The first waiting player is
// paired with the next arrival; no skill matching, no re-ordering.

package match

import "sync"

// Conn is the transport a queued player is reachable on.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Player is one queued or matched participant.
type Player struct {
	ID   string
	Name string
	Conn Conn
}

// Queue pairs players first-in-first-out.
type Queue struct {
	mu      sync.Mutex
	waiting []*Player
	onPair  func(a, b *Player)
}

// NewQueue constructs a Queue; onPair is invoked (on the enqueuer's
// goroutine) whenever two players are matched.
func NewQueue(onPair func(a, b *Player)) *Queue {
	return &Queue{onPair: onPair}
}

// Enqueue adds p to the queue, pairing immediately when a partner waits.
func (q *Queue) Enqueue(p *Player) {
	q.mu.Lock()
	if len(q.waiting) == 0 {
		q.waiting = append(q.waiting, p)
		q.mu.Unlock()
		return
	}
	partner := q.waiting[0]
	q.waiting = q.waiting[1:]
	q.mu.Unlock()

	if q.onPair != nil {
		q.onPair(partner, p)
	}
}

// Remove takes a player out of the queue (disconnect before pairing).
// Returns true if the player was still waiting.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, p := range q.waiting {
		if p.ID == id {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return true
		}
	}
	return false
}

// Waiting reports the queue depth.
func (q *Queue) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}
