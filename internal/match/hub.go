// internal/match/hub.go
//
// WebSocket matchmaking hub and two-player relay.
//
// Flow:
//   - /ws/match upgrades the connection; the client sends {"type":"hello",
//     "data":{"name":...}} and enters the FIFO queue.
//   - When two players are queued they are paired: both receive "matched"
//     (the earlier arrival is host), and from then on every message from
//     one side is forwarded verbatim to the other (round_start, round_won,
//     match_completed, and anything else — the relay is an opaque channel).
//   - A disconnect or a match_completed message ends the match; the peer
//     is notified with match_completed and both connections close.
//
// The relay never interprets game state; synchronized engines on each end
// consume round_start endpoints themselves.

package match

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub owns the pairing queue and all live matches.
type Hub struct {
	mu      sync.Mutex
	queue   *Queue
	matches map[string]*liveMatch // keyed by match ID
	peers   map[string]*peer      // keyed by player ID
}

// liveMatch is one paired pair of peers.
type liveMatch struct {
	id   string
	a, b *peer
	done bool
}

// peer couples a Player with its match bookkeeping.
type peer struct {
	player  *Player
	matchID string
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	h := &Hub{
		matches: make(map[string]*liveMatch),
		peers:   make(map[string]*peer),
	}
	h.queue = NewQueue(h.pair)
	return h
}

// HandleWS is the chi handler for /ws/match.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := newWSConn(conn)

	name := readHello(conn)
	p := &Player{ID: newMatchID(), Name: name, Conn: c}
	h.queue.Enqueue(p)

	h.readLoop(conn, p)
}

// readLoop pumps inbound messages until the connection drops.
func (h *Hub) readLoop(conn *websocket.Conn, p *Player) {
	defer h.dropPlayer(p)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Debug().Err(err).Str("player", p.ID).Msg("dropping malformed relay message")
			continue
		}
		h.relay(p, msg, raw)
	}
}

// relay forwards a message to the sender's peer.
func (h *Hub) relay(from *Player, msg Message, raw []byte) {
	other := h.peerOf(from.ID)
	if other == nil {
		return
	}
	if err := other.Conn.Send(raw); err != nil {
		log.Debug().Err(err).Str("player", other.ID).Msg("relay send failed")
		h.dropPlayer(other)
		return
	}
	if msg.Type == TypeMatchCompleted {
		h.endMatchFor(from.ID, nil)
	}
}

// pair is the queue callback: registers a match and notifies both sides.
func (h *Hub) pair(a, b *Player) {
	id := newMatchID()
	pa := &peer{player: a, matchID: id}
	pb := &peer{player: b, matchID: id}

	h.mu.Lock()
	h.matches[id] = &liveMatch{id: id, a: pa, b: pb}
	h.peers[a.ID] = pa
	h.peers[b.ID] = pb
	h.mu.Unlock()

	log.Info().Str("match", id).Str("a", a.Name).Str("b", b.Name).Msg("paired players")
	sendMatched(a, id, b.Name, true) // FIFO head hosts: it drives round_start
	sendMatched(b, id, a.Name, false)
}

// peerOf returns the opposite player of a match, or nil.
func (h *Hub) peerOf(playerID string) *Player {
	h.mu.Lock()
	defer h.mu.Unlock()
	pe, ok := h.peers[playerID]
	if !ok {
		return nil
	}
	m, ok := h.matches[pe.matchID]
	if !ok || m.done {
		return nil
	}
	if m.a.player.ID == playerID {
		return m.b.player
	}
	return m.a.player
}

// dropPlayer handles disconnects: dequeue if still waiting, otherwise end
// the match and notify the peer.
func (h *Hub) dropPlayer(p *Player) {
	_ = p.Conn.Close()
	if h.queue.Remove(p.ID) {
		return
	}
	h.endMatchFor(p.ID, func(other *Player) {
		notice, _ := json.Marshal(Message{Type: TypeMatchCompleted})
		_ = other.Conn.Send(notice)
		_ = other.Conn.Close()
	})
}

// endMatchFor tears down the match containing playerID. onPeer, if set,
// runs for the remaining player before cleanup.
func (h *Hub) endMatchFor(playerID string, onPeer func(other *Player)) {
	h.mu.Lock()
	pe, ok := h.peers[playerID]
	if !ok {
		h.mu.Unlock()
		return
	}
	m := h.matches[pe.matchID]
	var other *Player
	if m != nil && !m.done {
		m.done = true
		if m.a.player.ID == playerID {
			other = m.b.player
		} else {
			other = m.a.player
		}
		delete(h.matches, m.id)
	}
	delete(h.peers, playerID)
	if other != nil {
		delete(h.peers, other.ID)
	}
	h.mu.Unlock()

	if other != nil && onPeer != nil {
		onPeer(other)
	}
}

// sendMatched notifies one player that a match formed.
func sendMatched(p *Player, matchID, opponent string, host bool) {
	data, _ := json.Marshal(matchedData{MatchID: matchID, Opponent: opponent, Host: host})
	raw, _ := json.Marshal(Message{Type: TypeMatched, Data: data})
	if err := p.Conn.Send(raw); err != nil {
		log.Debug().Err(err).Str("player", p.ID).Msg("matched notice failed")
	}
}

// readHello waits for the optional hello message carrying a display name.
func readHello(conn *websocket.Conn) string {
	type helloData struct {
		Name string `json:"name"`
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "hello" {
		return "anonymous"
	}
	var hd helloData
	if err := json.Unmarshal(msg.Data, &hd); err != nil || hd.Name == "" {
		return "anonymous"
	}
	return hd.Name
}

// wsConn adapts a gorilla connection to the Conn interface with a
// single-writer pump (gorilla allows one concurrent writer).
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSConn(c *websocket.Conn) *wsConn {
	return &wsConn{conn: c}
}

func (c *wsConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// newMatchID returns a compact 16-hex-char identifier.
func newMatchID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
