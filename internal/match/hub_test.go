package match

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func decodeMatched(t *testing.T, raw []byte) matchedData {
	t.Helper()
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if msg.Type != TypeMatched {
		t.Fatalf("type=%q, want matched", msg.Type)
	}
	var md matchedData
	if err := json.Unmarshal(msg.Data, &md); err != nil {
		t.Fatalf("unmarshal matched data: %v", err)
	}
	return md
}

func pairedHub(t *testing.T) (*Hub, *Player, *fakeConn, *Player, *fakeConn) {
	t.Helper()
	h := NewHub()
	a, ca := newFakePlayer("pa", "alice")
	b, cb := newFakePlayer("pb", "bob")
	h.queue.Enqueue(a)
	h.queue.Enqueue(b)
	return h, a, ca, b, cb
}

func TestHubPairNotifiesBothSides(t *testing.T) {
	_, _, ca, _, cb := pairedHub(t)

	fa, fb := ca.frames(), cb.frames()
	if len(fa) != 1 || len(fb) != 1 {
		t.Fatalf("frames=%d/%d, want 1/1", len(fa), len(fb))
	}
	ma := decodeMatched(t, fa[0])
	mb := decodeMatched(t, fb[0])

	if ma.MatchID == "" || ma.MatchID != mb.MatchID {
		t.Fatalf("match IDs %q / %q, want one shared non-empty ID", ma.MatchID, mb.MatchID)
	}
	if !ma.Host || mb.Host {
		t.Fatalf("host flags %v/%v, want first arrival hosting", ma.Host, mb.Host)
	}
	if ma.Opponent != "bob" || mb.Opponent != "alice" {
		t.Fatalf("opponents %q/%q, want crossed names", ma.Opponent, mb.Opponent)
	}
}

func TestHubRelayForwardsVerbatim(t *testing.T) {
	h, a, _, _, cb := pairedHub(t)

	raw := []byte(`{"type":"round_start","data":{"startWord":"TOWER","endWord":"BEACH"}}`)
	h.relay(a, Message{Type: TypeRoundStart}, raw)

	fb := cb.frames()
	if len(fb) != 2 {
		t.Fatalf("peer got %d frames, want matched + relayed", len(fb))
	}
	if string(fb[1]) != string(raw) {
		t.Fatalf("relayed frame altered:\n got %s\nwant %s", fb[1], raw)
	}
}

func TestHubMatchCompletedEndsMatch(t *testing.T) {
	h, a, _, b, cb := pairedHub(t)

	raw := []byte(`{"type":"match_completed"}`)
	h.relay(a, Message{Type: TypeMatchCompleted}, raw)

	if got := h.peerOf(a.ID); got != nil {
		t.Fatalf("peerOf still returns %v after match completed", got.ID)
	}
	if got := h.peerOf(b.ID); got != nil {
		t.Fatalf("peer side still matched after completion")
	}

	// Further relays are dropped silently.
	before := len(cb.frames())
	h.relay(a, Message{Type: TypeRoundWon}, []byte(`{"type":"round_won"}`))
	if got := len(cb.frames()); got != before {
		t.Fatalf("relay after completion delivered a frame")
	}
}

func TestHubDropNotifiesAndClosesPeer(t *testing.T) {
	h, a, ca, _, cb := pairedHub(t)

	h.dropPlayer(a)

	if !ca.isClosed() {
		t.Fatalf("dropped player's connection not closed")
	}
	if !cb.isClosed() {
		t.Fatalf("peer connection not closed")
	}
	fb := cb.frames()
	last := fb[len(fb)-1]
	var msg Message
	if err := json.Unmarshal(last, &msg); err != nil || msg.Type != TypeMatchCompleted {
		t.Fatalf("peer's final frame %s, want match_completed notice", last)
	}
}

func TestHubWebSocketMatchAndRelay(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	dial := func(name string) *websocket.Conn {
		t.Helper()
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("dial %s: %v", name, err)
		}
		hello := []byte(`{"type":"hello","data":{"name":"` + name + `"}}`)
		if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
			t.Fatalf("hello %s: %v", name, err)
		}
		return conn
	}
	readMsg := func(conn *websocket.Conn) []byte {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		return raw
	}

	c1 := dial("alice")
	defer c1.Close()

	// Make sure alice is queued before bob arrives, so she hosts.
	deadline := time.Now().Add(3 * time.Second)
	for h.queue.Waiting() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first player never queued")
		}
		time.Sleep(5 * time.Millisecond)
	}

	c2 := dial("bob")
	defer c2.Close()

	m1 := decodeMatched(t, readMsg(c1))
	m2 := decodeMatched(t, readMsg(c2))
	if !m1.Host || m2.Host {
		t.Fatalf("host flags %v/%v, want alice hosting", m1.Host, m2.Host)
	}
	if m1.Opponent != "bob" || m2.Opponent != "alice" {
		t.Fatalf("opponents %q/%q", m1.Opponent, m2.Opponent)
	}

	// The host drives rounds; the payload must arrive untouched.
	round := []byte(`{"type":"round_start","data":{"startWord":"TOWER","endWord":"BEACH"}}`)
	if err := c1.WriteMessage(websocket.TextMessage, round); err != nil {
		t.Fatalf("send round_start: %v", err)
	}
	if got := readMsg(c2); string(got) != string(round) {
		t.Fatalf("relayed frame altered:\n got %s\nwant %s", got, round)
	}
}
