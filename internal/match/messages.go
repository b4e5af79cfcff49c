package match

import "encoding/json"

// Message is the opaque relay envelope. The server inspects Type only for
// match lifecycle; Data passes through untouched.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message types with relay-side meaning. Anything else is forwarded as-is.
const (
	TypeMatched        = "matched"
	TypeRoundStart     = "round_start"
	TypeRoundWon       = "round_won"
	TypeMatchCompleted = "match_completed"
)

// matchedData is sent to both players when a pair forms.
type matchedData struct {
	MatchID  string `json:"matchId"`
	Opponent string `json:"opponent"`
	Host     bool   `json:"host"`
}
