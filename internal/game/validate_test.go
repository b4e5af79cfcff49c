package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// fakeDict is a scripted dictionary: words in valid are real, everything
// else is not. A non-nil err makes every lookup fail at transport level.
type fakeDict struct {
	mu    sync.Mutex
	valid map[string]bool
	err   error
	calls int
}

func newFakeDict(ws ...string) *fakeDict {
	d := &fakeDict{valid: make(map[string]bool)}
	for _, w := range ws {
		d.valid[strings.ToUpper(w)] = true
	}
	return d
}

func (d *fakeDict) IsValidWord(ctx context.Context, word string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return false, d.err
	}
	return d.valid[strings.ToUpper(word)], nil
}

func (d *fakeDict) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func TestOverlapSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"HEART", "SPACE"},
		{"PACER", "HEART"},
		{"TOWER", "BEACH"},
		{"JAZZY", "QUILT"},
		{"AAAAA", "ABABA"},
	}
	for _, p := range pairs {
		if got, want := Overlap(p[0], p[1]), Overlap(p[1], p[0]); got != want {
			t.Fatalf("overlap(%s,%s)=%d but overlap(%s,%s)=%d", p[0], p[1], got, p[1], p[0], want)
		}
	}
}

func TestOverlapMultisetRule(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"HEART", "SPACE", 2}, // A and E shared once each
		{"AAAAA", "ABABA", 3}, // min counts of A
		{"HEART", "HEART", 5},
		{"QUILT", "ZEBRA", 0},
	}
	for _, c := range cases {
		if got := Overlap(c.a, c.b); got != c.want {
			t.Fatalf("overlap(%s,%s)=%d, want %d", c.a, c.b, got, c.want)
		}
	}

	// The bridge example: PACER connects HEART and SPACE.
	if Overlap("PACER", "HEART") < MinSharedLetters {
		t.Fatalf("PACER/HEART overlap below threshold")
	}
	if Overlap("PACER", "SPACE") < MinSharedLetters {
		t.Fatalf("PACER/SPACE overlap below threshold")
	}
}

func TestValidateRejectsWrongLength(t *testing.T) {
	v := NewValidator(newFakeDict())
	res := v.Validate(context.Background(), "TOW", "TOWER", "BEACH")
	if res.Valid || res.Reason != ReasonWrongLength {
		t.Fatalf("got %+v, want wrong_length rejection", res)
	}
}

func TestValidateRejectsSelfReference(t *testing.T) {
	v := NewValidator(newFakeDict("TOWER"))
	res := v.Validate(context.Background(), "TOWER", "TOWER", "BEACH")
	if res.Valid || res.Reason != ReasonEqualsEndpoint {
		t.Fatalf("got %+v, want equals_endpoint rejection", res)
	}
	// Case-insensitive comparison.
	res = v.Validate(context.Background(), "tower", "TOWER", "BEACH")
	if res.Valid || res.Reason != ReasonEqualsEndpoint {
		t.Fatalf("got %+v, want equals_endpoint rejection for lowercase", res)
	}
}

func TestValidateRejectsUnknownWord(t *testing.T) {
	v := NewValidator(newFakeDict("ROBES"))
	res := v.Validate(context.Background(), "XQJVZ", "TOWER", "BEACH")
	if res.Valid || res.Reason != ReasonNotAWord {
		t.Fatalf("got %+v, want not_a_word rejection", res)
	}
}

func TestValidateFailsClosedOnLookupError(t *testing.T) {
	d := newFakeDict("ROBES")
	d.err = errors.New("network down")
	v := NewValidator(d)

	res := v.Validate(context.Background(), "ROBES", "TOWER", "BEACH")
	if res.Valid || res.Reason != ReasonNotAWord {
		t.Fatalf("got %+v, want fail-closed not_a_word", res)
	}
}

func TestValidateRejectsInsufficientOverlap(t *testing.T) {
	v := NewValidator(newFakeDict("QUILT"))
	// QUILT shares T with TOWER (1 < 2).
	res := v.Validate(context.Background(), "QUILT", "TOWER", "BEACH")
	if res.Valid || res.Reason != ReasonInsufficientOverlap {
		t.Fatalf("got %+v, want insufficient_overlap rejection", res)
	}
}

func TestValidateAccepts(t *testing.T) {
	v := NewValidator(newFakeDict("ROBES"))
	// ROBES: O,E,R with TOWER; B,E with BEACH.
	res := v.Validate(context.Background(), "robes", "TOWER", "BEACH")
	if !res.Valid || res.Reason != ReasonNone {
		t.Fatalf("got %+v, want valid", res)
	}
}

func TestValidateCachesVerdicts(t *testing.T) {
	d := newFakeDict("ROBES")
	v := NewValidator(d)

	for i := 0; i < 3; i++ {
		v.Validate(context.Background(), "ROBES", "TOWER", "BEACH")
		v.Validate(context.Background(), "XQJVZ", "TOWER", "BEACH")
	}
	if got := d.callCount(); got != 2 {
		t.Fatalf("dictionary called %d times, want 2 (cached)", got)
	}
}

func TestValidateDoesNotCacheTransportFailures(t *testing.T) {
	d := newFakeDict("ROBES")
	d.err = errors.New("network down")
	v := NewValidator(d)

	v.Validate(context.Background(), "ROBES", "TOWER", "BEACH")

	// Network recovers; the same word must be looked up again.
	d.mu.Lock()
	d.err = nil
	d.mu.Unlock()

	res := v.Validate(context.Background(), "ROBES", "TOWER", "BEACH")
	if !res.Valid {
		t.Fatalf("got %+v after recovery, want valid", res)
	}
}
