// internal/game/validate.go
//
// Letter-bridge validation: decides whether a candidate word connects the
// two endpoints of a puzzle.
//
// Checks run in order and short-circuit:
//   1. length must be exactly WordLength            → wrong_length
//   2. candidate must differ from both endpoints    → equals_endpoint
//   3. candidate must exist in the dictionary       → not_a_word
//   4. candidate must share ≥ MinSharedLetters with
//      each endpoint (multiset overlap)             → insufficient_overlap
//
// The dictionary lookup is the only side effect. It is fallible; a
// transport failure counts as not-a-word (fail closed). Definitive
// verdicts are cached for the lifetime of the validator.

package game

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wordbridge/go-server/internal/dict"
)

// Validator checks candidate words against a puzzle. Safe for concurrent
// use; the verdict cache is shared across rounds and never evicted.
type Validator struct {
	dict dict.Lookup

	// cache is append-only for the session lifetime: word → exists.
	// sync.Map gives the insert-if-absent semantics without a lock.
	cache sync.Map
}

// NewValidator constructs a Validator over the given dictionary.
func NewValidator(d dict.Lookup) *Validator {
	return &Validator{dict: d}
}

// Validate runs the full check sequence for candidate against the
// start/end endpoints. It never returns an error: expected failure modes
// are verdicts, and dictionary trouble degrades to not_a_word.
func (v *Validator) Validate(ctx context.Context, candidate, startWord, endWord string) ValidationResult {
	word := normalizeWord(candidate)
	start := normalizeWord(startWord)
	end := normalizeWord(endWord)

	if len(word) != WordLength || !isUpperAlpha(word) {
		return ValidationResult{Reason: ReasonWrongLength}
	}
	if word == start || word == end {
		return ValidationResult{Reason: ReasonEqualsEndpoint}
	}
	if !v.isRealWord(ctx, word) {
		return ValidationResult{Reason: ReasonNotAWord}
	}
	if Overlap(word, start) < MinSharedLetters || Overlap(word, end) < MinSharedLetters {
		return ValidationResult{Reason: ReasonInsufficientOverlap}
	}
	return ValidationResult{Valid: true}
}

// isRealWord consults the cache, then the dictionary. Transport failures
// are logged and fail closed; only definitive verdicts are cached.
func (v *Validator) isRealWord(ctx context.Context, word string) bool {
	if cached, hit := v.cache.Load(word); hit {
		return cached.(bool)
	}
	exists, err := v.dict.IsValidWord(ctx, word)
	if err != nil {
		log.Warn().Err(err).Str("word", word).Msg("dictionary lookup failed; treating as not a word")
		return false
	}
	v.cache.LoadOrStore(word, exists)
	return exists
}

// Overlap computes the multiset letter overlap between two words:
// Σ over distinct letters of min(count in a, count in b).
// Symmetric, and at most WordLength for equal-length words.
func Overlap(a, b string) int {
	var countsA, countsB [26]int
	for _, r := range strings.ToUpper(a) {
		if r >= 'A' && r <= 'Z' {
			countsA[r-'A']++
		}
	}
	for _, r := range strings.ToUpper(b) {
		if r >= 'A' && r <= 'Z' {
			countsB[r-'A']++
		}
	}
	total := 0
	for i := 0; i < 26; i++ {
		if countsA[i] < countsB[i] {
			total += countsA[i]
		} else {
			total += countsB[i]
		}
	}
	return total
}

// normalizeWord trims and uppercases a candidate.
func normalizeWord(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// isUpperAlpha reports whether s is all uppercase ASCII letters.
func isUpperAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
