// internal/words/words.go
//
// Word corpus management for the round engine.
//
// Responsibilities:
//   - Load the tiered five-letter word lists embedded under assets/.
//   - Derive vowel-heavy (≥3 vowels) and consonant-heavy (≤1 vowel)
//     subsets at load time.
//   - Expose read-only accessors for the selector and diagnostics.
//
// Constraints:
//   • Words must be 5 alphabetic letters; lists are normalized to UPPERCASE.
//   • The corpus is read-only for the lifetime of the process.
//   • Initialization runs once (sync.Once).

package words

import (
	"errors"
	"strings"
	"sync"

	"github.com/wordbridge/go-server/assets"
)

// Tier identifies a difficulty bucket of the corpus.
type Tier int

const (
	TierEasy Tier = iota
	TierMedium
	TierHard
)

var (
	initOnce   sync.Once
	tiers      map[Tier][]string
	vowelHeavy []string // ≥3 vowels
	consHeavy  []string // ≤1 vowel
	allSet     map[string]struct{}
	initialErr error
)

// Init loads the embedded tier lists exactly once.
// Returns an error if any tier ends up empty.
func Init() error {
	initOnce.Do(func() {
		easy, err := assets.EasyList()
		if err != nil {
			initialErr = err
			return
		}
		medium, err := assets.MediumList()
		if err != nil {
			initialErr = err
			return
		}
		hard, err := assets.HardList()
		if err != nil {
			initialErr = err
			return
		}

		tiers = map[Tier][]string{
			TierEasy:   normalize(easy),
			TierMedium: normalize(medium),
			TierHard:   normalize(hard),
		}
		for _, list := range tiers {
			if len(list) == 0 {
				initialErr = errors.New("words: empty tier list")
				return
			}
		}

		allSet = make(map[string]struct{})
		for _, list := range tiers {
			for _, w := range list {
				allSet[w] = struct{}{}
				switch v := vowelCount(w); {
				case v >= 3:
					vowelHeavy = append(vowelHeavy, w)
				case v <= 1:
					consHeavy = append(consHeavy, w)
				}
			}
		}
	})
	return initialErr
}

// normalize uppercases and keeps only valid 5-letter alphabetic words.
func normalize(list []string) []string {
	out := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.ToUpper(strings.TrimSpace(w))
		if len(w) == 5 && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// vowelCount counts A/E/I/O/U occurrences.
func vowelCount(w string) int {
	n := 0
	for _, r := range w {
		switch r {
		case 'A', 'E', 'I', 'O', 'U':
			n++
		}
	}
	return n
}

// TierList returns the words of one difficulty tier.
func TierList(t Tier) []string {
	return tiers[t]
}

// VowelHeavy returns the ≥3-vowel subset.
func VowelHeavy() []string { return vowelHeavy }

// ConsonantHeavy returns the ≤1-vowel subset.
func ConsonantHeavy() []string { return consHeavy }

// InCorpus reports whether w is part of the loaded corpus.
func InCorpus(w string) bool {
	_, ok := allSet[strings.ToUpper(w)]
	return ok
}

// Stats returns per-tier and subset word counts for diagnostics.
func Stats() map[string]int {
	return map[string]int{
		"easy":           len(tiers[TierEasy]),
		"medium":         len(tiers[TierMedium]),
		"hard":           len(tiers[TierHard]),
		"vowelHeavy":     len(vowelHeavy),
		"consonantHeavy": len(consHeavy),
	}
}
