// internal/words/selector.go
//
// Endpoint/bridge word selection for the round engine.
//
// Policy:
//   - The easy/medium/hard mix shifts with the round number over a fixed
//     three-bucket schedule (early rounds easy, late rounds hard).
//   - Words already used this session are excluded (no immediate repeats).
//   - Candidates are ranked by a diversity heuristic: points per letter not
//     seen in the previous words, plus a bonus per uncommon letter.
//   - Near-ties are broken with a small random perturbation so the same
//     "best" word does not win every time.
//   - If the corpus yields fewer candidates than requested, a hand-curated
//     fallback list tops the result up.
//
// A Selector seeded via NewSeeded is fully deterministic.

package words

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// diversityPoints is awarded per candidate letter absent from the
	// previous words.
	diversityPoints = 2

	// uncommonBonus is awarded per uncommon letter in the candidate.
	uncommonBonus = 3

	// jitterSteps bounds the random perturbation to under one
	// diversity step, so only near-ties are reordered.
	jitterSteps = diversityPoints

	// poolSize is how many candidates are drawn before ranking.
	poolSize = 30

	uncommonLetters = "QXZJKVWY"
)

// fallbackWords tops up selection when the corpus runs short.
var fallbackWords = []string{
	"HEART", "SPACE", "PLANT", "STONE", "RIVER",
	"CLOUD", "DREAM", "LIGHT", "MUSIC", "WATER",
}

// tierMix is the draw proportion per tier for one schedule bucket.
type tierMix struct {
	easy, medium, hard float64
}

// mixForRound is the fixed three-bucket difficulty schedule.
func mixForRound(roundNumber int) tierMix {
	switch {
	case roundNumber <= 3:
		return tierMix{easy: 0.70, medium: 0.25, hard: 0.05}
	case roundNumber <= 7:
		return tierMix{easy: 0.40, medium: 0.40, hard: 0.20}
	default:
		return tierMix{easy: 0.20, medium: 0.40, hard: 0.40}
	}
}

// Selector draws endpoint words from the corpus. Stateless apart from its
// random source; safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector returns a production Selector with real randomness.
func NewSelector() *Selector {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Selector for a fixed seed.
func NewSeeded(seed int64) *Selector {
	return &Selector{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns exactly count words for the given round, excluding any word
// in previous.
func (s *Selector) Pick(count, roundNumber int, previous []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count <= 0 {
		return nil
	}

	exclude := make(map[string]struct{}, len(previous))
	seenLetters := make(map[rune]struct{})
	for _, w := range previous {
		w = strings.ToUpper(w)
		exclude[w] = struct{}{}
		for _, r := range w {
			seenLetters[r] = struct{}{}
		}
	}

	pool := s.drawPool(roundNumber, exclude)

	type ranked struct {
		word  string
		score int
	}
	rankedPool := make([]ranked, 0, len(pool))
	for _, w := range pool {
		score := heuristicScore(w, seenLetters)*jitterSteps + s.rng.Intn(jitterSteps)
		rankedPool = append(rankedPool, ranked{word: w, score: score})
	}
	sort.SliceStable(rankedPool, func(i, j int) bool {
		return rankedPool[i].score > rankedPool[j].score
	})

	out := make([]string, 0, count)
	for _, r := range rankedPool {
		if len(out) == count {
			break
		}
		out = append(out, r.word)
	}

	// Corpus ran short: top up from the curated fallback list.
	for _, w := range fallbackWords {
		if len(out) == count {
			break
		}
		if _, used := exclude[w]; used {
			continue
		}
		if containsWord(out, w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// drawPool samples candidates from the tiers per the round's mix,
// skipping excluded words and duplicates.
func (s *Selector) drawPool(roundNumber int, exclude map[string]struct{}) []string {
	mix := mixForRound(roundNumber)
	quotas := []struct {
		tier Tier
		n    int
	}{
		{TierEasy, int(mix.easy * poolSize)},
		{TierMedium, int(mix.medium * poolSize)},
		{TierHard, int(mix.hard * poolSize)},
	}

	taken := make(map[string]struct{})
	var pool []string
	for _, q := range quotas {
		list := TierList(q.tier)
		if len(list) == 0 {
			continue
		}
		// Bounded attempts: small tiers may not fill their quota.
		for attempts, picked := 0, 0; picked < q.n && attempts < q.n*4; attempts++ {
			w := list[s.rng.Intn(len(list))]
			if _, used := exclude[w]; used {
				continue
			}
			if _, dup := taken[w]; dup {
				continue
			}
			taken[w] = struct{}{}
			pool = append(pool, w)
			picked++
		}
	}
	return pool
}

// heuristicScore rewards letter diversity and uncommon letters.
func heuristicScore(word string, seenLetters map[rune]struct{}) int {
	score := 0
	for _, r := range word {
		if _, seen := seenLetters[r]; !seen {
			score += diversityPoints
		}
		if strings.ContainsRune(uncommonLetters, r) {
			score += uncommonBonus
		}
	}
	return score
}

func containsWord(list []string, w string) bool {
	for _, x := range list {
		if x == w {
			return true
		}
	}
	return false
}
