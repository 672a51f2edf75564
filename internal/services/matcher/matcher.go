package matcher

import (
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/mcoot/chinquiz/internal/model"
)

// DefaultThreshold is the largest normalized distance still accepted as a match
const DefaultThreshold = 0.4

// Config controls match tolerance
type Config struct {
	// Threshold is the maximum accepted distance on a 0..1 scale where 0 is an
	// exact match
	Threshold float64
}

// DefaultConfig returns the default matcher configuration
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold}
}

type indexedName struct {
	name       string
	normalized string
}

// Matcher resolves free-text guesses to roster names. The index is built once
// and never modified, so a Matcher is safe for concurrent use.
type Matcher struct {
	cfg   Config
	index []indexedName
}

// New builds a matcher over the given roster entries
func New(entries []model.RosterEntry, cfg Config) *Matcher {
	index := make([]indexedName, 0, len(entries))
	for _, e := range entries {
		index = append(index, indexedName{name: e.Name, normalized: Normalize(e.Name)})
	}
	return &Matcher{cfg: cfg, index: index}
}

// Match returns the roster name closest to guess, if any is within the
// threshold. Equal distances resolve to the lexicographically smaller name.
func (m *Matcher) Match(guess string) (string, bool) {
	g := Normalize(guess)
	if g == "" {
		return "", false
	}

	best := -1
	bestDistance := 0.0
	for i, entry := range m.index {
		d := distance(g, entry.normalized)
		if d > m.cfg.Threshold {
			continue
		}
		if best < 0 || d < bestDistance || (d == bestDistance && entry.normalized < m.index[best].normalized) {
			best = i
			bestDistance = d
		}
	}
	if best < 0 {
		return "", false
	}
	return m.index[best].name, true
}

// Distance returns the normalized edit distance between two strings after
// normalization
func Distance(a, b string) float64 {
	return distance(Normalize(a), Normalize(b))
}

func distance(a, b string) float64 {
	if a == b {
		return 0
	}
	similarity, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 1
	}
	return 1 - float64(similarity)
}

// Normalize lowercases s, trims it and collapses internal whitespace
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
