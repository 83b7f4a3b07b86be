package cfr

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Strategy is a (possibly partial) map from information sets to
// probability distributions over the legal actions of each information set.
type Strategy[I InfoSet] interface {
	// GetStrategy returns the action probabilities for the given InfoSet,
	// or false if the strategy has no entry for it.
	GetStrategy(infoSet I) ([]float64, bool)
}

// SafeGetStrategy returns the action probabilities for the given InfoSet,
// falling back to the uniform distribution over nActions actions if the
// strategy has no entry for it.
func SafeGetStrategy[I InfoSet](s Strategy[I], infoSet I, nActions int) []float64 {
	if p, ok := s.GetStrategy(infoSet); ok {
		if len(p) != nActions {
			panic(fmt.Errorf("strategy for %v has %d actions, expected %d", infoSet, len(p), nActions))
		}

		return p
	}

	return Uniform(nActions)
}

// Uniform returns the uniform distribution over n actions.
func Uniform(n int) []float64 {
	result := make([]float64, n)
	for i := range result {
		result[i] = 1.0 / float64(n)
	}

	return result
}

// Table is a Strategy backed by a map.
type Table[I InfoSet] map[I][]float64

// GetStrategy implements Strategy.
func (t Table[I]) GetStrategy(infoSet I) ([]float64, bool) {
	p, ok := t[infoSet]
	return p, ok
}

// Lookup retrieves strategies by InfoSet key.
type Lookup interface {
	Lookup(key string) ([]float64, bool)
}

// ByKey adapts a key-based Lookup (such as a Profile) into a Strategy
// by looking up each InfoSet by its String().
type ByKey[I InfoSet] struct {
	Source Lookup
}

// GetStrategy implements Strategy.
func (b ByKey[I]) GetStrategy(infoSet I) ([]float64, bool) {
	return b.Source.Lookup(infoSet.String())
}

// ProfileEntry is the average strategy of a single information set.
type ProfileEntry struct {
	InfoSet  string    `yaml:"infoset"`
	Actions  []string  `yaml:"actions"`
	Strategy []float64 `yaml:"strategy,flow"`
}

// Profile is a snapshot of the average strategy of every information set
// visited during training, sorted by InfoSet key.
type Profile struct {
	Iterations int            `yaml:"iterations"`
	Entries    []ProfileEntry `yaml:"entries"`

	index map[string]int
}

// NewProfile returns a Profile with the given entries, sorted by InfoSet key.
func NewProfile(iterations int, entries []ProfileEntry) *Profile {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].InfoSet < entries[j].InfoSet
	})

	p := &Profile{
		Iterations: iterations,
		Entries:    entries,
	}
	p.reindex()
	return p
}

func (p *Profile) reindex() {
	p.index = make(map[string]int, len(p.Entries))
	for i, e := range p.Entries {
		p.index[e.InfoSet] = i
	}
}

// Lookup implements Lookup.
func (p *Profile) Lookup(key string) ([]float64, bool) {
	if p.index == nil {
		p.reindex()
	}

	i, ok := p.index[key]
	if !ok {
		return nil, false
	}

	return append([]float64(nil), p.Entries[i].Strategy...), true
}

// Len returns the number of information sets in the profile.
func (p *Profile) Len() int {
	return len(p.Entries)
}

// WriteTo writes a human-readable dump of the profile, one information set
// per line. It implements io.WriterTo.
func (p *Profile) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range p.Entries {
		n, err := fmt.Fprintln(w, formatStrategy(e.InfoSet, e.Actions, e.Strategy))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

func formatStrategy(infoSet string, actions []string, strategy []float64) string {
	var sb strings.Builder
	sb.WriteString(infoSet)
	sb.WriteString(" avg strategy [")
	for i, a := range actions {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %.3f", a, strategy[i])
	}
	sb.WriteString("]")
	return sb.String()
}
