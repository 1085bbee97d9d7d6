package outcome

import (
	"fmt"
	"math"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
)

// EvidenceKind tags how a piece of evidence was obtained.
type EvidenceKind int

const (
	// Direct is a recorded result between the two competitors.
	Direct EvidenceKind = iota + 1
	// CommonOpponent is an advantage inferred through a shared opponent.
	CommonOpponent
)

// String returns the wire name of the kind.
func (k EvidenceKind) String() string {
	switch k {
	case Direct:
		return "direct"
	case CommonOpponent:
		return "common_opponent"
	default:
		return fmt.Sprintf("EvidenceKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EvidenceKind) MarshalText() ([]byte, error) {
	switch k {
	case Direct, CommonOpponent:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown evidence kind %d", int(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EvidenceKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "direct":
		*k = Direct
	case "common_opponent", "common-opponent":
		*k = CommonOpponent
	default:
		return fmt.Errorf("unknown evidence kind %q", text)
	}
	return nil
}

// Evidence records that Winner beat Loser Count times, either directly or
// through Count shared opponents.
type Evidence struct {
	Kind   EvidenceKind `json:"kind"`
	Winner string       `json:"winner"`
	Loser  string       `json:"loser"`
	Count  float64      `json:"count"`
}

// Weights controls how evidence kinds are converted into matrix weight.
type Weights struct {
	// Direct multiplies the net number of head-to-head wins.
	Direct float64 `json:"direct" toml:"direct"`

	// CommonOpponent multiplies the net number of common-opponent wins for
	// pairs that never met.
	CommonOpponent float64 `json:"common_opponent" toml:"common_opponent"`

	// Reinforce multiplies common-opponent wins that agree with the direct
	// winner of a pair that did meet. Zero disables reinforcement.
	Reinforce float64 `json:"reinforce" toml:"reinforce"`
}

// Default evidence weights.
const (
	DefaultDirectWeight         = 1.0
	DefaultCommonOpponentWeight = 0.5
	DefaultReinforceWeight      = 0.1
)

// DefaultWeights returns the default evidence weights.
func DefaultWeights() Weights {
	return Weights{
		Direct:         DefaultDirectWeight,
		CommonOpponent: DefaultCommonOpponentWeight,
		Reinforce:      DefaultReinforceWeight,
	}
}

// Validate checks that all weights are finite and non-negative.
func (w Weights) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"direct", w.Direct},
		{"common_opponent", w.CommonOpponent},
		{"reinforce", w.Reinforce},
	}
	for _, c := range checks {
		if c.value < 0 || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s weight must be a non-negative number, got %g", c.name, c.value)
		}
	}
	return nil
}

// Resolve folds evidence into a validated Matrix.
//
// For each unordered pair the direct counts are netted: only the dominant
// direction receives weight (Direct × margin) and an even split receives
// none. Common-opponent counts are netted the same way. They contribute at
// the CommonOpponent weight when the pair has no direct result, and at the
// Reinforce weight only when they agree with a direct winner.
//
// Evidence that names a competitor outside the list is ignored, matching how
// inactive competitors drop out of a group. Self-evidence and negative counts
// are rejected.
func Resolve(competitors []Competitor, evidence []Evidence, w Weights) (*Matrix, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	n := len(competitors)
	index := make(map[string]int, n)
	for i, c := range competitors {
		index[c.ID] = i
	}

	direct := newSquare(n)
	common := newSquare(n)
	for k, e := range evidence {
		if e.Count < 0 || math.IsNaN(e.Count) || math.IsInf(e.Count, 0) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "evidence %d has invalid count %g", k, e.Count)
		}
		if e.Winner == e.Loser {
			return nil, errors.New(errors.ErrCodeInvalidInput, "evidence %d has %q beating itself", k, e.Winner)
		}
		i, okW := index[e.Winner]
		j, okL := index[e.Loser]
		if !okW || !okL {
			continue
		}
		switch e.Kind {
		case Direct:
			direct[i][j] += e.Count
		case CommonOpponent:
			common[i][j] += e.Count
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput, "evidence %d has unknown kind %v", k, e.Kind)
		}
	}

	weights := newSquare(n)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			met := direct[a][b]+direct[b][a] > 0
			d := direct[a][b] - direct[b][a]
			c := common[a][b] - common[b][a]

			switch {
			case d > 0:
				weights[a][b] += w.Direct * d
			case d < 0:
				weights[b][a] += w.Direct * -d
			}

			if !met {
				switch {
				case c > 0:
					weights[a][b] += w.CommonOpponent * c
				case c < 0:
					weights[b][a] += w.CommonOpponent * -c
				}
				continue
			}
			switch {
			case d > 0 && c > 0:
				weights[a][b] += w.Reinforce * c
			case d < 0 && c < 0:
				weights[b][a] += w.Reinforce * -c
			}
		}
	}
	return NewMatrix(competitors, weights)
}

func newSquare(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}
