package outcome

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
)

// Matrix is the outcome graph: N competitors and an N×N weight matrix where
// At(i, j) > 0 means there is evidence competitor i beat competitor j.
//
// A Matrix is immutable once constructed. All accessors are read-only, so a
// single Matrix may be shared by any number of goroutines.
type Matrix struct {
	competitors []Competitor
	index       map[string]int
	w           []float64 // row-major, n*n
	n           int
}

// NewMatrix validates and copies competitors and weights into a Matrix.
//
// weights must be len(competitors) × len(competitors), non-negative, finite,
// and zero on the diagonal. Competitor IDs must be valid and unique. An empty
// competitor list fails with NO_DATA, which callers treat as "skip this
// group".
func NewMatrix(competitors []Competitor, weights [][]float64) (*Matrix, error) {
	n := len(competitors)
	if n == 0 {
		return nil, errors.New(errors.ErrCodeNoData, "no competitors")
	}
	if len(weights) != n {
		return nil, errors.New(errors.ErrCodeInvalidMatrix,
			"matrix has %d rows for %d competitors", len(weights), n)
	}

	m := &Matrix{
		competitors: make([]Competitor, n),
		index:       make(map[string]int, n),
		w:           make([]float64, n*n),
		n:           n,
	}
	copy(m.competitors, competitors)

	for i, c := range competitors {
		if err := errors.ValidateCompetitorID(c.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMatrix, err, "competitor %d", i)
		}
		if prev, dup := m.index[c.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidMatrix,
				"duplicate competitor id %q at positions %d and %d", c.ID, prev, i)
		}
		m.index[c.ID] = i
	}

	for i, row := range weights {
		if len(row) != n {
			return nil, errors.New(errors.ErrCodeInvalidMatrix,
				"matrix row %d has %d columns, want %d", i, len(row), n)
		}
		for j, v := range row {
			switch {
			case math.IsNaN(v) || math.IsInf(v, 0):
				return nil, errors.New(errors.ErrCodeInvalidMatrix, "weight at (%d,%d) is not finite", i, j)
			case v < 0:
				return nil, errors.New(errors.ErrCodeInvalidMatrix, "weight at (%d,%d) is negative: %g", i, j, v)
			case i == j && v != 0:
				return nil, errors.New(errors.ErrCodeInvalidMatrix, "self-loop on competitor %q", competitors[i].ID)
			}
			m.w[i*n+j] = v
		}
	}
	return m, nil
}

// Len returns the number of competitors.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return m.n
}

// At returns the evidence weight that competitor i beat competitor j.
func (m *Matrix) At(i, j int) float64 {
	return m.w[i*m.n+j]
}

// Competitor returns the competitor at position i.
func (m *Matrix) Competitor(i int) Competitor {
	return m.competitors[i]
}

// Competitors returns a copy of the competitor list in matrix order.
func (m *Matrix) Competitors() []Competitor {
	out := make([]Competitor, len(m.competitors))
	copy(out, m.competitors)
	return out
}

// Index returns the matrix position of the competitor with the given ID.
func (m *Matrix) Index(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// EdgeCount returns the number of positive entries.
func (m *Matrix) EdgeCount() int {
	count := 0
	for _, v := range m.w {
		if v > 0 {
			count++
		}
	}
	return count
}

// TotalWeight returns the sum of all entries.
func (m *Matrix) TotalWeight() float64 {
	total := 0.0
	for _, v := range m.w {
		total += v
	}
	return total
}

// Weights returns a copy of the matrix as nested slices.
func (m *Matrix) Weights() [][]float64 {
	out := make([][]float64, m.n)
	for i := range out {
		out[i] = make([]float64, m.n)
		copy(out[i], m.w[i*m.n:(i+1)*m.n])
	}
	return out
}

type matrixJSON struct {
	Competitors []Competitor `json:"competitors"`
	Weights     [][]float64  `json:"weights"`
}

// MarshalJSON encodes the competitors and weights. The encoding is
// deterministic, so its hash identifies the matrix content.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{Competitors: m.competitors, Weights: m.Weights()})
}

// Hash returns the hex SHA-256 of the JSON encoding.
func (m *Matrix) Hash() string {
	data, _ := m.MarshalJSON()
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// UnmarshalMatrix decodes the output of [Matrix.MarshalJSON], validating it
// like [NewMatrix].
func UnmarshalMatrix(data []byte) (*Matrix, error) {
	var mj matrixJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMatrix, err, "decode matrix")
	}
	return NewMatrix(mj.Competitors, mj.Weights)
}
