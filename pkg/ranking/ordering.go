package ranking

import (
	"math/rand/v2"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
)

// Ordering is a ranking expressed as matrix positions: Ordering[0] is the
// matrix index of the competitor ranked first.
type Ordering []int

// Identity returns the ordering 0, 1, ..., n-1.
func Identity(n int) Ordering {
	o := make(Ordering, n)
	for i := range o {
		o[i] = i
	}
	return o
}

// RandomOrdering returns a uniformly random permutation of n positions.
func RandomOrdering(n int, rng *rand.Rand) Ordering {
	o := Identity(n)
	rng.Shuffle(n, o.Swap)
	return o
}

// Clone returns an independent copy.
func (o Ordering) Clone() Ordering {
	out := make(Ordering, len(o))
	copy(out, o)
	return out
}

// Swap transposes the competitors at positions i and j in place.
func (o Ordering) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
}

// Validate reports whether o is a permutation of 0..n-1: no duplicates, no
// omissions, nothing out of range.
func (o Ordering) Validate(n int) error {
	if len(o) != n {
		return errors.New(errors.ErrCodeInvalidOrder, "ordering has %d entries, want %d", len(o), n)
	}
	seen := make([]bool, n)
	for pos, idx := range o {
		if idx < 0 || idx >= n {
			return errors.New(errors.ErrCodeInvalidOrder, "position %d holds out-of-range index %d", pos, idx)
		}
		if seen[idx] {
			return errors.New(errors.ErrCodeInvalidOrder, "index %d appears more than once", idx)
		}
		seen[idx] = true
	}
	return nil
}

// IDs maps the ordering to competitor IDs.
func (o Ordering) IDs(m *outcome.Matrix) []string {
	ids := make([]string, len(o))
	for pos, idx := range o {
		ids[pos] = m.Competitor(idx).ID
	}
	return ids
}

// OrderingFromIDs converts competitor IDs into an Ordering, validating that
// the IDs cover every competitor exactly once.
func OrderingFromIDs(m *outcome.Matrix, ids []string) (Ordering, error) {
	o := make(Ordering, len(ids))
	for pos, id := range ids {
		idx, ok := m.Index(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidOrder, "unknown competitor %q", id)
		}
		o[pos] = idx
	}
	if err := o.Validate(m.Len()); err != nil {
		return nil, err
	}
	return o, nil
}

// newRNG returns the PCG stream for a run seed.
func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}
