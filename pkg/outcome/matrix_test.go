package outcome

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
)

func abc() []Competitor {
	return []Competitor{
		{ID: "a", Name: "Alpha", Team: "PSU", Wins: 10, Losses: 1},
		{ID: "b", Name: "Bravo", Team: "IOWA", Wins: 8, Losses: 3},
		{ID: "c", Name: "Charlie", Team: "OSU", Wins: 5, Losses: 5},
	}
}

func TestNewMatrix(t *testing.T) {
	w := [][]float64{
		{0, 1, 0},
		{0, 0, 2},
		{0.5, 0, 0},
	}
	m, err := NewMatrix(abc(), w)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
	if got := m.At(1, 2); got != 2 {
		t.Errorf("At(1,2) = %v, want 2", got)
	}
	if got := m.EdgeCount(); got != 3 {
		t.Errorf("EdgeCount() = %d, want 3", got)
	}
	if got := m.TotalWeight(); got != 3.5 {
		t.Errorf("TotalWeight() = %v, want 3.5", got)
	}
	if i, ok := m.Index("c"); !ok || i != 2 {
		t.Errorf("Index(c) = %d, %v", i, ok)
	}
	if _, ok := m.Index("zzz"); ok {
		t.Error("Index of unknown id should report false")
	}

	// The matrix owns its data.
	w[0][1] = 99
	if m.At(0, 1) != 1 {
		t.Error("NewMatrix must copy weights")
	}
	cs := m.Competitors()
	cs[0].Name = "mutated"
	if m.Competitor(0).Name != "Alpha" {
		t.Error("Competitors must return a copy")
	}
	ws := m.Weights()
	ws[1][2] = 99
	if m.At(1, 2) != 2 {
		t.Error("Weights must return a copy")
	}
}

func TestNewMatrixEmpty(t *testing.T) {
	if _, err := NewMatrix(nil, nil); !errors.Is(err, errors.ErrCodeNoData) {
		t.Fatalf("NewMatrix(nil) err = %v, want NO_DATA", err)
	}
	if _, err := Resolve(nil, nil, DefaultWeights()); !errors.Is(err, errors.ErrCodeNoData) {
		t.Errorf("Resolve(nil) err = %v, want NO_DATA", err)
	}
	var nilMatrix *Matrix
	if nilMatrix.Len() != 0 {
		t.Error("nil matrix should have length 0")
	}
}

func TestNewMatrixRejectsMalformed(t *testing.T) {
	tests := []struct {
		name        string
		competitors []Competitor
		weights     [][]float64
	}{
		{"row count", abc(), [][]float64{{0, 0, 0}, {0, 0, 0}}},
		{"column count", abc(), [][]float64{{0, 0}, {0, 0, 0}, {0, 0, 0}}},
		{"negative", abc(), [][]float64{{0, -1, 0}, {0, 0, 0}, {0, 0, 0}}},
		{"nan", abc(), [][]float64{{0, math.NaN(), 0}, {0, 0, 0}, {0, 0, 0}}},
		{"inf", abc(), [][]float64{{0, 0, 0}, {math.Inf(1), 0, 0}, {0, 0, 0}}},
		{"self loop", abc(), [][]float64{{1, 0, 0}, {0, 0, 0}, {0, 0, 0}}},
		{"duplicate id", []Competitor{{ID: "a"}, {ID: "a"}}, [][]float64{{0, 0}, {0, 0}}},
		{"empty id", []Competitor{{ID: ""}}, [][]float64{{0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatrix(tt.competitors, tt.weights)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidMatrix) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidMatrix)
			}
		})
	}
}

func TestMatrixJSONRoundTrip(t *testing.T) {
	m, err := NewMatrix(abc(), [][]float64{{0, 1, 0}, {0, 0, 1}, {0, 0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(again) {
		t.Error("matrix encoding should be deterministic")
	}

	back, err := UnmarshalMatrix(data)
	if err != nil {
		t.Fatalf("UnmarshalMatrix: %v", err)
	}
	if back.Len() != 3 || back.At(0, 1) != 1 || back.At(1, 2) != 1 || back.Competitor(2).Team != "OSU" {
		t.Errorf("round trip mismatch: %+v", back.Weights())
	}
}

func TestMatrixHash(t *testing.T) {
	a, _ := NewMatrix(abc(), [][]float64{{0, 1, 0}, {0, 0, 1}, {0, 0, 0}})
	b, _ := NewMatrix(abc(), [][]float64{{0, 1, 0}, {0, 0, 1}, {0, 0, 0}})
	c, _ := NewMatrix(abc(), [][]float64{{0, 1, 0}, {0, 0, 2}, {0, 0, 0}})
	if a.Hash() != b.Hash() {
		t.Error("equal matrices should hash equally")
	}
	if a.Hash() == c.Hash() {
		t.Error("different weights should change the hash")
	}
	if len(a.Hash()) != 64 {
		t.Errorf("hash length = %d", len(a.Hash()))
	}
}

func TestCompetitorRecord(t *testing.T) {
	c := Competitor{ID: "x", Wins: 21, Losses: 4}
	if got := c.Record(); got != "21-4" {
		t.Errorf("Record() = %q", got)
	}
	if got := c.DisplayName(); got != "x" {
		t.Errorf("DisplayName() = %q, want id fallback", got)
	}
}
