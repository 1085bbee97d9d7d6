package outcome

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
)

func people(ids ...string) []Competitor {
	out := make([]Competitor, len(ids))
	for i, id := range ids {
		out[i] = Competitor{ID: id, Name: strings.ToUpper(id)}
	}
	return out
}

func find(ev []Evidence, kind EvidenceKind, winner, loser string) float64 {
	for _, e := range ev {
		if e.Kind == kind && e.Winner == winner && e.Loser == loser {
			return e.Count
		}
	}
	return 0
}

func TestBuildEvidenceDirect(t *testing.T) {
	ev := BuildEvidence(people("a", "b"), []Match{
		{Winner: "a", Loser: "b", Result: "Dec 3-2"},
		{Winner: "a", Loser: "b", Result: "Fall"},
		{Winner: "b", Loser: "a", Result: "SV-1"},
		{Winner: "b", Loser: "a", Result: "NC"},
		{Winner: "a", Loser: "ghost"},
	})
	if got := find(ev, Direct, "a", "b"); got != 2 {
		t.Errorf("direct a>b = %v, want 2", got)
	}
	if got := find(ev, Direct, "b", "a"); got != 1 {
		t.Errorf("direct b>a = %v, want 1 (no-contest ignored)", got)
	}
}

func TestBuildEvidenceCommonOpponent(t *testing.T) {
	// a beat x, c lost to x; a and c never met.
	ev := BuildEvidence(people("a", "c", "x"), []Match{
		{Winner: "a", Loser: "x"},
		{Winner: "x", Loser: "c"},
	})
	if got := find(ev, CommonOpponent, "a", "c"); got != 1 {
		t.Errorf("common a>c = %v, want 1", got)
	}
	if got := find(ev, CommonOpponent, "c", "a"); got != 0 {
		t.Errorf("common c>a = %v, want 0", got)
	}
}

func TestBuildEvidenceSkipsPairsThatMet(t *testing.T) {
	ev := BuildEvidence(people("a", "c", "x"), []Match{
		{Winner: "a", Loser: "x"},
		{Winner: "x", Loser: "c"},
		{Winner: "c", Loser: "a"},
	})
	if got := find(ev, CommonOpponent, "a", "c"); got != 0 {
		t.Errorf("common a>c = %v, want 0 for a pair with a direct result", got)
	}
}

func TestBuildEvidenceSplitOpponentIsNeutral(t *testing.T) {
	ev := BuildEvidence(people("a", "c", "x"), []Match{
		{Winner: "a", Loser: "x"},
		{Winner: "x", Loser: "a"},
		{Winner: "x", Loser: "c"},
	})
	if got := find(ev, CommonOpponent, "a", "c"); got != 0 {
		t.Errorf("common a>c = %v, want 0 when a is split against x", got)
	}
}

func TestBuildEvidenceCommonOpponentUsesNetRecord(t *testing.T) {
	// a is 1-2 against x, c is 2-1. Credit goes to c whatever the listing order.
	matches := []Match{
		{Winner: "a", Loser: "x"},
		{Winner: "x", Loser: "a"},
		{Winner: "x", Loser: "a"},
		{Winner: "c", Loser: "x"},
		{Winner: "c", Loser: "x"},
		{Winner: "x", Loser: "c"},
	}
	for _, order := range [][]string{{"a", "c", "x"}, {"c", "a", "x"}, {"x", "a", "c"}} {
		ev := BuildEvidence(people(order...), matches)
		if got := find(ev, CommonOpponent, "c", "a"); got != 1 {
			t.Errorf("order %v: common c>a = %v, want 1", order, got)
		}
		if got := find(ev, CommonOpponent, "a", "c"); got != 0 {
			t.Errorf("order %v: common a>c = %v, want 0", order, got)
		}
	}
}

func TestBuildEvidenceBothWinningIsNeutral(t *testing.T) {
	ev := BuildEvidence(people("a", "c", "x"), []Match{
		{Winner: "a", Loser: "x"},
		{Winner: "a", Loser: "x"},
		{Winner: "x", Loser: "a"},
		{Winner: "c", Loser: "x"},
	})
	if got := find(ev, CommonOpponent, "a", "c") + find(ev, CommonOpponent, "c", "a"); got != 0 {
		t.Errorf("common evidence = %v, want 0 when both hold winning records", got)
	}
}

func TestBuildEvidenceMedicalExcludedFromCommonOpponent(t *testing.T) {
	ev := BuildEvidence(people("a", "c", "x"), []Match{
		{Winner: "a", Loser: "x", Result: "MFF"},
		{Winner: "x", Loser: "c", Result: "Dec 4-1"},
	})
	if got := find(ev, Direct, "a", "x"); got != 1 {
		t.Errorf("medical forfeit should still count head-to-head, got %v", got)
	}
	if got := find(ev, CommonOpponent, "a", "c"); got != 0 {
		t.Errorf("common a>c = %v, want 0 when a's result was a medical forfeit", got)
	}
}

func TestMatchClassification(t *testing.T) {
	tests := []struct {
		result    string
		noContest bool
		medical   bool
	}{
		{"Dec 3-2", false, false},
		{"NC", true, false},
		{"No Contest", true, false},
		{"MFFL", false, true},
		{"Inj. 3:10", false, true},
		{"M. For.", false, true},
		{"Fall 1:02", false, false},
	}
	for _, tt := range tests {
		m := Match{Result: tt.result}
		if m.IsNoContest() != tt.noContest {
			t.Errorf("IsNoContest(%q) = %v", tt.result, m.IsNoContest())
		}
		if m.IsMedical() != tt.medical {
			t.Errorf("IsMedical(%q) = %v", tt.result, m.IsMedical())
		}
	}
}

func TestGroupMatrix(t *testing.T) {
	g := &Group{
		Name:        "125",
		Competitors: people("a", "b", "c"),
		Matches: []Match{
			{Winner: "a", Loser: "b"},
			{Winner: "b", Loser: "c"},
		},
	}
	m, err := g.Matrix(DefaultWeights())
	if err != nil {
		t.Fatalf("Matrix: %v", err)
	}
	if m.At(0, 1) != 1 || m.At(1, 2) != 1 {
		t.Errorf("direct weights missing: %v", m.Weights())
	}
	// a and c share opponent b: a beat b, c lost to b.
	if got := m.At(0, 2); got != DefaultCommonOpponentWeight {
		t.Errorf("W[a][c] = %v, want %v", got, DefaultCommonOpponentWeight)
	}
}

func TestGroupValidate(t *testing.T) {
	g := &Group{Name: "125", Competitors: people("a", "a")}
	if err := g.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("duplicate ids: err = %v", err)
	}
	g = &Group{Name: "../125", Competitors: people("a")}
	if err := g.Validate(); !errors.Is(err, errors.ErrCodeInvalidGroup) {
		t.Errorf("bad name: err = %v", err)
	}
}

func TestGroupFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	g := &Group{
		Competitors: people("a", "b"),
		Matches:     []Match{{Winner: "a", Loser: "b", Result: "Dec 2-0"}},
		Evidence:    []Evidence{{Kind: CommonOpponent, Winner: "a", Loser: "b", Count: 1}},
	}
	var buf bytes.Buffer
	if err := WriteGroup(&buf, g); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "141.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadGroup(path)
	if err != nil {
		t.Fatalf("LoadGroup: %v", err)
	}
	if loaded.Name != "141" {
		t.Errorf("Name = %q, want file stem", loaded.Name)
	}
	if len(loaded.Matches) != 1 || len(loaded.Evidence) != 1 || loaded.Evidence[0].Kind != CommonOpponent {
		t.Errorf("loaded group mismatch: %+v", loaded)
	}

	files, err := GroupFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != path {
		t.Errorf("GroupFiles = %v", files)
	}

	if _, err := LoadGroup(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestReadGroupRejectsUnknownFields(t *testing.T) {
	_, err := ReadGroup(strings.NewReader(`{"name":"x","competitors":[],"wrestlers":[]}`))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}
