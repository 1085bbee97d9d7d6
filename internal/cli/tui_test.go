package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestLoadGroupEntries(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"125.json":  triangleGroup,
		"133.json":  `{"name": "133", "competitors": []}`,
		"141.json":  `{"name": "141", "competitors": [`,
		"notes.txt": "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := loadGroupEntries(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if e := entries[0]; e.Name != "125" || e.Competitors != 3 || e.Matches != 5 || !e.Rankable() {
		t.Errorf("125 = %+v", e)
	}
	if entries[1].Rankable() {
		t.Error("empty group should not be rankable")
	}
	if e := entries[2]; e.Err == nil || e.Rankable() || e.Name != "141" {
		t.Errorf("malformed file = %+v", e)
	}
}

func TestLoadGroupEntriesEmptyDir(t *testing.T) {
	if _, err := loadGroupEntries(t.TempDir()); err == nil {
		t.Error("expected an error for a directory without groups")
	}
}

func TestGroupPickerModel(t *testing.T) {
	m := NewGroupPickerModel([]GroupEntry{
		{Path: "133.json", Name: "133"},
		{Path: "125.json", Name: "125", Competitors: 3, Matches: 5},
	})

	// Unrankable groups cannot be chosen.
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(GroupPickerModel)
	if m.Selected != nil || cmd != nil {
		t.Fatal("selected an empty group")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(GroupPickerModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(GroupPickerModel)
	if m.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.Cursor)
	}

	view := m.View()
	for _, want := range []string{"Select Group", "125", "133", "[2/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(GroupPickerModel)
	if m.Selected == nil || m.Selected.Path != "125.json" || cmd == nil {
		t.Errorf("selected = %+v", m.Selected)
	}
}

func TestGroupPickerScrolls(t *testing.T) {
	groups := make([]GroupEntry, 10)
	for i := range groups {
		groups[i] = GroupEntry{Name: string(rune('a' + i)), Competitors: 1}
	}
	m := NewGroupPickerModel(groups)
	m.Height = 3
	for range 5 {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = next.(GroupPickerModel)
	}
	if m.Cursor != 5 || m.Offset != 3 {
		t.Errorf("cursor = %d offset = %d, want 5 and 3", m.Cursor, m.Offset)
	}
	for range 5 {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
		m = next.(GroupPickerModel)
	}
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("cursor = %d offset = %d, want 0 and 0", m.Cursor, m.Offset)
	}
}
