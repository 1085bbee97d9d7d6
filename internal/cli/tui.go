package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// GroupPickerModel - Interactive group selection
// =============================================================================

// GroupEntry summarizes one group file in a directory.
type GroupEntry struct {
	Path        string
	Name        string
	Competitors int
	Matches     int
	Evidence    int
	Err         error // set when the file could not be read
}

// Rankable reports whether the group has anything to rank.
func (e GroupEntry) Rankable() bool {
	return e.Err == nil && e.Competitors > 0
}

// loadGroupEntries reads every group file in dir. Unreadable files are kept
// as entries with Err set so the picker can show them dimmed.
func loadGroupEntries(dir string) ([]GroupEntry, error) {
	paths, err := outcome.GroupFiles(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "list groups in %s", dir)
	}
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeNoData, "no group files in %s", dir)
	}
	entries := make([]GroupEntry, len(paths))
	for i, path := range paths {
		entries[i] = GroupEntry{Path: path, Name: strings.TrimSuffix(filepath.Base(path), ".json")}
		g, err := outcome.LoadGroup(path)
		if err != nil {
			entries[i].Err = err
			continue
		}
		entries[i].Name = g.Name
		entries[i].Competitors = len(g.Competitors)
		entries[i].Matches = len(g.Matches)
		entries[i].Evidence = len(g.Evidence)
	}
	return entries, nil
}

// GroupPickerModel is the bubbletea model for choosing which group to rank.
type GroupPickerModel struct {
	Groups   []GroupEntry
	Cursor   int
	Selected *GroupEntry
	Height   int
	Offset   int
}

// NewGroupPickerModel creates a picker over groups.
func NewGroupPickerModel(groups []GroupEntry) GroupPickerModel {
	return GroupPickerModel{
		Groups: groups,
		Height: 15,
	}
}

func (m GroupPickerModel) Init() tea.Cmd {
	return nil
}

func (m GroupPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Groups)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			g := m.Groups[m.Cursor]
			if !g.Rankable() {
				return m, nil
			}
			m.Selected = &g
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m GroupPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Group"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Groups))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		g := m.Groups[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		competitors, matches := "—", "—"
		if g.Err == nil {
			competitors = strconv.Itoa(g.Competitors)
			matches = strconv.Itoa(g.Matches + g.Evidence)
		}
		rows = append(rows, []string{cursor, g.Name, competitors, matches, filepath.Base(g.Path)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("", "Group", "Competitors", "Results", "File").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Groups) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 4 {
				base = base.Foreground(colorDim)
			}
			switch {
			case !m.Groups[idx].Rankable():
				return base.Foreground(colorDim)
			case idx == m.Cursor && col != 4:
				return base.Foreground(colorGreen).Bold(true)
			case idx == m.Cursor:
				return base.Bold(true)
			case col == 1:
				return base.Foreground(colorWhite)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Groups))))

	return b.String()
}

// pickGroup runs the picker and returns the chosen group file, or "" when
// the user quit without choosing.
func pickGroup(dir string) (string, error) {
	entries, err := loadGroupEntries(dir)
	if err != nil {
		return "", err
	}
	final, err := tea.NewProgram(NewGroupPickerModel(entries)).Run()
	if err != nil {
		return "", fmt.Errorf("group picker: %w", err)
	}
	if sel := final.(GroupPickerModel).Selected; sel != nil {
		return sel.Path, nil
	}
	return "", nil
}
