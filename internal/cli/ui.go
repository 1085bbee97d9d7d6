package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/ranking"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors, anomalies
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleAnomaly for contradicted results.
	StyleAnomaly = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleBorder  = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Stats Display
// =============================================================================

// formatStats renders group statistics on a single line.
func formatStats(competitors, edges int, score float64, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d competitors", competitors),
		fmt.Sprintf("%d edges", edges),
		"score " + formatScore(score),
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	return line + StyleDim.Render(" · ") + statusStyle.Render(status)
}

// formatStages renders the score after each optimizer stage, e.g.
// "pagerank 12 → mfas 9 → annealing 7 → local_search 6.5".
func formatStages(stages []ranking.Stage) string {
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = s.Name + " " + StyleNumber.Render(formatScore(s.Score))
	}
	return strings.Join(parts, StyleDim.Render(" "+iconArrow+" "))
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// =============================================================================
// Tables
// =============================================================================

// renderRankingTable renders ranking rows. limit <= 0 shows every row.
func renderRankingTable(rows []ranking.Ranking, limit int) string {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{strconv.Itoa(r.Rank), rowName(r), r.Team, r.Record}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("#", "Name", "Team", "Record").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Inherit(styleHeader)
			case col == 0:
				return base.Foreground(colorCyan).Align(lipgloss.Right)
			case col == 1:
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorGray)
		}).
		Render()
}

// renderAnomalyTable lists contradicted results: the lower-ranked winner,
// the higher-ranked competitor they beat, and the evidence weight. rows is
// the ranking the anomalies were computed against.
func renderAnomalyTable(rows []ranking.Ranking, anomalies []ranking.Anomaly, limit int) string {
	if limit > 0 && len(anomalies) > limit {
		anomalies = anomalies[:limit]
	}
	data := make([][]string, len(anomalies))
	for i, a := range anomalies {
		winner, loser := rows[a.LowerRank-1], rows[a.HigherRank-1]
		data[i] = []string{
			fmt.Sprintf("#%d %s", a.LowerRank, rowName(winner)),
			fmt.Sprintf("#%d %s", a.HigherRank, rowName(loser)),
			formatScore(a.Weight),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("Winner", "Ranked above", "Weight").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Inherit(styleHeader)
			case col == 2:
				return base.Inherit(StyleAnomaly).Align(lipgloss.Right)
			}
			return base.Foreground(colorWhite)
		}).
		Render()
}

// =============================================================================
// Utilities
// =============================================================================

func rowName(r ranking.Ranking) string {
	if r.Name == "" {
		return r.ID
	}
	return r.Name
}

// formatRelativeTime renders t relative to now for recent times.
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
