package outcome

import "strings"

// Match is one recorded bout between two competitors.
type Match struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
	Result string `json:"result,omitempty"` // e.g. "Dec 3-2", "Fall 1:32", "MFF"
	Date   string `json:"date,omitempty"`
	Event  string `json:"event,omitempty"`
}

// IsNoContest reports whether the match had no competitive outcome.
// No-contests produce no evidence of any kind.
func (m Match) IsNoContest() bool {
	r := normalizeResult(m.Result)
	return r == "nc" || strings.Contains(r, "no contest")
}

// IsMedical reports whether the match ended by medical forfeit or injury
// default. Such results count head-to-head but say nothing about relative
// strength through a third competitor, so they are excluded from
// common-opponent inference.
func (m Match) IsMedical() bool {
	r := normalizeResult(m.Result)
	for _, marker := range []string{"mffl", "mff", "m. for.", "medical forfeit", "inj", "injury"} {
		if strings.Contains(r, marker) {
			return true
		}
	}
	return false
}

func normalizeResult(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tally is one competitor's record against one opponent.
type tally struct{ wins, losses int }

// net is wins minus losses. Positive means a dominant record.
func (t tally) net() int { return t.wins - t.losses }

// BuildEvidence derives direct and common-opponent evidence from matches.
//
// Direct evidence counts every decided bout between two listed competitors.
// Common-opponent evidence is computed only for pairs that never met: for
// each opponent both faced, A earns one common-opponent win over B when A
// holds a winning record against that opponent and B a losing one. An
// opponent against whom either competitor is even (1-1, 2-2, ...) is
// treated as neutral.
//
// Matches involving unlisted competitors and no-contests are ignored.
// Output order is deterministic: by winner position, then loser position,
// direct evidence before common-opponent evidence.
func BuildEvidence(competitors []Competitor, matches []Match) []Evidence {
	n := len(competitors)
	index := make(map[string]int, n)
	for i, c := range competitors {
		index[c.ID] = i
	}

	wins := newCounts(n)     // wins[i][j]: direct wins of i over j
	records := newTallies(n) // records[i][j]: i's record against j, medical results excluded
	met := make([][]bool, n)
	for i := range met {
		met[i] = make([]bool, n)
	}

	for _, m := range matches {
		w, okW := index[m.Winner]
		l, okL := index[m.Loser]
		if !okW || !okL || w == l || m.IsNoContest() {
			continue
		}
		wins[w][l]++
		met[w][l], met[l][w] = true, true
		if m.IsMedical() {
			continue
		}
		records[w][l].wins++
		records[l][w].losses++
	}

	common := newCounts(n)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			if met[a][b] {
				continue
			}
			for opp := 0; opp < n; opp++ {
				if opp == a || opp == b {
					continue
				}
				an, bn := records[a][opp].net(), records[b][opp].net()
				switch {
				case an > 0 && bn < 0:
					common[a][b]++
				case an < 0 && bn > 0:
					common[b][a]++
				}
			}
		}
	}

	var evidence []Evidence
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if wins[i][j] > 0 {
				evidence = append(evidence, Evidence{
					Kind: Direct, Winner: competitors[i].ID, Loser: competitors[j].ID, Count: float64(wins[i][j]),
				})
			}
			if common[i][j] > 0 {
				evidence = append(evidence, Evidence{
					Kind: CommonOpponent, Winner: competitors[i].ID, Loser: competitors[j].ID, Count: float64(common[i][j]),
				})
			}
		}
	}
	return evidence
}

func newCounts(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

func newTallies(n int) [][]tally {
	m := make([][]tally, n)
	for i := range m {
		m[i] = make([]tally, n)
	}
	return m
}
