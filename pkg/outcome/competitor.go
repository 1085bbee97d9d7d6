package outcome

import "fmt"

// Competitor is one member of a comparison group. Everything except ID is
// carried through for reporting; none of it is read when scoring.
type Competitor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Team   string `json:"team,omitempty"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// Record returns the win-loss record formatted as "W-L".
func (c Competitor) Record() string {
	return fmt.Sprintf("%d-%d", c.Wins, c.Losses)
}

// DisplayName returns Name, falling back to ID when no name is set.
func (c Competitor) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
