package scoring

import "sort"

// Quality tiers used across the scanners.
const (
	TierLow     = "LOW"
	TierMedium  = "MEDIUM"
	TierHigh    = "HIGH"
	TierExtreme = "EXTREME"
)

// Detail records one point award and the condition behind it.
type Detail struct {
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// Card accumulates heuristic points for one ticker.
type Card struct {
	Ticker  string   `json:"ticker"`
	Points  int      `json:"points"`
	Details []Detail `json:"details,omitempty"`
}

// Add awards points unconditionally.
func (c *Card) Add(points int, reason string) {
	c.Points += points
	c.Details = append(c.Details, Detail{Reason: reason, Points: points})
}

// AddIf awards points when cond holds and reports whether it did.
func (c *Card) AddIf(cond bool, points int, reason string) bool {
	if cond {
		c.Add(points, reason)
	}
	return cond
}

// Cutoffs maps a summed score to a quality tier. Extreme is optional; zero
// disables it and the top tier becomes HIGH.
type Cutoffs struct {
	Medium  int
	High    int
	Extreme int
}

// Classify assigns the tier for a score.
func (c Cutoffs) Classify(score int) string {
	switch {
	case c.Extreme > 0 && score >= c.Extreme:
		return TierExtreme
	case score >= c.High:
		return TierHigh
	case score >= c.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// SortByPoints orders cards strongest first.
func SortByPoints(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].Points > cards[j].Points
	})
}
