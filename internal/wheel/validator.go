package wheel

import (
	"sort"

	"github.com/eddiefleurent/wheelhouse/internal/models"
)

// FilterCycles screens out degenerate cycle records before they are exposed.
//
// Active cycles must hold at least one trade and positive premium: a cycle
// record without its initiating short put's cash is upstream data corruption,
// not a position. Completed cycles only need a trade; premium can legitimately
// be zero in an all-loss history, so no floor applies there.
//
// Active cycles come back sorted by start date descending, completed cycles
// by end date descending.
func FilterCycles(cycles []models.WheelCycle) (active, completed []models.WheelCycle) {
	for i := range cycles {
		c := cycles[i]
		switch c.Status {
		case models.CycleActive:
			if len(c.Trades) > 0 && c.PremiumCollected.IsPositive() {
				active = append(active, c)
			}
		case models.CycleCompleted:
			if len(c.Trades) > 0 {
				completed = append(completed, c)
			}
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].StartDate.After(active[j].StartDate)
	})
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].EndDate.After(completed[j].EndDate)
	})
	return active, completed
}
