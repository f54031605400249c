package wheel

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eddiefleurent/wheelhouse/internal/models"
)

func TestFilterCycles(t *testing.T) {
	trade := sellPut("AAPL", "150", "200", "1", day(2), day(9))

	cycles := []models.WheelCycle{
		// Healthy active cycle.
		{ID: "a1", Status: models.CycleActive, StartDate: day(2),
			Trades: []models.Trade{trade}, PremiumCollected: d("200")},
		// Corrupt: active with no trades.
		{ID: "a2", Status: models.CycleActive, StartDate: day(3), PremiumCollected: d("10")},
		// Corrupt: active with zero premium.
		{ID: "a3", Status: models.CycleActive, StartDate: day(4),
			Trades: []models.Trade{trade}, PremiumCollected: decimal.Zero},
		// Completed with zero premium is fine.
		{ID: "c1", Status: models.CycleCompleted, StartDate: day(5), EndDate: day(12),
			Type: models.CyclePutExpired, Trades: []models.Trade{trade}, PremiumCollected: decimal.Zero},
		// Completed with no trades is not.
		{ID: "c2", Status: models.CycleCompleted, StartDate: day(6), EndDate: day(13),
			Type: models.CyclePutExpired},
	}

	active, completed := FilterCycles(cycles)

	if len(active) != 1 || active[0].ID != "a1" {
		t.Fatalf("active = %+v, want only a1", ids(active))
	}
	if len(completed) != 1 || completed[0].ID != "c1" {
		t.Fatalf("completed = %+v, want only c1", ids(completed))
	}
}

func TestFilterCycles_SortOrder(t *testing.T) {
	trade := sellPut("AAPL", "150", "200", "1", day(2), day(9))
	mk := func(id string, status models.CycleStatus, start, end time.Time) models.WheelCycle {
		return models.WheelCycle{
			ID: id, Status: status, StartDate: start, EndDate: end,
			Type: models.CyclePutExpired, Trades: []models.Trade{trade}, PremiumCollected: d("200"),
		}
	}

	active, completed := FilterCycles([]models.WheelCycle{
		mk("a-old", models.CycleActive, day(2), time.Time{}),
		mk("a-new", models.CycleActive, day(8), time.Time{}),
		mk("c-old", models.CycleCompleted, day(2), day(9)),
		mk("c-new", models.CycleCompleted, day(5), day(16)),
	})

	if active[0].ID != "a-new" || active[1].ID != "a-old" {
		t.Errorf("active order = %v, want newest start first", ids(active))
	}
	if completed[0].ID != "c-new" || completed[1].ID != "c-old" {
		t.Errorf("completed order = %v, want newest end first", ids(completed))
	}
}

func ids(cycles []models.WheelCycle) []string {
	out := make([]string, len(cycles))
	for i, c := range cycles {
		out[i] = c.ID
	}
	return out
}
