package wheel

import (
	"time"

	"github.com/eddiefleurent/wheelhouse/internal/models"
)

// legKey identifies an option series within a cycle for open-leg netting.
type legKey struct {
	strike  string
	optType models.OptionType
}

// ResolveExpirations closes cycles whose open option legs have all passed
// their expiry with no closing trade recorded. Expiration and assignment are
// never explicit ledger rows, so this post-pass infers them: a leg is open
// while its signed quantities (sell = -, buy = +) do not net to zero.
//
// "now" is an explicit parameter; the pass is a pure function of it.
func ResolveExpirations(cycles []models.WheelCycle, now time.Time) []models.WheelCycle {
	today := now.UTC().Truncate(24 * time.Hour)

	for i := range cycles {
		c := &cycles[i]
		if c.Status != models.CycleActive {
			continue
		}

		openLegs := openOptionLegs(c)
		if len(openLegs) == 0 {
			// Every short leg was bought back; nothing left to expire.
			// The cycle stays open until shares are sold or a new put rolls it.
			continue
		}

		allPast := true
		var latest time.Time
		for _, leg := range openLegs {
			exp := leg.Expiry.UTC().Truncate(24 * time.Hour)
			if !exp.Before(today) {
				allPast = false
				break
			}
			if exp.After(latest) {
				latest = exp
			}
		}
		if !allPast {
			continue
		}

		c.EndDate = latest
		c.Status = models.CycleCompleted
		c.Type = classifyExpired(c)
		if c.Assigned && c.SafeStrikePrice.IsZero() {
			c.SafeStrikePrice = c.SafeStrike()
		}
	}
	return cycles
}

// openOptionLegs nets the cycle's option trades per (strike, type) and
// returns one representative trade per series whose net quantity is nonzero.
func openOptionLegs(c *models.WheelCycle) []models.Trade {
	net := make(map[legKey]int64)
	repr := make(map[legKey]models.Trade)
	var order []legKey

	for _, t := range c.OptionLegs() {
		k := legKey{strike: t.Strike.String(), optType: t.OptionType}
		if _, seen := net[k]; !seen {
			order = append(order, k)
		}
		net[k] += t.SignedQuantity()
		repr[k] = t
	}

	var open []models.Trade
	for _, k := range order {
		if net[k] != 0 {
			open = append(open, repr[k])
		}
	}
	return open
}

// classifyExpired maps an expired cycle's trade history onto its final type.
//
// Two branches are kept deliberately, matching long-standing behavior:
// a cycle holding nothing but put legs takes the dedicated only-puts branch,
// and the general branch collapses "assigned, covered, call expired" and
// "assigned, never covered" into the same label.
func classifyExpired(c *models.WheelCycle) models.CycleType {
	if c.OnlyPuts() {
		return models.CyclePutExpired
	}

	hasStock := c.HasStockPurchase()
	hasCallSale := c.HasCallSale()
	hasStockSale := c.HasStockSale()

	switch {
	case hasStock && hasCallSale && hasStockSale:
		return models.CyclePutAssignedCallAssigned
	case hasStock:
		return models.CyclePutAssignedCallExpired
	default:
		return models.CyclePutExpired
	}
}
