package wheel

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eddiefleurent/wheelhouse/internal/models"
)

// cycleNamespace seeds deterministic cycle IDs so re-running the engine on an
// unchanged ledger yields identical output.
var cycleNamespace = uuid.MustParse("7f1ed63c-9a4b-4a72-b1d0-4c5a8f2e6d91")

func cycleID(symbol string, start time.Time, tradeID string) string {
	seed := symbol + "|" + start.UTC().Format(time.RFC3339Nano) + "|" + tradeID
	return uuid.NewSHA1(cycleNamespace, []byte(seed)).String()
}

// Detector folds one symbol's chronological trade sequence into wheel cycles.
// It enforces the one-active-cycle-per-symbol invariant: a new short put
// force-closes whatever cycle is still open before starting the next one.
type Detector struct {
	report *Report
}

// NewDetector creates a detector writing warnings into report.
func NewDetector(report *Report) *Detector {
	return &Detector{report: report}
}

// Detect folds the trades for one symbol into an ordered cycle list:
// closed cycles in close order, followed by at most one trailing open cycle.
// Trades must already be chronologically sorted by the caller; ordering is
// checked but never repaired.
func (d *Detector) Detect(symbol string, trades []models.Trade) []models.WheelCycle {
	var (
		cycles []models.WheelCycle
		open   *models.WheelCycle
		lastTS time.Time
	)

	for i := range trades {
		t := trades[i]

		if err := t.Validate(); err != nil {
			d.report.add(WarnMalformedTrade, symbol, t.ID, "skipping malformed trade: %v", err)
			continue
		}
		if !lastTS.IsZero() && t.Timestamp.Before(lastTS) {
			d.report.add(WarnOutOfOrderLedger, symbol, t.ID,
				"trade at %s observed after %s; cycle sequence may be wrong",
				t.Timestamp.Format(time.RFC3339), lastTS.Format(time.RFC3339))
		}
		lastTS = t.Timestamp

		var closed *models.WheelCycle
		open, closed = d.apply(open, t)
		if closed != nil {
			cycles = append(cycles, *closed)
		}
	}

	if open != nil {
		cycles = append(cycles, *open)
	}
	return cycles
}

// apply advances the cycle state machine by one trade. It returns the new
// open-cycle state and, when a closing condition fired, the cycle to emit.
// Transition rules are evaluated in strict precedence order; trades that
// match no rule flow through to the position accountant untouched.
func (d *Detector) apply(open *models.WheelCycle, t models.Trade) (*models.WheelCycle, *models.WheelCycle) {
	switch t.Kind() {
	case models.KindOptionSellPut:
		// A short put always starts a fresh cycle. A wheel cannot run two
		// independent cycles on the same name, so any open cycle is pushed
		// out first, still in whatever state it reached.
		closed := open
		return newCycle(t), closed

	case models.KindStockBuy:
		if open == nil {
			return nil, nil
		}
		// Share purchase during a cycle is read as put assignment. The
		// purchase converts cash to an asset, so only its fee hits profit.
		open.Trades = append(open.Trades, t)
		open.Assigned = true
		open.AssignmentPrice = t.Price
		open.SharesAssigned = t.Quantity
		open.TotalFees = open.TotalFees.Add(t.Commission.Abs())
		open.NetProfit = open.NetProfit.Sub(t.Commission.Abs())
		open.Type = models.CyclePutAssignedCallExpired
		return open, nil

	case models.KindOptionSellCall:
		if open == nil {
			d.orphan(t)
			return nil, nil
		}
		open.Trades = append(open.Trades, t)
		credit := t.NetCash.Abs()
		open.PremiumCollected = open.PremiumCollected.Add(credit)
		open.TotalFees = open.TotalFees.Add(t.Commission.Abs())
		open.NetProfit = open.NetProfit.Add(credit).Sub(t.Commission.Abs())
		return open, nil

	case models.KindOptionBuyCall, models.KindOptionBuyPut:
		if open == nil {
			d.orphan(t)
			return nil, nil
		}
		// Buying back a short leg closes it early at a cost.
		open.Trades = append(open.Trades, t)
		open.TotalFees = open.TotalFees.Add(t.Commission.Abs())
		open.NetProfit = open.NetProfit.Sub(t.NetCash.Abs()).Sub(t.Commission.Abs())
		return open, nil

	case models.KindStockSell:
		if open == nil || !open.Assigned {
			// Without assignment data this is a plain liquidation of shares
			// the cycle never produced; the accountant owns it.
			return open, nil
		}
		open.Trades = append(open.Trades, t)
		open.TotalFees = open.TotalFees.Add(t.Commission.Abs())
		// Recompute profit from scratch: share gain over the assignment
		// price plus premium net of fees. Incremental adjustment here would
		// double-count the purchase cost.
		shareGain := t.Price.Sub(open.AssignmentPrice).Mul(decimal.NewFromInt(t.Quantity))
		open.NetProfit = shareGain.Add(open.PremiumCollected).Sub(open.TotalFees)
		open.Type = models.CyclePutAssignedCallAssigned
		open.EndDate = t.Timestamp
		open.Status = models.CycleCompleted
		open.SafeStrikePrice = open.SafeStrike()
		return nil, open

	default:
		return open, nil
	}
}

func (d *Detector) orphan(t models.Trade) {
	d.report.add(WarnOrphanedOptionLeg, t.UnderlyingSymbol(), t.ID,
		"%s with no open cycle; dropped from cycle accounting", t.Kind())
}

// newCycle opens a cycle from its initiating short put. SELL trades should
// carry positive net cash, but sign inconsistencies in source data are
// tolerated by taking absolute values.
func newCycle(t models.Trade) *models.WheelCycle {
	premium := t.NetCash.Abs()
	fees := t.Commission.Abs()
	return &models.WheelCycle{
		ID:               cycleID(t.UnderlyingSymbol(), t.Timestamp, t.ID),
		Symbol:           t.UnderlyingSymbol(),
		StartDate:        t.Timestamp,
		Status:           models.CycleActive,
		Type:             models.CyclePutExpired, // provisional, reclassified on later events
		Trades:           []models.Trade{t},
		PremiumCollected: premium,
		TotalFees:        fees,
		NetProfit:        premium.Sub(fees),
	}
}
