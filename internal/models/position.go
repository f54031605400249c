package models

import (
	"github.com/shopspring/decimal"
)

// Position is the derived share holding for one symbol, rebuilt from the
// stock legs of the ledger on every analysis pass. Options never touch cost
// basis directly; the shares an assignment produces arrive as ordinary stock
// trades.
type Position struct {
	Symbol      string          `json:"symbol"`
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	// CostBasisUnreliable is set when a sale exceeded the tracked lots, so
	// AverageCost and RealizedPnL under-attribute the unmatched remainder.
	CostBasisUnreliable bool `json:"cost_basis_unreliable,omitempty"`
	// Cycles are cross-referenced from the detector output, not derived here.
	ActiveCycles    []WheelCycle `json:"active_cycles,omitempty"`
	CompletedCycles []WheelCycle `json:"completed_cycles,omitempty"`
}

// HasShares reports whether the position currently holds stock.
func (p *Position) HasShares() bool {
	return p.Quantity > 0
}

// MarketValue returns the holding valued at the given price.
func (p *Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(p.Quantity))
}

// UnrealizedPnL returns the open gain against average cost at the given price.
// Zero when no shares are held.
func (p *Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	if p.Quantity <= 0 {
		return decimal.Zero
	}
	return price.Sub(p.AverageCost).Mul(decimal.NewFromInt(p.Quantity))
}
