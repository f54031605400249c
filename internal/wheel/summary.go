package wheel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the at-a-glance roll-up of one analysis pass, used by the
// one-shot CLI printout and the /api/summary endpoint.
type Summary struct {
	GeneratedAt      time.Time       `json:"generated_at"`
	Symbols          int             `json:"symbols"`
	ActiveCycles     int             `json:"active_cycles"`
	CompletedCycles  int             `json:"completed_cycles"`
	WinningCycles    int             `json:"winning_cycles"`
	LosingCycles     int             `json:"losing_cycles"`
	WinRate          float64         `json:"win_rate"`
	PremiumCollected decimal.Decimal `json:"premium_collected"`
	TotalFees        decimal.Decimal `json:"total_fees"`
	CycleNetProfit   decimal.Decimal `json:"cycle_net_profit"`
	RealizedPnL      decimal.Decimal `json:"realized_pnl"`
	Warnings         int             `json:"warnings"`
}

// Summary aggregates the pass into per-run statistics. Win rate counts
// completed cycles with positive net profit; premium and fees span both
// active and completed cycles.
func (r *Result) Summary() Summary {
	s := Summary{
		GeneratedAt:      r.generatedAt,
		Symbols:          len(r.positions),
		ActiveCycles:     len(r.active),
		CompletedCycles:  len(r.completed),
		PremiumCollected: decimal.Zero,
		TotalFees:        decimal.Zero,
		CycleNetProfit:   decimal.Zero,
		RealizedPnL:      decimal.Zero,
		Warnings:         len(r.report.Warnings),
	}

	for i := range r.active {
		s.PremiumCollected = s.PremiumCollected.Add(r.active[i].PremiumCollected)
		s.TotalFees = s.TotalFees.Add(r.active[i].TotalFees)
	}
	for i := range r.completed {
		c := &r.completed[i]
		s.PremiumCollected = s.PremiumCollected.Add(c.PremiumCollected)
		s.TotalFees = s.TotalFees.Add(c.TotalFees)
		s.CycleNetProfit = s.CycleNetProfit.Add(c.NetProfit)
		if c.NetProfit.IsPositive() {
			s.WinningCycles++
		} else {
			s.LosingCycles++
		}
	}
	for _, pos := range r.positions {
		s.RealizedPnL = s.RealizedPnL.Add(pos.RealizedPnL)
	}

	if s.CompletedCycles > 0 {
		s.WinRate = float64(s.WinningCycles) / float64(s.CompletedCycles) * 100
	}
	return s
}
