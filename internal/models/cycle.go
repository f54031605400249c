package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CycleStatus represents the lifecycle state of a wheel cycle.
type CycleStatus string

const (
	// CycleActive means the cycle is still open (short option or held shares).
	CycleActive CycleStatus = "active"
	// CycleCompleted means the cycle has concluded and is frozen.
	CycleCompleted CycleStatus = "completed"
)

// CycleType classifies how a cycle concluded.
type CycleType string

const (
	// CyclePutExpired: the short put expired (or is presumed to) without assignment.
	CyclePutExpired CycleType = "put_expired"
	// CyclePutAssignedCallExpired: shares were assigned and kept; any covered
	// call expired or was never sold.
	CyclePutAssignedCallExpired CycleType = "put_assigned_call_expired"
	// CyclePutAssignedCallAssigned: shares were assigned and later called away
	// or sold, closing the full wheel.
	CyclePutAssignedCallAssigned CycleType = "put_assigned_call_assigned"
)

// Valid returns true if the CycleType is one of the defined constants.
func (c CycleType) Valid() bool {
	switch c {
	case CyclePutExpired, CyclePutAssignedCallExpired, CyclePutAssignedCallAssigned:
		return true
	default:
		return false
	}
}

// WheelCycle aggregates one pass through the wheel for a single symbol:
// sell put, optional assignment, optional covered calls, optional call-away.
// The detector mutates it while the cycle is active; once Status transitions
// to CycleCompleted the record is frozen.
type WheelCycle struct {
	ID               string          `json:"id"`
	Symbol           string          `json:"symbol"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date,omitempty"`
	Status           CycleStatus     `json:"status"`
	Type             CycleType       `json:"cycle_type"`
	Trades           []Trade         `json:"trades"`
	PremiumCollected decimal.Decimal `json:"premium_collected"`
	TotalFees        decimal.Decimal `json:"total_fees"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	Assigned         bool            `json:"assigned"`
	AssignmentPrice  decimal.Decimal `json:"assignment_price,omitempty"`
	SharesAssigned   int64           `json:"shares_assigned,omitempty"`
	SafeStrikePrice  decimal.Decimal `json:"safe_strike_price,omitempty"`
}

// NetOptionPremiums sums the cash received from SELL option legs only.
// Buybacks do not reduce this figure; they are accounted through NetProfit.
func (c *WheelCycle) NetOptionPremiums() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Trades {
		t := &c.Trades[i]
		if t.IsOption() && t.Side == SideSell {
			total = total.Add(t.NetCash.Abs())
		}
	}
	return total
}

// HasStockPurchase reports whether any member trade is a share purchase.
func (c *WheelCycle) HasStockPurchase() bool {
	return c.hasKind(KindStockBuy)
}

// HasCallSale reports whether any member trade sold a call.
func (c *WheelCycle) HasCallSale() bool {
	return c.hasKind(KindOptionSellCall)
}

// HasStockSale reports whether any member trade sold shares.
func (c *WheelCycle) HasStockSale() bool {
	return c.hasKind(KindStockSell)
}

// OnlyPuts reports whether every member trade is a put option leg.
func (c *WheelCycle) OnlyPuts() bool {
	for i := range c.Trades {
		t := &c.Trades[i]
		if !t.IsOption() || t.OptionType != OptionPut {
			return false
		}
	}
	return len(c.Trades) > 0
}

func (c *WheelCycle) hasKind(k TradeKind) bool {
	for i := range c.Trades {
		if c.Trades[i].Kind() == k {
			return true
		}
	}
	return false
}

// OptionLegs returns the option member trades in ledger order.
func (c *WheelCycle) OptionLegs() []Trade {
	var legs []Trade
	for i := range c.Trades {
		if c.Trades[i].IsOption() {
			legs = append(legs, c.Trades[i])
		}
	}
	return legs
}

// SafeStrike computes the break-even share price for an assigned cycle:
// the assignment price reduced by net option premium per share after fees.
// Selling shares above this price keeps the whole cycle profitable.
// Returns zero when the cycle has no assignment data.
func (c *WheelCycle) SafeStrike() decimal.Decimal {
	if !c.Assigned || c.SharesAssigned == 0 {
		return decimal.Zero
	}
	perShare := c.NetOptionPremiums().Sub(c.TotalFees).Div(decimal.NewFromInt(c.SharesAssigned))
	return c.AssignmentPrice.Sub(perShare)
}

// Validate ensures the cycle state is consistent with strong invariants.
func (c *WheelCycle) Validate() error {
	if c.PremiumCollected.IsNegative() {
		return fmt.Errorf("cycle %s: premium collected cannot be negative (current: %s)",
			c.ID, c.PremiumCollected)
	}
	if c.TotalFees.IsNegative() {
		return fmt.Errorf("cycle %s: total fees cannot be negative (current: %s)",
			c.ID, c.TotalFees)
	}
	switch c.Status {
	case CycleActive:
		if !c.EndDate.IsZero() {
			return fmt.Errorf("cycle %s in state %s: EndDate must be zero for active cycles (current: %v)",
				c.ID, c.Status, c.EndDate)
		}
	case CycleCompleted:
		if c.EndDate.IsZero() {
			return fmt.Errorf("cycle %s in state %s: EndDate must be set for completed cycles", c.ID, c.Status)
		}
		if !c.Type.Valid() {
			return fmt.Errorf("cycle %s in state %s: cycle type must be set for completed cycles (current: %q)",
				c.ID, c.Status, c.Type)
		}
		if len(c.Trades) == 0 {
			return fmt.Errorf("cycle %s in state %s: Trades must be non-empty for completed cycles", c.ID, c.Status)
		}
	default:
		return fmt.Errorf("cycle %s: invalid status %q", c.ID, c.Status)
	}
	if c.Assigned && c.SharesAssigned <= 0 {
		return fmt.Errorf("cycle %s: SharesAssigned must be positive when assignment data is present (current: %d)",
			c.ID, c.SharesAssigned)
	}
	return nil
}
