package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestWheelCycle_NetOptionPremiums(t *testing.T) {
	sellPut := optTrade(SideSell, OptionPut)
	sellPut.NetCash = decimal.NewFromInt(200)
	sellCall := optTrade(SideSell, OptionCall)
	sellCall.NetCash = decimal.NewFromInt(150)
	buyCall := optTrade(SideBuy, OptionCall)
	buyCall.NetCash = decimal.NewFromInt(-80) // debit; must not count
	stock := stockTrade(SideBuy)

	c := WheelCycle{Trades: []Trade{sellPut, stock, sellCall, buyCall}}
	if got := c.NetOptionPremiums(); !got.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("NetOptionPremiums() = %s, want 350", got)
	}
}

func TestWheelCycle_TradeShapeHelpers(t *testing.T) {
	c := WheelCycle{Trades: []Trade{
		optTrade(SideSell, OptionPut),
		stockTrade(SideBuy),
		optTrade(SideSell, OptionCall),
	}}

	if !c.HasStockPurchase() {
		t.Error("HasStockPurchase() = false, want true")
	}
	if !c.HasCallSale() {
		t.Error("HasCallSale() = false, want true")
	}
	if c.HasStockSale() {
		t.Error("HasStockSale() = true, want false")
	}
	if c.OnlyPuts() {
		t.Error("OnlyPuts() = true, want false")
	}
}

func TestWheelCycle_OnlyPuts(t *testing.T) {
	c := WheelCycle{Trades: []Trade{
		optTrade(SideSell, OptionPut),
		optTrade(SideBuy, OptionPut),
	}}
	if !c.OnlyPuts() {
		t.Fatal("OnlyPuts() = false for a cycle of put legs only")
	}

	empty := WheelCycle{}
	if empty.OnlyPuts() {
		t.Fatal("OnlyPuts() = true for an empty cycle")
	}
}

func TestWheelCycle_SafeStrike(t *testing.T) {
	// assigned at 150 with 100 shares, 350 premium and 4 in fees:
	// 150 - (350-4)/100 = 146.54
	c := WheelCycle{
		Assigned:         true,
		AssignmentPrice:  decimal.NewFromInt(150),
		SharesAssigned:   100,
		TotalFees:        decimal.NewFromInt(4),
		PremiumCollected: decimal.NewFromInt(350),
		Trades: []Trade{
			func() Trade {
				tr := optTrade(SideSell, OptionPut)
				tr.NetCash = decimal.NewFromInt(200)
				return tr
			}(),
			func() Trade {
				tr := optTrade(SideSell, OptionCall)
				tr.NetCash = decimal.NewFromInt(150)
				return tr
			}(),
		},
	}

	want := decimal.RequireFromString("146.54")
	if got := c.SafeStrike(); !got.Equal(want) {
		t.Fatalf("SafeStrike() = %s, want %s", got, want)
	}
}

func TestWheelCycle_SafeStrike_NoAssignment(t *testing.T) {
	c := WheelCycle{}
	if got := c.SafeStrike(); !got.IsZero() {
		t.Fatalf("SafeStrike() without assignment = %s, want 0", got)
	}
}

func TestWheelCycle_Validate(t *testing.T) {
	base := func() WheelCycle {
		return WheelCycle{
			ID:               "c1",
			Symbol:           "AAPL",
			StartDate:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Status:           CycleActive,
			Type:             CyclePutExpired,
			Trades:           []Trade{optTrade(SideSell, OptionPut)},
			PremiumCollected: decimal.NewFromInt(200),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*WheelCycle)
		wantErr bool
	}{
		{"valid active", func(*WheelCycle) {}, false},
		{"negative premium", func(c *WheelCycle) { c.PremiumCollected = decimal.NewFromInt(-1) }, true},
		{"negative fees", func(c *WheelCycle) { c.TotalFees = decimal.NewFromInt(-1) }, true},
		{"active with end date", func(c *WheelCycle) { c.EndDate = c.StartDate.Add(time.Hour) }, true},
		{"completed without end date", func(c *WheelCycle) { c.Status = CycleCompleted }, true},
		{"valid completed", func(c *WheelCycle) {
			c.Status = CycleCompleted
			c.EndDate = c.StartDate.Add(24 * time.Hour)
		}, false},
		{"completed without trades", func(c *WheelCycle) {
			c.Status = CycleCompleted
			c.EndDate = c.StartDate.Add(24 * time.Hour)
			c.Trades = nil
		}, true},
		{"assigned without shares", func(c *WheelCycle) { c.Assigned = true }, true},
		{"bad status", func(c *WheelCycle) { c.Status = "pending" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
