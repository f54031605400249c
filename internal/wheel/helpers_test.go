package wheel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eddiefleurent/wheelhouse/internal/models"
)

// Test ledger builders. Day numbers index into January 2024; trade IDs are
// assigned sequentially by the builder so warnings can be asserted against.

var testSeq int

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(n int) time.Time {
	return time.Date(2024, 1, n, 15, 30, 0, 0, time.UTC)
}

func nextID() string {
	testSeq++
	return fmt.Sprintf("T%03d", testSeq)
}

func sellPut(sym string, strike, netCash, fee string, at, exp time.Time) models.Trade {
	return models.Trade{
		ID:         nextID(),
		Symbol:     sym + "-PUT",
		Underlying: sym,
		AssetClass: models.AssetOption,
		Side:       models.SideSell,
		Quantity:   1,
		Price:      d(netCash).Abs().Div(d("100")),
		NetCash:    d(netCash),
		Commission: d(fee),
		Timestamp:  at,
		Strike:     d(strike),
		OptionType: models.OptionPut,
		Expiry:     exp,
	}
}

func buyPut(sym string, strike, netCash, fee string, at, exp time.Time) models.Trade {
	t := sellPut(sym, strike, netCash, fee, at, exp)
	t.Side = models.SideBuy
	return t
}

func sellCall(sym string, strike, netCash, fee string, at, exp time.Time) models.Trade {
	t := sellPut(sym, strike, netCash, fee, at, exp)
	t.Symbol = sym + "-CALL"
	t.OptionType = models.OptionCall
	return t
}

func buyCall(sym string, strike, netCash, fee string, at, exp time.Time) models.Trade {
	t := sellCall(sym, strike, netCash, fee, at, exp)
	t.Side = models.SideBuy
	return t
}

func buyStock(sym string, qty int64, price, fee string, at time.Time) models.Trade {
	return models.Trade{
		ID:         nextID(),
		Symbol:     sym,
		AssetClass: models.AssetStock,
		Side:       models.SideBuy,
		Quantity:   qty,
		Price:      d(price),
		NetCash:    d(price).Mul(decimal.NewFromInt(qty)).Neg(),
		Commission: d(fee),
		Timestamp:  at,
	}
}

func sellStock(sym string, qty int64, price, fee string, at time.Time) models.Trade {
	t := buyStock(sym, qty, price, fee, at)
	t.Side = models.SideSell
	t.NetCash = t.NetCash.Neg()
	return t
}
