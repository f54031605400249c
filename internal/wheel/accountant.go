package wheel

import (
	"github.com/shopspring/decimal"

	"github.com/eddiefleurent/wheelhouse/internal/models"
)

// lot is a single share purchase awaiting FIFO matching.
type lot struct {
	quantity int64
	price    decimal.Decimal
}

// BuildPosition computes one symbol's holding from its stock legs using
// strict FIFO matching. Option legs never touch cost basis: the shares an
// assignment produces show up as ordinary stock purchases in the ledger.
//
// An oversell (sale exceeding all tracked lots) returns a recoverable
// *InsufficientLotsError describing the first shortfall; the position is
// still returned, flagged as cost-basis unreliable, with the unmatched
// remainder left out of realized P&L rather than attributed at zero cost.
func BuildPosition(symbol string, trades []models.Trade) (models.Position, *InsufficientLotsError) {
	pos := models.Position{
		Symbol:      symbol,
		AverageCost: decimal.Zero,
		RealizedPnL: decimal.Zero,
	}

	var (
		lots      []lot
		quantity  int64
		totalCost = decimal.Zero
		shortfall *InsufficientLotsError
	)

	for i := range trades {
		t := trades[i]
		if !t.IsStock() || t.Validate() != nil {
			continue
		}

		switch t.Side {
		case models.SideBuy:
			lots = append(lots, lot{quantity: t.Quantity, price: t.Price})
			quantity += t.Quantity
			totalCost = totalCost.Add(t.Price.Mul(decimal.NewFromInt(t.Quantity)))

		case models.SideSell:
			remaining := t.Quantity
			for remaining > 0 && len(lots) > 0 {
				head := &lots[0]
				take := remaining
				if head.quantity < take {
					take = head.quantity
				}
				costBasis := head.price.Mul(decimal.NewFromInt(take))
				proceeds := t.Price.Mul(decimal.NewFromInt(take))
				pos.RealizedPnL = pos.RealizedPnL.Add(proceeds.Sub(costBasis))
				totalCost = totalCost.Sub(costBasis)
				quantity -= take
				head.quantity -= take
				if head.quantity == 0 {
					lots = lots[1:]
				}
				remaining -= take
			}
			if remaining > 0 && shortfall == nil {
				shortfall = &InsufficientLotsError{
					Symbol:    symbol,
					TradeID:   t.ID,
					Requested: t.Quantity,
					Available: t.Quantity - remaining,
				}
			}
		}
	}

	// A correctly fed ledger never goes negative; clamp if it does.
	if quantity < 0 {
		quantity = 0
	}
	pos.Quantity = quantity
	if quantity > 0 {
		pos.AverageCost = totalCost.Div(decimal.NewFromInt(quantity))
	}
	if shortfall != nil {
		pos.CostBasisUnreliable = true
	}
	return pos, shortfall
}
