// Package models provides data structures for ledger trades, wheel cycles,
// and share positions.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssetClass identifies the instrument class of a trade.
type AssetClass string

const (
	// AssetStock marks an equity leg.
	AssetStock AssetClass = "stock"
	// AssetOption marks an option leg.
	AssetOption AssetClass = "option"
)

// Valid returns true if the AssetClass is one of the defined constants.
func (a AssetClass) Valid() bool {
	switch a {
	case AssetStock, AssetOption:
		return true
	default:
		return false
	}
}

// Side identifies the direction of a trade.
type Side string

const (
	// SideBuy is a purchase.
	SideBuy Side = "buy"
	// SideSell is a sale.
	SideSell Side = "sell"
)

// Valid returns true if the Side is one of the defined constants.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OptionType identifies put vs call for option legs.
type OptionType string

const (
	// OptionPut is a put contract.
	OptionPut OptionType = "put"
	// OptionCall is a call contract.
	OptionCall OptionType = "call"
)

// Valid returns true if the OptionType is one of the defined constants.
func (o OptionType) Valid() bool {
	return o == OptionPut || o == OptionCall
}

// Trade is a single immutable ledger record. Quantity is stored as a positive
// magnitude with Side carrying direction. NetCash is the signed cash impact of
// the trade (positive = cash received). Strike, OptionType and Expiry are only
// meaningful when AssetClass is AssetOption.
type Trade struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Underlying string          `json:"underlying,omitempty"`
	AssetClass AssetClass      `json:"asset_class"`
	Side       Side            `json:"side"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	NetCash    decimal.Decimal `json:"net_cash"`
	Commission decimal.Decimal `json:"commission"`
	Timestamp  time.Time       `json:"timestamp"`
	Strike     decimal.Decimal `json:"strike,omitempty"`
	OptionType OptionType      `json:"option_type,omitempty"`
	Expiry     time.Time       `json:"expiry,omitempty"`
}

// UnderlyingSymbol returns the underlying symbol for the trade, falling back
// to the trade symbol when no explicit underlying is recorded. Cycle and
// position grouping always keys on this value so option legs land on their
// stock's ledger.
func (t *Trade) UnderlyingSymbol() string {
	if t.Underlying != "" {
		return t.Underlying
	}
	return t.Symbol
}

// TradeKind is the trade classification the cycle detector switches on. It is
// derived once at ingestion instead of re-checking asset class, option type
// and side at every transition.
type TradeKind int

const (
	// KindUnknown means the trade could not be classified.
	KindUnknown TradeKind = iota
	// KindStockBuy is a share purchase.
	KindStockBuy
	// KindStockSell is a share sale.
	KindStockSell
	// KindOptionSellPut opens (or adds to) a short put.
	KindOptionSellPut
	// KindOptionBuyPut closes a short put.
	KindOptionBuyPut
	// KindOptionSellCall opens (or adds to) a short call.
	KindOptionSellCall
	// KindOptionBuyCall closes a short call.
	KindOptionBuyCall
)

// String returns a short label for logging and warnings.
func (k TradeKind) String() string {
	switch k {
	case KindStockBuy:
		return "stock_buy"
	case KindStockSell:
		return "stock_sell"
	case KindOptionSellPut:
		return "option_sell_put"
	case KindOptionBuyPut:
		return "option_buy_put"
	case KindOptionSellCall:
		return "option_sell_call"
	case KindOptionBuyCall:
		return "option_buy_call"
	default:
		return "unknown"
	}
}

// Kind classifies the trade into one of the six tagged variants. Malformed
// trades classify as KindUnknown; use Validate to get the reason.
func (t *Trade) Kind() TradeKind {
	switch t.AssetClass {
	case AssetStock:
		switch t.Side {
		case SideBuy:
			return KindStockBuy
		case SideSell:
			return KindStockSell
		}
	case AssetOption:
		if t.Validate() != nil {
			return KindUnknown
		}
		switch {
		case t.OptionType == OptionPut && t.Side == SideSell:
			return KindOptionSellPut
		case t.OptionType == OptionPut && t.Side == SideBuy:
			return KindOptionBuyPut
		case t.OptionType == OptionCall && t.Side == SideSell:
			return KindOptionSellCall
		case t.OptionType == OptionCall && t.Side == SideBuy:
			return KindOptionBuyCall
		}
	}
	return KindUnknown
}

// IsOption returns true for option legs.
func (t *Trade) IsOption() bool {
	return t.AssetClass == AssetOption
}

// IsStock returns true for equity legs.
func (t *Trade) IsStock() bool {
	return t.AssetClass == AssetStock
}

// SignedQuantity returns the quantity with sale legs negated. Open-leg
// netting sums these: a short leg nets to zero once bought back.
func (t *Trade) SignedQuantity() int64 {
	if t.Side == SideSell {
		return -t.Quantity
	}
	return t.Quantity
}

// Validate checks the trade invariants. Every option trade must carry a
// strike, option type and expiry; quantities are positive magnitudes and
// commissions non-negative.
func (t *Trade) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("trade %s: missing symbol", t.ID)
	}
	if !t.AssetClass.Valid() {
		return fmt.Errorf("trade %s: invalid asset class %q", t.ID, t.AssetClass)
	}
	if !t.Side.Valid() {
		return fmt.Errorf("trade %s: invalid side %q", t.ID, t.Side)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("trade %s: quantity must be positive (got %d)", t.ID, t.Quantity)
	}
	if t.Commission.IsNegative() {
		return fmt.Errorf("trade %s: commission must be non-negative (got %s)", t.ID, t.Commission)
	}
	if t.AssetClass == AssetOption {
		if t.Strike.IsZero() || t.Strike.IsNegative() {
			return fmt.Errorf("trade %s: option leg missing strike", t.ID)
		}
		if !t.OptionType.Valid() {
			return fmt.Errorf("trade %s: option leg missing option type", t.ID)
		}
		if t.Expiry.IsZero() {
			return fmt.Errorf("trade %s: option leg missing expiry", t.ID)
		}
	}
	return nil
}
