// Package wheel reconstructs wheel-strategy cycles and share positions from a
// chronological trade ledger. The whole package is a pure batch computation:
// one call to Engine.Analyze consumes an immutable trade list and an explicit
// "now" and produces a deterministic Result with no shared state left behind.
package wheel

import (
	"fmt"

	"github.com/eddiefleurent/wheelhouse/internal/models"
)

// WarningKind identifies a data-quality issue found during analysis.
type WarningKind string

const (
	// WarnMalformedTrade: an option trade missing strike, type or expiry.
	// The trade is skipped, the rest of the batch proceeds.
	WarnMalformedTrade WarningKind = "malformed_trade"
	// WarnOutOfOrderLedger: a trade with an earlier timestamp than its
	// predecessor for the same symbol. The fold still trusts the given order.
	WarnOutOfOrderLedger WarningKind = "out_of_order_ledger"
	// WarnInsufficientLots: a stock sale exceeded the tracked open lots.
	WarnInsufficientLots WarningKind = "insufficient_lots"
	// WarnOrphanedOptionLeg: an option trade with no open cycle to attach to,
	// e.g. the closing side of a position opened before the ledger starts.
	WarnOrphanedOptionLeg WarningKind = "orphaned_option_leg"
)

// Warning is a single non-fatal data-quality finding.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Symbol  string      `json:"symbol,omitempty"`
	TradeID string      `json:"trade_id,omitempty"`
	Message string      `json:"message"`
}

// Report collects every warning raised during one analysis pass. Warnings are
// never thrown as errors: per-symbol problems must not abort other symbols.
type Report struct {
	Warnings []Warning `json:"warnings"`
}

func (r *Report) add(kind WarningKind, symbol, tradeID, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{
		Kind:    kind,
		Symbol:  symbol,
		TradeID: tradeID,
		Message: fmt.Sprintf(format, args...),
	})
}

// HasWarnings reports whether any warnings were collected.
func (r *Report) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// BySymbol returns the warnings recorded for one symbol.
func (r *Report) BySymbol(symbol string) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Symbol == symbol {
			out = append(out, w)
		}
	}
	return out
}

// ByKind returns the warnings of one kind.
func (r *Report) ByKind(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// InsufficientLotsError signals a stock sale that exceeded all tracked open
// lots. It is recoverable: the accountant finishes the symbol with the lots it
// has and flags the resulting position instead of aborting the pass.
type InsufficientLotsError struct {
	Symbol    string
	TradeID   string
	Requested int64
	Available int64
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("insufficient lots for %s: sale of %d shares exceeds %d tracked (trade %s)",
		e.Symbol, e.Requested, e.Available, e.TradeID)
}

// groupBySymbol partitions the ledger by underlying symbol, preserving the
// caller's chronological order within each group. Option legs land on their
// underlying, not their contract symbol.
func groupBySymbol(trades []models.Trade) map[string][]models.Trade {
	groups := make(map[string][]models.Trade)
	for i := range trades {
		sym := trades[i].UnderlyingSymbol()
		groups[sym] = append(groups[sym], trades[i])
	}
	return groups
}
