// Package ledger provides trade-ledger sources for the analysis engine: a
// JSON file export and a brokerage history API client. Both normalize raw
// records into models.Trade and hand the engine a chronologically sorted
// batch, since the engine trusts ordering and never re-sorts.
package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/eddiefleurent/wheelhouse/internal/models"
)

// Source is a TradeLedger collaborator: anything that can produce the full
// chronological trade history for analysis.
type Source interface {
	Trades(ctx context.Context) ([]models.Trade, error)
}

// SortChronological orders trades by timestamp ascending, preserving the
// source order of equal timestamps.
func SortChronological(trades []models.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp.Before(trades[j].Timestamp)
	})
}

// Normalize cleans up the fields brokers are sloppy about: enum casing,
// whitespace in symbols, negative quantity magnitudes. Sign conventions on
// NetCash are left alone; the engine tolerates both by taking absolute
// values where a transition needs a premium amount.
func Normalize(t *models.Trade) {
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	t.Underlying = strings.ToUpper(strings.TrimSpace(t.Underlying))
	t.AssetClass = models.AssetClass(strings.ToLower(string(t.AssetClass)))
	t.Side = models.Side(strings.ToLower(string(t.Side)))
	t.OptionType = models.OptionType(strings.ToLower(string(t.OptionType)))
	if t.Quantity < 0 {
		t.Quantity = -t.Quantity
	}
}
