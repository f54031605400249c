package wheel

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eddiefleurent/wheelhouse/internal/models"
)

// Engine is the analysis facade. It is stateless between calls: every
// Analyze pass rebuilds all derived state from the full ledger, so concurrent
// callers with different trade sets never interfere.
type Engine struct{}

// NewEngine creates an engine. No configuration is needed; all inputs arrive
// per call.
func NewEngine() *Engine {
	return &Engine{}
}

// Result is the immutable outcome of one analysis pass.
type Result struct {
	generatedAt    time.Time
	rawTrades      []models.Trade
	cyclesBySymbol map[string][]models.WheelCycle
	positions      map[string]models.Position
	active         []models.WheelCycle
	completed      []models.WheelCycle
	openLegs       []models.Trade
	lastPrice      map[string]decimal.Decimal
	report         *Report
}

// Analyze reconstructs cycles and positions from the ledger. Trades must be
// chronologically sorted by the caller; ordering is checked (warning only),
// never repaired. "now" drives expiration inference and nothing else, keeping
// the pass a pure function of its inputs.
func (e *Engine) Analyze(trades []models.Trade, now time.Time) *Result {
	res := &Result{
		generatedAt:    now,
		rawTrades:      append([]models.Trade(nil), trades...),
		cyclesBySymbol: make(map[string][]models.WheelCycle),
		positions:      make(map[string]models.Position),
		lastPrice:      make(map[string]decimal.Decimal),
		report:         &Report{},
	}

	groups := groupBySymbol(trades)
	symbols := make([]string, 0, len(groups))
	for sym := range groups {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	detector := NewDetector(res.report)
	for _, sym := range symbols {
		symTrades := groups[sym]

		cycles := detector.Detect(sym, symTrades)
		cycles = ResolveExpirations(cycles, now)
		active, completed := FilterCycles(cycles)

		pos, shortfall := BuildPosition(sym, symTrades)
		if shortfall != nil {
			res.report.add(WarnInsufficientLots, sym, shortfall.TradeID, "%v", shortfall)
		}
		pos.ActiveCycles = active
		pos.CompletedCycles = completed

		res.cyclesBySymbol[sym] = append(append([]models.WheelCycle(nil), completed...), active...)
		res.positions[sym] = pos
		res.active = append(res.active, active...)
		res.completed = append(res.completed, completed...)

		if price, ok := latestPrice(symTrades); ok {
			res.lastPrice[sym] = price
		}
	}

	sort.SliceStable(res.active, func(i, j int) bool {
		return res.active[i].StartDate.After(res.active[j].StartDate)
	})
	sort.SliceStable(res.completed, func(i, j int) bool {
		return res.completed[i].EndDate.After(res.completed[j].EndDate)
	})
	res.openLegs = netOpenLegs(trades, now)

	return res
}

// latestPrice returns the most recent observed trade price for the symbol's
// group. Not authoritative market data; downstream valuation treats it as a
// stale fallback.
func latestPrice(trades []models.Trade) (decimal.Decimal, bool) {
	for i := len(trades) - 1; i >= 0; i-- {
		if trades[i].Validate() == nil {
			return trades[i].Price, true
		}
	}
	return decimal.Zero, false
}

// openLegKey identifies an option series ledger-wide.
type openLegKey struct {
	underlying string
	strike     string
	expiry     string
	optType    models.OptionType
}

// netOpenLegs aggregates option trades by strike/expiry/type into net open
// positions and synthesizes one representative trade per series carrying the
// net quantity. Series already past expiry are not open and are dropped.
func netOpenLegs(trades []models.Trade, now time.Time) []models.Trade {
	today := now.UTC().Truncate(24 * time.Hour)

	net := make(map[openLegKey]int64)
	repr := make(map[openLegKey]models.Trade)
	var order []openLegKey

	for i := range trades {
		t := trades[i]
		if !t.IsOption() || t.Validate() != nil {
			continue
		}
		k := openLegKey{
			underlying: t.UnderlyingSymbol(),
			strike:     t.Strike.String(),
			expiry:     t.Expiry.UTC().Truncate(24 * time.Hour).Format("2006-01-02"),
			optType:    t.OptionType,
		}
		if _, seen := net[k]; !seen {
			order = append(order, k)
		}
		net[k] += t.SignedQuantity()
		repr[k] = t
	}

	var legs []models.Trade
	for _, k := range order {
		n := net[k]
		if n == 0 {
			continue
		}
		leg := repr[k]
		if leg.Expiry.UTC().Truncate(24*time.Hour).Before(today) {
			continue
		}
		if n < 0 {
			leg.Side = models.SideSell
			leg.Quantity = -n
		} else {
			leg.Side = models.SideBuy
			leg.Quantity = n
		}
		legs = append(legs, leg)
	}
	return legs
}

// CyclesBySymbol returns the validated cycles per symbol, completed first.
func (r *Result) CyclesBySymbol() map[string][]models.WheelCycle {
	return r.cyclesBySymbol
}

// Positions returns the derived share position per symbol.
func (r *Result) Positions() map[string]models.Position {
	return r.positions
}

// ActiveCycles returns all active cycles across symbols, newest start first.
func (r *Result) ActiveCycles() []models.WheelCycle {
	return r.active
}

// CompletedCycles returns all completed cycles across symbols, newest end first.
func (r *Result) CompletedCycles() []models.WheelCycle {
	return r.completed
}

// ActiveOptionLegs returns the net open option positions as representative
// trade records carrying the net quantity.
func (r *Result) ActiveOptionLegs() []models.Trade {
	return r.openLegs
}

// LatestTradePrice returns the most recent observed trade price for a symbol.
func (r *Result) LatestTradePrice(symbol string) (decimal.Decimal, bool) {
	price, ok := r.lastPrice[symbol]
	return price, ok
}

// RawTrades returns the full ledger as given, including trades that warnings
// dropped from cycle accounting.
func (r *Result) RawTrades() []models.Trade {
	return r.rawTrades
}

// Report returns the data-quality warnings collected during the pass.
func (r *Result) Report() *Report {
	return r.report
}

// GeneratedAt returns the "now" the pass was computed against.
func (r *Result) GeneratedAt() time.Time {
	return r.generatedAt
}
