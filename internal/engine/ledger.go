package engine

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tidemark-labs/tidemark/internal/types"
)

// positionEpsilon is the quantity below which a position counts as flat.
// Float partial fills can leave residue of ~1e-17 after a full close.
const positionEpsilon = 1e-8

// position tracks a signed holding together with its average entry price.
// Quantity is positive for longs and negative for shorts.
type position struct {
	quantity float64
	avgPrice float64
}

// Ledger is the in-memory cash and position book for a single run. Fills are
// applied in order; shorts are allowed and no margin is modeled, so cash may
// go negative on aggressive buys.
type Ledger struct {
	cash      decimal.Decimal
	positions map[string]*position
}

func NewLedger(initialCapital float64) *Ledger {
	return &Ledger{
		cash:      decimal.NewFromFloat(initialCapital),
		positions: make(map[string]*position),
	}
}

// Apply books a filled trade. It returns the realized PnL of the closing
// portion of the fill (zero when the fill opens or extends a position) and
// whether any part of the fill reduced an existing position.
func (l *Ledger) Apply(fill types.Fill) (realized float64, closing bool) {
	if fill.Rejected() {
		return 0, false
	}

	signed := fill.Quantity
	if fill.Side == types.SideSell {
		signed = -signed
	}

	value := decimal.NewFromFloat(fill.Price).Mul(decimal.NewFromFloat(fill.Quantity))
	commission := decimal.NewFromFloat(fill.Commission)
	if fill.Side == types.SideBuy {
		l.cash = l.cash.Sub(value).Sub(commission)
	} else {
		l.cash = l.cash.Add(value).Sub(commission)
	}

	pos, ok := l.positions[fill.Symbol]
	if !ok {
		pos = &position{}
		l.positions[fill.Symbol] = pos
	}

	prev := pos.quantity
	next := prev + signed

	switch {
	case prev == 0 || sameSign(prev, signed):
		// Opening or extending: update the average entry price.
		if next != 0 {
			prevCost := decimal.NewFromFloat(pos.avgPrice).Mul(decimal.NewFromFloat(prev))
			addCost := decimal.NewFromFloat(fill.Price).Mul(decimal.NewFromFloat(signed))
			avg, _ := prevCost.Add(addCost).Div(decimal.NewFromFloat(next)).Float64()
			pos.avgPrice = avg
		}
	case sameSign(prev, next) || next == 0:
		// Reducing or fully closing: realize PnL on the closed quantity.
		closedQty := signed // opposite sign of prev, all of it closes
		realized = realizedPnL(pos.avgPrice, fill.Price, -closedQty)
		closing = true
	default:
		// Crossing through zero: close the whole previous position, then
		// open the remainder at the fill price.
		realized = realizedPnL(pos.avgPrice, fill.Price, prev)
		closing = true
		pos.avgPrice = fill.Price
	}

	pos.quantity = next
	if math.Abs(next) < positionEpsilon {
		pos.quantity = 0
		delete(l.positions, fill.Symbol)
	}
	return realized, closing
}

// realizedPnL computes (exit - entry) * closedQty with decimal arithmetic,
// where closedQty carries the sign of the position being closed.
func realizedPnL(entry, exit, closedQty float64) float64 {
	diff := decimal.NewFromFloat(exit).Sub(decimal.NewFromFloat(entry))
	pnl, _ := diff.Mul(decimal.NewFromFloat(closedQty)).Float64()
	return pnl
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 {
	cash, _ := l.cash.Float64()
	return cash
}

// Quantity returns the signed position in a symbol, zero when flat.
func (l *Ledger) Quantity(symbol string) float64 {
	if pos, ok := l.positions[symbol]; ok {
		return pos.quantity
	}
	return 0
}

// Equity marks every open position at the given prices and returns cash plus
// position value. Symbols missing from prices are marked at their average
// entry price, which keeps equity defined on sparse bars.
func (l *Ledger) Equity(prices map[string]float64) float64 {
	total := l.cash
	for symbol, pos := range l.positions {
		price, ok := prices[symbol]
		if !ok {
			price = pos.avgPrice
		}
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(pos.quantity)))
	}
	equity, _ := total.Float64()
	return equity
}

// Snapshot returns a copy of the current cash and positions for handing to
// strategies. Mutating the snapshot does not affect the ledger.
func (l *Ledger) Snapshot() types.PositionSnapshot {
	positions := make(map[string]float64, len(l.positions))
	for symbol, pos := range l.positions {
		positions[symbol] = pos.quantity
	}
	return types.PositionSnapshot{
		Cash:      l.Cash(),
		Positions: positions,
	}
}

// OpenSymbols returns the symbols with non-zero positions in sorted order.
func (l *Ledger) OpenSymbols() []string {
	symbols := make([]string, 0, len(l.positions))
	for symbol := range l.positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
