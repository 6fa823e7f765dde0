// Package numeric provides the shared decimal arithmetic context used by the
// calculation engine. The context is an explicit value threaded into every
// ledger and engine constructor, so concurrent runs and tests cannot
// interfere through process-wide settings.
package numeric

import "github.com/shopspring/decimal"

// Rounding selects the rounding mode applied when quantizing values.
type Rounding int

const (
	// RoundHalfUp rounds half away from zero (commercial rounding).
	RoundHalfUp Rounding = iota
	// RoundHalfEven rounds half to the nearest even digit (banker's rounding).
	RoundHalfEven
)

// Display precisions. Intermediate arithmetic stays unrounded; these apply
// only at output boundaries.
const (
	centPlaces     = 2 // monetary totals
	unitPlaces     = 6 // per-unit costs and proceeds
	quantityPlaces = 8 // share / contract quantities
)

// tolerance is the numeric slack allowed when comparing quantities, e.g. for
// FIFO insufficiency checks and end-of-year reconciliation.
var tolerance = decimal.New(1, -10)

// Context carries the precision and rounding settings for one engine run.
type Context struct {
	// DivisionPrecision is the number of decimal places kept by Div.
	DivisionPrecision int32
	// Rounding is the mode used by the quantization helpers.
	Rounding Rounding
}

// DefaultContext returns the engine default: 28 digits of division
// precision, half-up rounding.
func DefaultContext() Context {
	return Context{DivisionPrecision: 28, Rounding: RoundHalfUp}
}

// Div divides a by b at the context's division precision.
// Dividing by zero returns zero; callers guard against zero-quantity lots
// before dividing.
func (c Context) Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, c.DivisionPrecision)
}

func (c Context) round(d decimal.Decimal, places int32) decimal.Decimal {
	if c.Rounding == RoundHalfEven {
		return d.RoundBank(places)
	}
	return d.Round(places)
}

// Cents quantizes a monetary total to cent precision.
func (c Context) Cents(d decimal.Decimal) decimal.Decimal {
	return c.round(d, centPlaces)
}

// Unit quantizes a per-unit value to micro-unit precision.
func (c Context) Unit(d decimal.Decimal) decimal.Decimal {
	return c.round(d, unitPlaces)
}

// Quantity quantizes a share or contract quantity to 8 decimal places.
func (c Context) Quantity(d decimal.Decimal) decimal.Decimal {
	return c.round(d, quantityPlaces)
}

// Tolerance returns the comparison slack (1e-10) used for quantity checks.
func Tolerance() decimal.Decimal {
	return tolerance
}

// WithinTolerance reports whether a and b differ by at most Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().Cmp(tolerance) <= 0
}
