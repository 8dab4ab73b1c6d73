package market

import (
	"math"
	"time"

	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ChangePercent returns (current - reference) / reference * 100, unrounded.
// Callers round only for display.
func ChangePercent(current, reference float64) decimal.Decimal {
	ref := decimal.NewFromFloat(reference)
	return decimal.NewFromFloat(current).Sub(ref).Div(ref).Mul(hundred)
}

// ReferencePrice picks the baseline for the percent change according to policy.
// ok is false when the series carries no usable reference.
func ReferencePrice(policy string, series core.Series) (float64, bool) {
	var ref float64
	switch policy {
	case config.ReferencePrevClose:
		ref = series.PreviousClose
	default:
		ref = math.NaN()
		for _, c := range series.Candles {
			if !math.IsNaN(c.Open) {
				ref = c.Open
				break
			}
		}
	}
	if math.IsNaN(ref) || math.IsInf(ref, 0) || ref == 0 {
		return 0, false
	}
	return ref, true
}

// LatestClose returns the close of the newest candle that has one.
func LatestClose(series core.Series) (float64, bool) {
	for i := len(series.Candles) - 1; i >= 0; i-- {
		if c := series.Candles[i].Close; !math.IsNaN(c) {
			return c, true
		}
	}
	return 0, false
}

// Breached reports whether the change reaches the threshold in either direction.
func Breached(change decimal.Decimal, threshold float64) bool {
	return change.Abs().GreaterThanOrEqual(decimal.NewFromFloat(threshold))
}

// CoolingDown reports whether an alert sent at last still suppresses a new one at now.
func CoolingDown(last *time.Time, now time.Time, cooldown time.Duration) bool {
	if last == nil {
		return false
	}
	return now.Sub(*last) <= cooldown
}

func direction(change decimal.Decimal) core.Direction {
	if change.IsNegative() {
		return core.DirectionDown
	}
	return core.DirectionUp
}
