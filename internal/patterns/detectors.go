package patterns

import (
	"math"

	"candlescan/models"
)

// Detection thresholds, expressed as fractions of the bar's high-low range.
const (
	dojiMaxBodyPct  = 0.05
	minBodyPct      = 0.10
	longWickMin     = 0.60
	shortWickMax    = 0.10
	spinBodyMin     = 0.10
	spinBodyMax     = 0.30
	spinWickMin     = 0.25
	longLegWickMin  = 0.30
	marubozuBodyMin = 0.80
	marubozuWickMax = 0.10
)

// candleParts is the precomputed geometry of one bar: real body, upper and
// lower shadows, and their proportions of the full range.
type candleParts struct {
	Body, Upper, Lower, Range   float64
	BodyPct, UpperPct, LowerPct float64
	IsBull, IsBear, IsDoji      bool
	Valid                       bool
}

func split(b models.PriceBar) candleParts {
	r := b.High - b.Low
	if r <= 0 || math.IsNaN(r) {
		// Degenerate bar: no shape to classify.
		return candleParts{}
	}
	body := math.Abs(b.Close - b.Open)
	upper := b.High - math.Max(b.Open, b.Close)
	lower := math.Min(b.Open, b.Close) - b.Low

	cp := candleParts{
		Body: body, Upper: upper, Lower: lower, Range: r,
		BodyPct:  body / r,
		UpperPct: upper / r,
		LowerPct: lower / r,
		IsBull:   b.Close > b.Open,
		IsBear:   b.Open > b.Close,
		Valid:    true,
	}
	cp.IsDoji = cp.BodyPct <= dojiMaxBodyPct
	return cp
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// hammerShape: long lower shadow, little to no upper shadow, real body.
func hammerShape(cp candleParts) bool {
	return cp.Valid && !cp.IsDoji &&
		cp.BodyPct >= minBodyPct &&
		cp.LowerPct >= longWickMin &&
		cp.UpperPct <= shortWickMax
}

// invertedHammerShape mirrors hammerShape: long upper shadow instead.
func invertedHammerShape(cp candleParts) bool {
	return cp.Valid && !cp.IsDoji &&
		cp.BodyPct >= minBodyPct &&
		cp.UpperPct >= longWickMin &&
		cp.LowerPct <= shortWickMax
}

func spinningTopShape(cp candleParts) bool {
	return cp.Valid && !cp.IsDoji &&
		cp.BodyPct >= spinBodyMin && cp.BodyPct <= spinBodyMax &&
		cp.UpperPct >= spinWickMin && cp.LowerPct >= spinWickMin
}

func wickStrength(dominant, min float64) float64 {
	return clamp01((dominant - min) / (1.0 - min))
}

func matchHammer(cp candleParts) (bool, float64) {
	if !hammerShape(cp) || cp.IsBear {
		return false, 0
	}
	return true, 0.6*wickStrength(cp.LowerPct, longWickMin) + 0.4*clamp01(cp.BodyPct/spinBodyMax)
}

func matchInvertedHammer(cp candleParts) (bool, float64) {
	if !invertedHammerShape(cp) || cp.IsBear {
		return false, 0
	}
	return true, 0.6*wickStrength(cp.UpperPct, longWickMin) + 0.4*clamp01(cp.BodyPct/spinBodyMax)
}

func matchHangingMan(cp candleParts) (bool, float64) {
	if !hammerShape(cp) || !cp.IsBear {
		return false, 0
	}
	return true, 0.6*wickStrength(cp.LowerPct, longWickMin) + 0.4*clamp01(cp.BodyPct/spinBodyMax)
}

func matchShootingStar(cp candleParts) (bool, float64) {
	if !invertedHammerShape(cp) || !cp.IsBear {
		return false, 0
	}
	return true, 0.6*wickStrength(cp.UpperPct, longWickMin) + 0.4*clamp01(cp.BodyPct/spinBodyMax)
}

func matchDragonflyDoji(cp candleParts) (bool, float64) {
	if !cp.Valid || !cp.IsDoji || cp.LowerPct < longWickMin || cp.UpperPct > shortWickMax {
		return false, 0
	}
	return true, wickStrength(cp.LowerPct, longWickMin)
}

func matchGravestoneDoji(cp candleParts) (bool, float64) {
	if !cp.Valid || !cp.IsDoji || cp.UpperPct < longWickMin || cp.LowerPct > shortWickMax {
		return false, 0
	}
	return true, wickStrength(cp.UpperPct, longWickMin)
}

func matchDoji(cp candleParts) (bool, float64) {
	if !cp.Valid || !cp.IsDoji {
		return false, 0
	}
	return true, clamp01(1 - cp.BodyPct/dojiMaxBodyPct)
}

func matchLongLeggedDoji(cp candleParts) (bool, float64) {
	if !cp.Valid || !cp.IsDoji || cp.UpperPct < longLegWickMin || cp.LowerPct < longLegWickMin {
		return false, 0
	}
	return true, clamp01(math.Min(cp.UpperPct, cp.LowerPct) / 0.5)
}

func matchBullishMarubozu(cp candleParts) (bool, float64) {
	if !cp.Valid || !cp.IsBull ||
		cp.BodyPct < marubozuBodyMin ||
		cp.UpperPct > marubozuWickMax || cp.LowerPct > marubozuWickMax {
		return false, 0
	}
	return true, clamp01((cp.BodyPct - marubozuBodyMin) / (1.0 - marubozuBodyMin))
}

func matchBullishSpinningTop(cp candleParts) (bool, float64) {
	if !spinningTopShape(cp) || !cp.IsBull {
		return false, 0
	}
	return true, 0.5
}

func matchBearishSpinningTop(cp candleParts) (bool, float64) {
	if !spinningTopShape(cp) || !cp.IsBear {
		return false, 0
	}
	return true, 0.5
}

// matchPiercingLine needs the previous bar of the same series: a bearish bar
// followed by a bullish bar that opens below the prior close and closes above
// the midpoint of the prior body without clearing its open.
func matchPiercingLine(prev, cur models.PriceBar, cpPrev, cpCur candleParts) (bool, float64) {
	if !cpPrev.Valid || !cpCur.Valid {
		return false, 0
	}
	if !cpPrev.IsBear || cpPrev.IsDoji || !cpCur.IsBull {
		return false, 0
	}
	mid := (prev.Open + prev.Close) / 2
	if !(cur.Open < prev.Close && cur.Close > mid && cur.Close < prev.Open) {
		return false, 0
	}
	// Deeper penetration into the prior body scores higher.
	return true, clamp01((cur.Close - mid) / (prev.Open - mid))
}
