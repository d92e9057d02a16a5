package archetype

import (
	"math"
	"strconv"
	"strings"
)

// #region smoothing-factor
// DefaultSmoothingFactor is the weight kept on the previous estimate.
const DefaultSmoothingFactor = 0.75

// ParseSmoothingFactor reads α from a raw setting. Empty, unparsable,
// non-finite, or out-of-range values yield DefaultSmoothingFactor.
func ParseSmoothingFactor(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSmoothingFactor
	}
	alpha, err := strconv.ParseFloat(raw, 64)
	if err != nil || !ValidSmoothingFactor(alpha) {
		return DefaultSmoothingFactor
	}
	return alpha
}

// ValidSmoothingFactor reports whether alpha is a finite value in [0, 1].
func ValidSmoothingFactor(alpha float64) bool {
	return !math.IsNaN(alpha) && alpha >= 0 && alpha <= 1
}

// #endregion smoothing-factor

// #region smooth-update
// SmoothUpdate blends the previous estimate with a new delta:
//
//	next[k] = alpha*previous[k] + (1-alpha)*delta[k]
//
// alpha=1 keeps previous, alpha=0 takes delta. An invalid alpha falls back to
// DefaultSmoothingFactor. The caller owns persistence of the result.
func SmoothUpdate(previous, delta Vector, alpha float64) Vector {
	if !ValidSmoothingFactor(alpha) {
		alpha = DefaultSmoothingFactor
	}
	var next Vector
	for _, k := range Keys {
		next.Set(k, alpha*previous.Get(k)+(1-alpha)*delta.Get(k))
	}
	return next
}

// #endregion smooth-update
