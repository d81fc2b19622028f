package distance

import (
	"fmt"
	"math"

	"github.com/ods/mywellness2tcx/internal/sample"
)

// Integrate sets Distance on every sample by integrating speed over elapsed
// time, starting from the first raw distance. The integrated increments are
// scaled so that the last Distance matches the last RawDistance, and the
// applied correction factor is returned. A factor further than tolerance
// from 1 means speed and raw distance disagree and nothing is written.
func Integrate(series sample.Series, tolerance float64) (float64, error) {
	if len(series) == 0 {
		return 0, fmt.Errorf("integrate: %w: no active samples", ErrInsufficientData)
	}

	first := series[0].RawDistance
	reported := series[len(series)-1].RawDistance - first
	integrated := 0.0
	for i := 1; i < len(series); i++ {
		integrated += step(series, i)
	}

	correction := 1.0
	switch {
	case integrated == 0 && reported == 0:
	case integrated == 0:
		return 0, fmt.Errorf("integrate: %w: reported %.1fm but speed integrates to 0m", ErrDataInconsistency, reported)
	default:
		correction = reported / integrated
	}
	if math.Abs(correction-1) > tolerance {
		return 0, fmt.Errorf("integrate: %w: correction factor %.4f outside 1±%.2f (integrated %.1fm, reported %.1fm)",
			ErrDataInconsistency, correction, tolerance, integrated, reported)
	}

	d := first
	series[0].Distance = d
	for i := 1; i < len(series); i++ {
		d += step(series, i) * correction
		series[i].Distance = d
	}
	// Accumulated rounding can leave the endpoint a few ulps off the reported total.
	if len(series) > 1 {
		series[len(series)-1].Distance = math.Max(series[len(series)-2].Distance, series[len(series)-1].RawDistance)
	}

	return correction, nil
}

// step is the uncorrected distance in meters covered between sample i-1 and i.
func step(series sample.Series, i int) float64 {
	return series.Elapsed(i).Seconds() * series[i].SpeedMPS()
}
