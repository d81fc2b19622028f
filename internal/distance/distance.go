package distance

import (
	"errors"
	"fmt"
	"math"

	"github.com/ods/mywellness2tcx/internal/sample"
)

var (
	ErrInsufficientData  = errors.New("insufficient data")
	ErrDataInconsistency = errors.New("data inconsistency")
	ErrUnknownStrategy   = errors.New("unknown distance strategy")
)

// DefaultTolerance is the allowed deviation of the correction factor from 1.
const DefaultTolerance = 0.05

// Strategy names a distance reconstruction algorithm.
type Strategy string

const (
	// StrategyIntegrate integrates speed over time and rescales the curve to
	// the reported total distance.
	StrategyIntegrate Strategy = "integrate"
	// StrategySteps spreads each raw distance step linearly over its samples.
	StrategySteps Strategy = "steps"
)

// ParseStrategy validates a strategy name. The empty string selects StrategyIntegrate.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "", StrategyIntegrate:
		return StrategyIntegrate, nil
	case StrategySteps:
		return StrategySteps, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

type Config struct {
	Strategy  Strategy
	Tolerance float64
}

func DefaultConfig() Config {
	return Config{
		Strategy:  StrategyIntegrate,
		Tolerance: DefaultTolerance,
	}
}

// Result describes a reconstructed series.
type Result struct {
	Series     sample.Series
	Strategy   Strategy
	Correction float64
	Trimmed    int     // idle samples removed from the tail
	MaxDrift   float64 // largest |Distance - RawDistance| in meters
}

// Reconstruct trims trailing inactivity and fills in Distance for every
// remaining sample using exactly one strategy.
func Reconstruct(series sample.Series, config Config) (Result, error) {
	trimmed := TrimIdle(series)
	result := Result{
		Series:     trimmed,
		Strategy:   config.Strategy,
		Correction: 1,
		Trimmed:    len(series) - len(trimmed),
	}
	if result.Strategy == "" {
		result.Strategy = StrategyIntegrate
	}

	var err error
	switch result.Strategy {
	case StrategyIntegrate:
		tolerance := config.Tolerance
		if tolerance <= 0 {
			tolerance = DefaultTolerance
		}
		result.Correction, err = Integrate(trimmed, tolerance)
	case StrategySteps:
		err = Redistribute(trimmed)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownStrategy, result.Strategy)
	}
	if err != nil {
		return Result{}, err
	}

	for _, s := range trimmed {
		result.MaxDrift = math.Max(result.MaxDrift, math.Abs(s.Distance-s.RawDistance))
	}

	return result, nil
}
