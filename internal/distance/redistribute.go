package distance

import (
	"fmt"

	"github.com/ods/mywellness2tcx/internal/sample"
)

// Redistribute sets Distance by spreading every raw distance step evenly
// across the samples that report it. The last step has nothing to
// interpolate towards and keeps its raw value.
func Redistribute(series sample.Series) error {
	if len(series) == 0 {
		return fmt.Errorf("redistribute: %w: no active samples", ErrInsufficientData)
	}

	start := 0
	for i := 1; i <= len(series); i++ {
		if i < len(series) && series[i].RawDistance == series[start].RawDistance {
			continue
		}
		members := series[start:i]
		if i == len(series) {
			for j := range members {
				members[j].Distance = members[j].RawDistance
			}
			break
		}

		prev := series[start].RawDistance
		delta := (series[i].RawDistance - prev) / float64(len(members))
		for j := range members {
			members[j].Distance = prev + float64(j)*delta
		}
		start = i
	}

	return nil
}
