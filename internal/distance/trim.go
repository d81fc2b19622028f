package distance

import "github.com/ods/mywellness2tcx/internal/sample"

// TrimIdle drops samples from the end of the series while they carry neither
// speed nor power. The result shares the backing array of series.
func TrimIdle(series sample.Series) sample.Series {
	n := len(series)
	for n > 0 && series[n-1].Idle() {
		n--
	}
	return series[:n]
}
