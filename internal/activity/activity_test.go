package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ods/mywellness2tcx/internal/distance"
	"github.com/ods/mywellness2tcx/internal/sample"
)

// steadyRide covers 10 m every second for n seconds at 200 W.
func steadyRide(n int) sample.Series {
	s := make(sample.Series, n)
	for i := range s {
		s[i] = sample.Sample{
			Time:     testStart.Add(time.Duration(i) * time.Second),
			Speed:    36,
			Power:    200,
			Cadence:  90,
			Distance: float64(i * 10),
		}
	}
	return s
}

func TestCalculateSplits(t *testing.T) {
	splits := calculateSplits(steadyRide(251))

	require.Len(t, splits, 3)
	for _, s := range splits[:2] {
		assert.Equal(t, 1000.0, s.Distance)
		assert.Equal(t, 100.0, s.SplitTime)
		assert.InDelta(t, 200.0, s.AveragePower, 1e-9)
		assert.InDelta(t, 90.0, s.AverageCadence, 1e-9)
	}
	assert.InDelta(t, 500.0, splits[2].Distance, 1e-9)
	assert.Equal(t, 50.0, splits[2].SplitTime)
}

func TestCalculateSplitsShortSeries(t *testing.T) {
	assert.Empty(t, calculateSplits(steadyRide(1)))
	assert.Empty(t, calculateSplits(nil))
}

func TestSummarize(t *testing.T) {
	series := steadyRide(3)
	series[2].Power = 260
	series[2].Speed = 40

	a := Summarize(distance.Result{Series: series, Strategy: distance.StrategyIntegrate, Correction: 1}, testStart)

	assert.Equal(t, "Morning Ride", a.Name)
	assert.Equal(t, 3, a.Samples)
	assert.Equal(t, 20.0, a.Distance)
	assert.Equal(t, 2.0, a.Time)
	assert.InDelta(t, 220.0, a.AveragePower, 1e-9)
	assert.Equal(t, 260.0, a.MaxPower)
	assert.Equal(t, 40.0, a.MaxSpeed)
	assert.InDelta(t, 90.0, a.AverageCadence, 1e-9)
	assert.Equal(t, "integrate", a.Strategy)
	assert.Equal(t, 1.0, a.Correction)
	require.Len(t, a.Splits, 1)
	assert.Equal(t, 20.0, a.Splits[0].Distance)
}

func TestActivityName(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Morning Ride", activityName(day.Add(7*time.Hour)))
	assert.Equal(t, "Afternoon Ride", activityName(day.Add(12*time.Hour)))
	assert.Equal(t, "Night Ride", activityName(day.Add(21*time.Hour)))
}
