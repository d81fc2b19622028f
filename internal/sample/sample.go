package sample

import (
	"time"
)

// Sample is one measurement epoch of an indoor activity.
type Sample struct {
	Time        time.Time
	Offset      float64 // seconds since activity start
	Speed       float64 // km/h
	Power       float64 // watts
	Cadence     float64 // rpm
	RawDistance float64 // meters, as reported by the device
	Distance    float64 // meters, reconstructed
}

// SpeedMPS returns the sample speed in meters per second.
func (s Sample) SpeedMPS() float64 {
	return s.Speed / 3.6
}

// Idle reports whether the sample carries neither speed nor power.
func (s Sample) Idle() bool {
	return s.Speed == 0 && s.Power == 0
}

// Series is an ordered run of samples, oldest first.
type Series []Sample

// Elapsed returns the time between sample i-1 and sample i.
// Out of order or duplicate timestamps yield zero.
func (s Series) Elapsed(i int) time.Duration {
	if i <= 0 || i >= len(s) {
		return 0
	}
	d := s[i].Time.Sub(s[i-1].Time)
	if d < 0 {
		return 0
	}
	return d
}

// Duration is the time spanned by the series.
func (s Series) Duration() time.Duration {
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1].Time.Sub(s[0].Time)
}
