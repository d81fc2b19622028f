package activity

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ods/mywellness2tcx/internal/distance"
	"github.com/ods/mywellness2tcx/internal/mywellness"
)

var (
	ConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mywellness2tcx",
			Name:      "conversions_total",
			Help:      "Conversions attempted, by strategy and outcome.",
		},
		[]string{"strategy", "result"},
	)
	SamplesConverted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mywellness2tcx",
		Name:      "samples_converted_total",
		Help:      "Trackpoints written to TCX documents.",
	})
	CorrectionFactor = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mywellness2tcx",
			Name:      "correction_factor",
			Help:      "Correction applied to speed integrated distance.",
			Buckets:   []float64{.95, .97, .99, 1, 1.01, 1.03, 1.05},
		},
	)
	ConversionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mywellness2tcx",
			Name:      "conversion_duration_seconds",
			Help:      "Time taken to convert one document.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
		},
	)
)

func init() {
	prometheus.MustRegister(ConversionsTotal, SamplesConverted, CorrectionFactor, ConversionDuration)
}

// resultLabel classifies a conversion error for the conversions_total metric.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, distance.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, distance.ErrDataInconsistency):
		return "inconsistent"
	case errors.Is(err, mywellness.ErrMalformedInput):
		return "malformed"
	default:
		return "error"
	}
}
