package tcx

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ods/mywellness2tcx/internal/sample"
)

type Options struct {
	Namespaces Namespaces
	Sport      string
}

func DefaultOptions() Options {
	return Options{
		Namespaces: DefaultNamespaces(),
		Sport:      DefaultSport,
	}
}

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Build maps a reconstructed series onto a single-lap TCX activity starting
// at start.
func Build(series sample.Series, start time.Time, opts Options) *TrainingCenterDatabase {
	if opts.Namespaces.Core == "" {
		opts.Namespaces.Core = DefaultNamespace
	}
	if opts.Namespaces.Extension == "" {
		opts.Namespaces.Extension = DefaultExtensionNamespace
	}
	if opts.Sport == "" {
		opts.Sport = DefaultSport
	}

	points := make([]Trackpoint, len(series))
	for i, s := range series {
		points[i] = Trackpoint{
			Time:           FormatTime(s.Time),
			DistanceMeters: s.Distance,
			Cadence:        clampRound(s.Cadence, 254),
			Extensions: Extensions{
				TPX: TPX{
					Speed: s.SpeedMPS(),
					Watts: clampRound(s.Power, math.MaxUint16),
				},
			},
		}
	}

	lap := Lap{
		StartTime:     FormatTime(start),
		Intensity:     "Active",
		TriggerMethod: "Manual",
		Track:         Track{Trackpoints: points},
	}
	if len(series) > 0 {
		last := series[len(series)-1]
		lap.TotalTimeSeconds = last.Time.Sub(start).Seconds()
		lap.DistanceMeters = last.Distance - series[0].Distance
	}

	return &TrainingCenterDatabase{
		XMLNS:   opts.Namespaces.Core,
		XMLNSAX: opts.Namespaces.Extension,
		Activities: Activities{
			Activity: []Activity{{
				Sport: opts.Sport,
				ID:    FormatTime(start),
				Laps:  []Lap{lap},
			}},
		},
	}
}

// Write serializes the document with an XML declaration.
func (d *TrainingCenterDatabase) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("failed to encode TCX: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	return nil
}

func clampRound(v float64, limit int) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= float64(limit):
		return limit
	default:
		return int(math.Round(v))
	}
}
