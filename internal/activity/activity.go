package activity

import (
	"time"

	"github.com/ods/mywellness2tcx/internal/distance"
	"github.com/ods/mywellness2tcx/internal/sample"
)

type Split struct {
	Distance       float64 `json:"distance"`
	SplitTime      float64 `json:"split_time"`
	AveragePower   float64 `json:"average_power"`
	AverageCadence float64 `json:"average_cadence"`
}

type Activity struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Source         string    `json:"source"`
	Created        time.Time `json:"created"`
	StartTime      time.Time `json:"start_time"`
	TCX            []byte    `json:"-"`
	Distance       float64   `json:"distance"`
	Time           float64   `json:"time"`
	Samples        int       `json:"samples"`
	AveragePower   float64   `json:"average_power"`
	MaxPower       float64   `json:"max_power"`
	AverageSpeed   float64   `json:"average_speed"`
	MaxSpeed       float64   `json:"max_speed"`
	AverageCadence float64   `json:"average_cadence"`
	Strategy       string    `json:"strategy"`
	Correction     float64   `json:"correction"`
	Splits         []Split   `json:"splits,omitempty"`
}

// Summarize derives the ledger record for a reconstructed series.
func Summarize(result distance.Result, start time.Time) Activity {
	series := result.Series
	activity := Activity{
		Name:       activityName(start),
		StartTime:  start,
		Samples:    len(series),
		Strategy:   string(result.Strategy),
		Correction: result.Correction,
		Splits:     calculateSplits(series),
	}
	if len(series) == 0 {
		return activity
	}

	last := series[len(series)-1]
	activity.Distance = last.Distance - series[0].Distance
	activity.Time = last.Time.Sub(start).Seconds()

	var power, speed, cadence float64
	for _, s := range series {
		power += s.Power
		speed += s.Speed
		cadence += s.Cadence
		activity.MaxPower = max(activity.MaxPower, s.Power)
		activity.MaxSpeed = max(activity.MaxSpeed, s.Speed)
	}
	n := float64(len(series))
	activity.AveragePower = power / n
	activity.AverageSpeed = speed / n
	activity.AverageCadence = cadence / n

	return activity
}

func activityName(start time.Time) string {
	switch h := start.Hour(); {
	case h >= 18:
		return "Night Ride"
	case h >= 12:
		return "Afternoon Ride"
	default:
		return "Morning Ride"
	}
}

func calculateSplits(series sample.Series) []Split {
	var splits []Split
	if len(series) < 2 {
		return splits
	}

	totalDistance := 0.0 // meters since the last split
	startTime := series[0].Time
	var power, cadence float64 // integrated over seconds

	for i := 1; i < len(series); i++ {
		elapsed := series.Elapsed(i).Seconds()
		totalDistance += series[i].Distance - series[i-1].Distance
		power += series[i].Power * elapsed
		cadence += series[i].Cadence * elapsed

		for totalDistance >= 1000 {
			s := Split{
				Distance:  1000,
				SplitTime: series[i].Time.Sub(startTime).Seconds(),
			}
			if s.SplitTime > 0 {
				s.AveragePower = power / s.SplitTime
				s.AverageCadence = cadence / s.SplitTime
			}
			splits = append(splits, s)

			startTime = series[i].Time
			power, cadence = 0, 0
			totalDistance -= 1000
		}
	}

	// Remaining partial kilometer
	if totalDistance > 0 {
		s := Split{
			Distance:  totalDistance,
			SplitTime: series[len(series)-1].Time.Sub(startTime).Seconds(),
		}
		if s.SplitTime > 0 {
			s.AveragePower = power / s.SplitTime
			s.AverageCadence = cadence / s.SplitTime
		}
		splits = append(splits, s)
	}

	return splits
}
