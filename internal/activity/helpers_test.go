package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testSample struct {
	t                                float64
	speed, power, cadence, hdistance float64
}

// exportJSON renders samples the way the MyWellness analytics export lays them out.
func exportJSON(t *testing.T, samples []testSample) []byte {
	t.Helper()

	type pr struct {
		Name string `json:"name"`
	}
	type descriptor struct {
		Pr pr `json:"pr"`
	}
	type rawSample struct {
		T  float64   `json:"t"`
		Vs []float64 `json:"vs"`
	}

	doc := map[string]any{}
	raw := make([]rawSample, len(samples))
	for i, s := range samples {
		raw[i] = rawSample{T: s.t, Vs: []float64{s.cadence, s.power, s.speed, s.hdistance}}
	}
	doc["data"] = map[string]any{
		"analitics": map[string]any{
			"descriptor": []descriptor{{pr{"Rpm"}}, {pr{"Power"}}, {pr{"Speed"}}, {pr{"HDistance"}}},
			"samples":    raw,
		},
	}

	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return b
}

// threeSecondRide is a 10 m/s ride sampled once per second.
func threeSecondRide(t *testing.T) []byte {
	return exportJSON(t, []testSample{
		{t: 0, speed: 36, power: 50, cadence: 80, hdistance: 0},
		{t: 1, speed: 36, power: 50, cadence: 80, hdistance: 10},
		{t: 2, speed: 36, power: 50, cadence: 80, hdistance: 20},
	})
}

// inconsistentRide integrates to 100 m but reports 108 m.
func inconsistentRide(t *testing.T) []byte {
	return exportJSON(t, []testSample{
		{t: 0, speed: 36, power: 100, cadence: 80, hdistance: 0},
		{t: 10, speed: 36, power: 100, cadence: 80, hdistance: 108},
	})
}

func writeInput(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	activityService := NewService(db, discardLogger())
	require.NoError(t, activityService.Init(context.Background()))
	return activityService
}
