package mywellness

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ods/mywellness2tcx/internal/sample"
)

var ErrMalformedInput = errors.New("malformed input")

// Field names used by the MyWellness analytics export.
const (
	FieldSpeed    = "Speed"
	FieldPower    = "Power"
	FieldCadence  = "Rpm"
	FieldDistance = "HDistance"
)

var requiredFields = []string{FieldSpeed, FieldPower, FieldCadence, FieldDistance}

type document struct {
	Data *struct {
		Analitics *analytics `json:"analitics"`
	} `json:"data"`
}

type analytics struct {
	Descriptor []descriptor `json:"descriptor"`
	Samples    []rawSample  `json:"samples"`
}

type descriptor struct {
	Pr struct {
		Name string `json:"name"`
	} `json:"pr"`
}

type rawSample struct {
	T  *float64          `json:"t"`
	Vs []json.RawMessage `json:"vs"`
}

// Load decodes the samples of a MyWellness export. Sample times are start
// plus the per-sample offset in seconds.
func Load(r io.Reader, start time.Time) (sample.Series, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if doc.Data == nil {
		return nil, fmt.Errorf("%w: missing field data", ErrMalformedInput)
	}
	a := doc.Data.Analitics
	if a == nil {
		return nil, fmt.Errorf("%w: missing field data.analitics", ErrMalformedInput)
	}

	index := make(map[string]int, len(a.Descriptor))
	for i, d := range a.Descriptor {
		if _, ok := index[d.Pr.Name]; !ok {
			index[d.Pr.Name] = i
		}
	}
	for _, name := range requiredFields {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: missing field %s in data.analitics.descriptor", ErrMalformedInput, name)
		}
	}

	series := make(sample.Series, 0, len(a.Samples))
	for i, s := range a.Samples {
		if s.T == nil {
			return nil, fmt.Errorf("%w: sample %d: missing field t", ErrMalformedInput, i)
		}
		if math.IsNaN(*s.T) || math.IsInf(*s.T, 0) {
			return nil, fmt.Errorf("%w: sample %d: invalid offset", ErrMalformedInput, i)
		}
		value := func(name string) (float64, error) {
			j := index[name]
			if j >= len(s.Vs) {
				return 0, fmt.Errorf("%w: sample %d: missing field %s", ErrMalformedInput, i, name)
			}
			return number(s.Vs[j], i, name)
		}

		var (
			smp sample.Sample
			err error
		)
		smp.Offset = *s.T
		smp.Time = start.Add(time.Duration(*s.T * float64(time.Second)))
		if smp.Speed, err = value(FieldSpeed); err != nil {
			return nil, err
		}
		if smp.Power, err = value(FieldPower); err != nil {
			return nil, err
		}
		if smp.Cadence, err = value(FieldCadence); err != nil {
			return nil, err
		}
		if smp.RawDistance, err = value(FieldDistance); err != nil {
			return nil, err
		}
		series = append(series, smp)
	}

	return series, nil
}

// number decodes one value of a required column. Columns the converter does
// not read are never decoded, so their content does not matter.
func number(raw json.RawMessage, i int, name string) (float64, error) {
	if raw == nil || string(raw) == "null" {
		return 0, fmt.Errorf("%w: sample %d: missing value for field %s", ErrMalformedInput, i, name)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: sample %d: field %s is not a number: %s", ErrMalformedInput, i, name, raw)
	}
	return v, nil
}
