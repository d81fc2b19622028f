package activity

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ods/mywellness2tcx/internal/distance"
	"github.com/ods/mywellness2tcx/internal/mywellness"
	"github.com/ods/mywellness2tcx/internal/tcx"
)

// StartTimeLayout is the activity start accepted on the command line. It has
// no zone; the time is taken as UTC.
const StartTimeLayout = "2006-01-02T15:04"

func ParseStartTime(s string) (time.Time, error) {
	t, err := time.Parse(StartTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q, expected YYYY-MM-DDTHH:MM: %w", s, err)
	}
	return t, nil
}

// OutputPath replaces a trailing .json extension with .tcx, or appends .tcx
// when there is none.
func OutputPath(input string) string {
	const ext = ".json"
	if strings.HasSuffix(strings.ToLower(input), ext) {
		return input[:len(input)-len(ext)] + ".tcx"
	}
	return input + ".tcx"
}

type Options struct {
	Distance distance.Config
	TCX      tcx.Options
}

func DefaultOptions() Options {
	return Options{
		Distance: distance.DefaultConfig(),
		TCX:      tcx.DefaultOptions(),
	}
}

type Converter struct {
	options Options
	logger  *slog.Logger
}

func NewConverter(options Options, logger *slog.Logger) *Converter {
	return &Converter{
		options: options,
		logger:  logger,
	}
}

// Convert reads a MyWellness export from r and returns the summarized
// activity with its TCX document.
func (c *Converter) Convert(r io.Reader, start time.Time) (activity Activity, err error) {
	began := time.Now()
	strategy := c.options.Distance.Strategy
	defer func() {
		ConversionsTotal.WithLabelValues(string(strategy), resultLabel(err)).Inc()
		ConversionDuration.Observe(time.Since(began).Seconds())
	}()

	series, err := mywellness.Load(r, start)
	if err != nil {
		return Activity{}, err
	}

	result, err := distance.Reconstruct(series, c.options.Distance)
	if err != nil {
		return Activity{}, err
	}
	strategy = result.Strategy

	c.logger.Debug("Reconstructed distance",
		slog.String("strategy", string(result.Strategy)),
		slog.Int("samples", len(result.Series)),
		slog.Int("trimmed", result.Trimmed),
		slog.Duration("duration", result.Series.Duration()),
		slog.Float64("correction", result.Correction),
		slog.Float64("max_drift", result.MaxDrift))

	var buf bytes.Buffer
	if err := tcx.Build(result.Series, start, c.options.TCX).Write(&buf); err != nil {
		return Activity{}, err
	}

	if result.Strategy == distance.StrategyIntegrate {
		CorrectionFactor.Observe(result.Correction)
	}
	SamplesConverted.Add(float64(len(result.Series)))

	activity = Summarize(result, start)
	activity.TCX = buf.Bytes()
	return activity, nil
}

// ConvertFile converts input into output. The output file only appears once
// the whole document has been written.
func (c *Converter) ConvertFile(input, output string, start time.Time) (Activity, error) {
	file, err := os.Open(input)
	if err != nil {
		return Activity{}, fmt.Errorf("error reading input file: %w", err)
	}
	defer file.Close()

	activity, err := c.Convert(file, start)
	if err != nil {
		return Activity{}, fmt.Errorf("error converting %s: %w", input, err)
	}
	activity.Source = filepath.Base(input)

	if err := writeFileAtomic(output, activity.TCX); err != nil {
		return Activity{}, err
	}

	return activity, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing output file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}

	return nil
}
