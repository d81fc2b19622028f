package activity

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/ods/mywellness2tcx/internal/config"
	"github.com/ods/mywellness2tcx/internal/distance"
	"github.com/ods/mywellness2tcx/internal/tcx"
)

// OpenServiceFunc opens the activity ledger on first use.
type OpenServiceFunc func(ctx context.Context) (*Service, error)

type CLI struct {
	writer      io.Writer
	config      config.Config
	openService OpenServiceFunc
	logger      *slog.Logger
}

func NewCLI(w io.Writer, cfg config.Config, logger *slog.Logger, openService OpenServiceFunc) *CLI {
	return &CLI{
		writer:      w,
		config:      cfg,
		openService: openService,
		logger:      logger,
	}
}

func (c *CLI) Run(args []string) error {
	if len(args) == 0 {
		c.Usage()
		return nil
	}

	switch args[0] {
	case "convert":
		return c.Convert(args[1:])
	case "list":
		return c.List(context.Background())
	case "api":
		return c.RunAPI(context.Background())
	case "help", "-h", "-help", "--help":
		c.Usage()
		return nil
	default:
		// mywellness2tcx <input.json> <start>
		if len(args) == 2 {
			return c.Convert(args)
		}
		c.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (c *CLI) Usage() {
	fmt.Fprintf(c.writer, "Usage: mywellness2tcx [command] [flags]\n--help show this message\n\n"+
		"\t<input.json> <YYYY-MM-DDTHH:MM>\n"+
		"\tconvert [-o out.tcx] [-strategy integrate|steps] [-tolerance 0.05] [-sport Biking] [-record] [-force] <input.json> <YYYY-MM-DDTHH:MM>\n"+
		"\tlist\n"+
		"\tapi\n")
}

func (c *CLI) options(strategy distance.Strategy, tolerance float64, sport string) Options {
	return Options{
		Distance: distance.Config{
			Strategy:  strategy,
			Tolerance: tolerance,
		},
		TCX: tcx.Options{
			Namespaces: c.config.Namespaces(),
			Sport:      sport,
		},
	}
}

func (c *CLI) Convert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(c.writer)
	var (
		outputFile   string
		strategyName string
		tolerance    float64
		sport        string
		record       bool
		force        bool
	)
	fs.StringVar(&outputFile, "o", "", "output TCX file (default: input with .tcx extension)")
	fs.StringVar(&strategyName, "strategy", c.config.Strategy, "distance reconstruction: integrate or steps")
	fs.Float64Var(&tolerance, "tolerance", c.config.Tolerance, "allowed deviation of the correction factor from 1")
	fs.StringVar(&sport, "sport", c.config.Sport, "TCX sport")
	fs.BoolVar(&record, "record", c.config.Record, "store the activity in the ledger")
	fs.BoolVar(&force, "force", true, "overwrite an existing output file")
	fs.Usage = c.Usage

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New("convert needs an input file and a start time")
	}
	inputFile := fs.Arg(0)

	start, err := ParseStartTime(fs.Arg(1))
	if err != nil {
		return err
	}

	cfg := c.config
	cfg.Strategy = strategyName
	cfg.Tolerance = tolerance
	cfg.Sport = sport
	if err := cfg.Validate(); err != nil {
		return err
	}

	strategy, err := distance.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}

	if outputFile == "" {
		outputFile = OutputPath(inputFile)
	}
	if !force {
		if _, err := os.Stat(outputFile); err == nil {
			return fmt.Errorf("output file %s already exists", outputFile)
		}
	}

	c.logger.Info("Converting activity",
		slog.String("input", inputFile),
		slog.String("output", outputFile),
		slog.String("strategy", string(strategy)))

	converter := NewConverter(c.options(strategy, tolerance, sport), c.logger)
	activity, err := converter.ConvertFile(inputFile, outputFile, start)
	if err != nil {
		return err
	}

	if record {
		ctx := context.Background()
		activityService, err := c.openService(ctx)
		if err != nil {
			return err
		}
		id, err := activityService.Add(ctx, activity)
		if err != nil {
			return fmt.Errorf("error recording activity: %w", err)
		}
		c.logger.Info("Activity recorded", slog.String("id", id))
	}

	fmt.Fprintf(c.writer, "Wrote %s: %d trackpoints, %.2f km in %s (correction %.4f)\n",
		outputFile, activity.Samples, activity.Distance/1000,
		time.Duration(activity.Time*float64(time.Second)).Round(time.Second), activity.Correction)

	return nil
}

func (c *CLI) List(ctx context.Context) error {
	activityService, err := c.openService(ctx)
	if err != nil {
		return err
	}

	activities, err := activityService.Get(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTART\tDISTANCE\tDURATION\tAVG POWER\tSTRATEGY")
	for _, a := range activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f km\t%s\t%.0f W\t%s\n",
			a.ID, a.Name, tcx.FormatTime(a.StartTime), a.Distance/1000,
			time.Duration(a.Time*float64(time.Second)).Round(time.Second), a.AveragePower, a.Strategy)
	}

	return tw.Flush()
}

func (c *CLI) RunAPI(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	activityService, err := c.openService(ctx)
	if err != nil {
		return err
	}

	converter := NewConverter(c.options(distance.Strategy(c.config.Strategy), c.config.Tolerance, c.config.Sport), c.logger)
	mux := NewAPI(c.logger, activityService, converter, c.config.Record)

	server := &http.Server{
		Addr:    c.config.APIAddr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		c.logger.Info("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			c.logger.Error("Error shutting down server", slog.Any("error", err))
		}
	}()

	c.logger.Info("Starting server", slog.String("addr", c.config.APIAddr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		c.logger.Error("Error starting server", slog.Any("error", err))
		cancel()
		return err
	}

	return nil
}
