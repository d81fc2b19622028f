package main

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ods/mywellness2tcx/internal/activity"
	"github.com/ods/mywellness2tcx/internal/config"
)

func main() {
	w := os.Stdout
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Error loading config", slog.Any("error", err))
		os.Exit(1)
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	var db *sql.DB
	openService := func(ctx context.Context) (*activity.Service, error) {
		if db == nil {
			var err error
			if db, err = sql.Open("sqlite3", cfg.DBPath); err != nil {
				return nil, err
			}
		}
		activityService := activity.NewService(db, logger)
		if err := activityService.Init(ctx); err != nil {
			return nil, err
		}
		return activityService, nil
	}

	err = run(w, os.Args[1:], cfg, logger, openService)
	if db != nil {
		db.Close()
	}
	if err != nil {
		logger.Error("Error running mywellness2tcx", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(w io.Writer, args []string, cfg config.Config, logger *slog.Logger, openService activity.OpenServiceFunc) error {
	cli := activity.NewCLI(w, cfg, logger, openService)

	if err := cli.Run(args); err != nil {
		return err
	}

	return nil
}

func logLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}
