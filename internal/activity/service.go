package activity

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("activity not found")

const schema = `
CREATE TABLE IF NOT EXISTS activities (
    id TEXT PRIMARY KEY,
    name TEXT,
    source TEXT,
    date TEXT,
    distance REAL,
    duration REAL,
    samples INTEGER,
    average_power REAL,
    max_power REAL,
    average_speed REAL,
    max_speed REAL,
    average_cadence REAL,
    strategy TEXT,
    correction REAL,
    splits BLOB,
    tcx BLOB,
    tcx_hash TEXT UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`

const columns = `id, name, source, date, distance, duration, samples, average_power, max_power,
    average_speed, max_speed, average_cadence, strategy, correction, splits, tcx, created_at`

type Service struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// Init creates the activities table if it does not exist.
func (a *Service) Init(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}
	return nil
}

// Add stores a converted activity and returns its id. Converting the same
// document again replaces the earlier record.
func (a *Service) Add(ctx context.Context, activity Activity) (string, error) {
	sha := sha256.Sum256(activity.TCX)
	hash := hex.EncodeToString(sha[:])

	existingRow := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities WHERE tcx_hash = ?", hash)
	var count int
	if err := existingRow.Scan(&count); err != nil {
		return "", err
	}
	if count > 0 {
		_, err := a.db.ExecContext(ctx, "DELETE FROM activities WHERE tcx_hash = ?", hash)
		if err != nil {
			return "", err
		}
		a.logger.Info("Deleted existing activity", slog.String("hash", hash))
	}

	var buffer bytes.Buffer
	enc := gob.NewEncoder(&buffer)
	if err := enc.Encode(activity.Splits); err != nil {
		return "", err
	}

	id := uuid.NewString()
	res, err := a.db.ExecContext(ctx, `
    INSERT INTO activities
    (id,
    name,
    source,
    date,
    distance,
    duration,
    samples,
    average_power,
    max_power,
    average_speed,
    max_speed,
    average_cadence,
    strategy,
    correction,
    splits,
    tcx,
    tcx_hash)
    VALUES
    (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		activity.Name,
		activity.Source,
		activity.StartTime.UTC().Format(time.RFC3339),
		activity.Distance,
		activity.Time,
		activity.Samples,
		activity.AveragePower,
		activity.MaxPower,
		activity.AverageSpeed,
		activity.MaxSpeed,
		activity.AverageCadence,
		activity.Strategy,
		activity.Correction,
		buffer.Bytes(),
		activity.TCX,
		hash,
	)
	if err != nil {
		return "", err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "", err
	}

	if affected != 1 {
		return "", fmt.Errorf("expected 1 row to be affected, got %d", affected)
	}

	return id, nil
}

// Get returns all stored activities, oldest start time first.
func (a *Service) Get(ctx context.Context) ([]Activity, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT "+columns+" FROM activities ORDER BY date, created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return activities, nil
}

func (a *Service) GetByID(ctx context.Context, id string) (Activity, error) {
	row := a.db.QueryRowContext(ctx, "SELECT "+columns+" FROM activities WHERE id = ?", id)
	activity, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Activity{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Activity{}, err
	}
	return activity, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (Activity, error) {
	activity := Activity{}
	var startVal string
	var splitsVal []byte
	if err := row.Scan(&activity.ID, &activity.Name, &activity.Source, &startVal, &activity.Distance, &activity.Time,
		&activity.Samples, &activity.AveragePower, &activity.MaxPower, &activity.AverageSpeed, &activity.MaxSpeed,
		&activity.AverageCadence, &activity.Strategy, &activity.Correction, &splitsVal, &activity.TCX, &activity.Created); err != nil {
		return Activity{}, err
	}

	start, err := time.Parse(time.RFC3339, startVal)
	if err != nil {
		return Activity{}, err
	}
	activity.StartTime = start

	var splits []Split
	dec := gob.NewDecoder(bytes.NewBuffer(splitsVal))
	if err := dec.Decode(&splits); err != nil {
		return Activity{}, err
	}
	activity.Splits = splits

	return activity, nil
}
