// Package postgres persists validated station measurements, one row per
// record. Decimal scaling of the raw tenths-of-unit readings happens here,
// in SQL, not in the protocol layer.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

const insertMeasurementSQL = `insert into measurement(at, station_id, temp, humidity) values ($1, $2, $3::decimal / 10, $4::decimal / 10)`

// Store is the measurement sink for one ingestion run.
type Store struct {
	db        *sql.DB
	insert    *sql.Stmt
	stationID int32
	logger    zerolog.Logger
}

// Open connects to Postgres, verifies the connection with a bounded
// exponential backoff, and prepares the measurement insert. The backoff only
// covers startup readiness; nothing retries once the run is underway.
func Open(ctx context.Context, dsn string, stationID int32, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 15 * time.Second
	err = backoff.Retry(func() error {
		return db.PingContext(ctx)
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping database: %w", err)
	}

	return New(ctx, db, stationID, logger)
}

// New prepares the insert against an already-open handle.
func New(ctx context.Context, db *sql.DB, stationID int32, logger zerolog.Logger) (*Store, error) {
	insert, err := db.PrepareContext(ctx, insertMeasurementSQL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: prepare measurement insert: %w", err)
	}
	return &Store{db: db, insert: insert, stationID: stationID, logger: logger}, nil
}

// InsertMeasurement persists one decoded record for the configured station.
func (s *Store) InsertMeasurement(ctx context.Context, at time.Time, temp, humidity int32) error {
	if _, err := s.insert.ExecContext(ctx, at, s.stationID, temp, humidity); err != nil {
		return fmt.Errorf("storage: insert measurement: %w", err)
	}
	return nil
}

// KeepAlive pings the pool at interval until ctx is cancelled. It carries no
// business logic; it only keeps the database transport warm for the life of
// the run.
func (s *Store) KeepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.db.PingContext(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("database keepalive ping failed")
			}
		}
	}
}

func (s *Store) Close() error {
	_ = s.insert.Close()
	return s.db.Close()
}
