// Package sqlite provides a SQLite-backed tracker storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/shattered.front/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/shattered.front/internal/progression/domain"
	"github.com/louisbranch/shattered.front/internal/storage"
	"github.com/louisbranch/shattered.front/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists tracker state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite tracker store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendEvents appends received-item events to the journal in order. The
// sequence numbers assigned by SQLite are not written back to the input
// slice; callers reload via ListEvents when they need them.
func (s *Store) AppendEvents(ctx context.Context, events []storage.ReceivedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append events: %w", err)
	}
	for _, event := range events {
		timestamp := event.Timestamp
		if timestamp.IsZero() {
			timestamp = time.Now()
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO events (item_id, sender, location_id, flags, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			int64(event.Item),
			event.Sender,
			int64(event.Location),
			event.Flags,
			toMillis(timestamp),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append events: %w", err)
	}
	return nil
}

// ListEvents returns up to limit journal events with Seq > afterSeq in
// sequence order. A limit of zero or less means no limit.
func (s *Store) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]storage.ReceivedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, item_id, sender, location_id, flags, created_at
		 FROM events
		 WHERE seq > ?
		 ORDER BY seq ASC
		 LIMIT ?`,
		int64(afterSeq),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var events []storage.ReceivedEvent
	for rows.Next() {
		var (
			seq        int64
			itemID     int64
			sender     int
			locationID int64
			flags      int
			createdAt  int64
		)
		if err := rows.Scan(&seq, &itemID, &sender, &locationID, &flags, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, storage.ReceivedEvent{
			Seq:       uint64(seq),
			Item:      domain.ItemID(itemID),
			Sender:    sender,
			Location:  domain.LocationID(locationID),
			Flags:     flags,
			Timestamp: fromMillis(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// CountEvents returns the journal length.
func (s *Store) CountEvents(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int64
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return uint64(count), nil
}

// MarkLocations records locations as checked. Re-marking is idempotent.
func (s *Store) MarkLocations(ctx context.Context, ids []domain.LocationID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark locations: %w", err)
	}
	now := toMillis(time.Now())
	for _, id := range ids {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO checked_locations (location_id, created_at)
			 VALUES (?, ?)`,
			int64(id),
			now,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("mark location: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mark locations: %w", err)
	}
	return nil
}

// ListLocations returns all checked locations in ascending id order.
func (s *Store) ListLocations(ctx context.Context) ([]domain.LocationID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT location_id FROM checked_locations ORDER BY location_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []domain.LocationID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		ids = append(ids, domain.LocationID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return ids, nil
}

// AppendTelemetryEvent records one operational diagnostic.
func (s *Store) AppendTelemetryEvent(ctx context.Context, event storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO telemetry_events (created_at, severity, code, message)
		 VALUES (?, ?, ?, ?)`,
		toMillis(timestamp),
		event.Severity,
		event.Code,
		event.Message,
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}
