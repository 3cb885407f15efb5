package visitorinterest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kiosk404/hookmind/internal/hookmind/events"
	_ "github.com/mattn/go-sqlite3"
)

// TableArchive holds the plugin's archived distributions.
const TableArchive = "archive_visitorinterest"

type archiveStore struct {
	db *sql.DB
}

func openArchiveStore(path string) (*archiveStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &archiveStore{db: db}, nil
}

// EnsureSchema creates the archive table and its index.
func (s *archiveStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + TableArchive + ` (
			site_id INTEGER NOT NULL,
			period TEXT NOT NULL,
			date TEXT NOT NULL,
			record TEXT NOT NULL,
			label TEXT NOT NULL,
			nb_visits INTEGER NOT NULL,
			PRIMARY KEY (site_id, period, date, record, label)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + TableArchive + `_record ON ` + TableArchive + `(record)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}

// DropSchema removes the archive table.
func (s *archiveStore) DropSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+TableArchive); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}

// Save replaces the rows of one archive in a single transaction.
func (s *archiveStore) Save(ctx context.Context, siteID int, period, date string, rec events.Records) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+TableArchive+` WHERE site_id = ? AND period = ? AND date = ?`,
		siteID, period, date); err != nil {
		return fmt.Errorf("clear archive: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+TableArchive+` (site_id, period, date, record, label, nb_visits) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for record, rows := range rec {
		for label, n := range rows {
			if _, err := stmt.ExecContext(ctx, siteID, period, date, record, label, n); err != nil {
				return fmt.Errorf("insert %s/%s: %w", record, label, err)
			}
		}
	}
	return tx.Commit()
}

// Load reads one archive.
func (s *archiveStore) Load(ctx context.Context, siteID int, period, date string) (events.Records, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record, label, nb_visits FROM `+TableArchive+` WHERE site_id = ? AND period = ? AND date = ?`,
		siteID, period, date)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	rec := make(events.Records)
	for rows.Next() {
		var record, label string
		var n int64
		if err := rows.Scan(&record, &label, &n); err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		rec.Add(record, label, n)
	}
	return rec, rows.Err()
}

// Dates lists the archived dates of a site and period, newest first.
func (s *archiveStore) Dates(ctx context.Context, siteID int, period string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT date FROM `+TableArchive+` WHERE site_id = ? AND period = ?`, siteID, period)
	if err != nil {
		return nil, fmt.Errorf("query dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, rows.Err()
}

func (s *archiveStore) Close() error {
	return s.db.Close()
}
