// Package sqlite archives generated bulletins in a local SQLite database so
// they can be fetched again by ID.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/heatguard-service/internal/domain"
	"github.com/couchcryptid/heatguard-service/internal/observability"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory archive.
const MemoryPath = ":memory:"

// generatedAtLayout is fixed-width so generated_at sorts lexically.
const generatedAtLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `CREATE TABLE IF NOT EXISTS bulletins (
	id           TEXT PRIMARY KEY,
	location     TEXT NOT NULL,
	role         TEXT NOT NULL,
	peak_risk    TEXT NOT NULL,
	generated_at TEXT NOT NULL,
	body         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS bulletins_generated_at ON bulletins(generated_at);`

const upsert = `INSERT INTO bulletins(id, location, role, peak_risk, generated_at, body)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	location = excluded.location,
	role = excluded.role,
	peak_risk = excluded.peak_risk,
	generated_at = excluded.generated_at,
	body = excluded.body`

// Archive stores bulletins keyed by ID. Saving an ID twice replaces the
// earlier row. It implements pipeline.BatchLoader.
type Archive struct {
	db      *sql.DB
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Open opens (or creates) the archive at path and applies the schema.
func Open(ctx context.Context, path string, logger *slog.Logger, metrics *observability.Metrics) (*Archive, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if path != MemoryPath {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			logger.Warn("could not enable WAL mode", "error", err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("migrate archive: %w", err)
	}

	return &Archive{
		db:      db,
		logger:  logger.With("component", "archive"),
		metrics: metrics,
	}, nil
}

// Save stores a bulletin, replacing any earlier copy with the same ID.
func (a *Archive) Save(ctx context.Context, b domain.Bulletin) error {
	body, err := json.Marshal(b)
	if err != nil {
		a.record("save", err)
		return fmt.Errorf("encode bulletin %s: %w", b.ID, err)
	}
	_, err = a.db.ExecContext(ctx, upsert, rowArgs(b, body)...)
	a.record("save", err)
	if err != nil {
		return fmt.Errorf("save bulletin %s: %w", b.ID, err)
	}
	return nil
}

// Get returns the bulletin with the given ID, or an error wrapping
// domain.ErrBulletinNotFound.
func (a *Archive) Get(ctx context.Context, id string) (domain.Bulletin, error) {
	var body string
	err := a.db.QueryRowContext(ctx, `SELECT body FROM bulletins WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		a.metrics.ArchiveOperations.WithLabelValues("get", "not_found").Inc()
		return domain.Bulletin{}, fmt.Errorf("%w: %s", domain.ErrBulletinNotFound, id)
	}
	if err != nil {
		a.record("get", err)
		return domain.Bulletin{}, fmt.Errorf("get bulletin %s: %w", id, err)
	}

	var b domain.Bulletin
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		a.record("get", err)
		return domain.Bulletin{}, fmt.Errorf("decode bulletin %s: %w", id, err)
	}
	a.record("get", nil)
	return b, nil
}

// Recent returns up to limit bulletins, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]domain.Bulletin, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT body FROM bulletins ORDER BY generated_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list bulletins: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Bulletin, 0, limit)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var b domain.Bulletin
		if err := json.Unmarshal([]byte(body), &b); err != nil {
			return nil, fmt.Errorf("decode bulletin: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// LoadBatch archives a batch of pipeline output in one transaction.
func (a *Archive) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("prepare archive batch: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, rowArgs(e.Bulletin, e.Value)...); err != nil {
			a.record("save", err)
			return fmt.Errorf("archive bulletin %s: %w", e.Bulletin.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		a.record("save", err)
		return fmt.Errorf("commit archive batch: %w", err)
	}
	a.metrics.ArchiveOperations.WithLabelValues("save", "success").Add(float64(len(events)))
	a.logger.Debug("batch archived", "size", len(events))
	return nil
}

// CheckReadiness pings the database.
func (a *Archive) CheckReadiness(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("archive unavailable: %w", err)
	}
	return nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) record(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	a.metrics.ArchiveOperations.WithLabelValues(op, outcome).Inc()
}

func rowArgs(b domain.Bulletin, body []byte) []any {
	return []any{
		b.ID,
		b.Location,
		b.Role.Key(),
		b.PeakRisk.Key(),
		b.GeneratedAt.UTC().Format(generatedAtLayout),
		string(body),
	}
}
