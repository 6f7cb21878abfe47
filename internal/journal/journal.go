package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Register the pure-Go sqlite driver under the name "sqlite".
	_ "modernc.org/sqlite"
)

// Outcome values recorded for an executed item.
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
)

// schema holds one row per recorded run of an item. The latest row per item
// wins for LastFailed; older rows are kept as run history.
const schema = `
CREATE TABLE IF NOT EXISTS outcomes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	item        TEXT    NOT NULL,
	outcome     TEXT    NOT NULL,
	duration_ms INTEGER NOT NULL,
	recorded_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS outcomes_item_idx ON outcomes(item, id);
`

// Journal records test outcomes in a SQLite database.
type Journal struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates or opens the journal database at path and ensures the schema
// exists. If logger is nil, slog.Default() is used as a fallback.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &Journal{db: db, log: logger}, nil
}

// Record stores the outcome of one executed item.
func (j *Journal) Record(ctx context.Context, item, outcome string, d time.Duration) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO outcomes (item, outcome, duration_ms, recorded_at) VALUES (?, ?, ?, ?)`,
		item, outcome, d.Milliseconds(), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record outcome for %q: %w", item, err)
	}
	j.log.Debug("recorded outcome", "item", item, "outcome", outcome, "duration", d)
	return nil
}

// LastFailed returns the names of items whose most recent recorded run
// failed, ordered by name.
func (j *Journal) LastFailed(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT o.item FROM outcomes o
		JOIN (SELECT item, MAX(id) AS max_id FROM outcomes GROUP BY item) latest
		  ON o.item = latest.item AND o.id = latest.max_id
		WHERE o.outcome = ?
		ORDER BY o.item`, OutcomeFailed)
	if err != nil {
		return nil, fmt.Errorf("query last failed items: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []string
	for rows.Next() {
		var item string
		if err := rows.Scan(&item); err != nil {
			return nil, fmt.Errorf("scan failed item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failed items: %w", err)
	}
	return items, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("close journal database: %w", err)
	}
	return nil
}
