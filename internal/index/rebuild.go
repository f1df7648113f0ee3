package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/gogdb/gogdb/internal/output"
	"github.com/gogdb/gogdb/internal/updater"
)

// StagingSuffix distinguishes the staging store from the live one.
const StagingSuffix = ".part"

// rebuildState tracks the coordinator lifecycle. Preparing and
// Finalizing are transient within Prepare and Finish; the stored states
// are the ones that persist between calls.
type rebuildState int

const (
	stateIdle rebuildState = iota
	stateAccepting
	statePublished
	stateFailed
)

// Counts reports how many rows each table received during a rebuild.
type Counts struct {
	Products  int64
	Changelog int64
	Summaries int64
}

// Rebuilder rebuilds the index store from scratch and publishes it by
// atomically renaming the staging file over the live path. Any failure
// between Prepare and Finish leaves the live store untouched. It
// implements updater.Processor.
type Rebuilder struct {
	livePath    string
	stagingPath string
	out         *output.Writer

	state rebuildState
	db    *sql.DB
	tx    *sql.Tx

	insertProduct *sql.Stmt
	insertChange  *sql.Stmt
	insertSummary *sql.Stmt

	counts Counts
}

// NewRebuilder creates a Rebuilder publishing to livePath. The count
// summary emitted on Finish goes through out.
func NewRebuilder(livePath string, out *output.Writer) *Rebuilder {
	return &Rebuilder{
		livePath:    livePath,
		stagingPath: livePath + StagingSuffix,
		out:         out,
	}
}

func (r *Rebuilder) Name() string { return "index" }

func (r *Rebuilder) Wants() []string {
	return []string{updater.WantProduct, updater.WantChangelog}
}

// Prepare sets up a fresh staging store: stale staging file removed,
// schema created, one transaction opened for the whole rebuild, tables
// cleared defensively.
func (r *Rebuilder) Prepare(ctx context.Context) error {
	if r.state != stateIdle {
		return fmt.Errorf("rebuild already started")
	}

	if err := os.MkdirAll(filepath.Dir(r.stagingPath), 0o755); err != nil {
		return r.fail(fmt.Errorf("create index directory: %w", err))
	}
	if err := os.Remove(r.stagingPath); err != nil && !os.IsNotExist(err) {
		return r.fail(fmt.Errorf("remove stale staging store: %w", err))
	}

	db, err := sql.Open("sqlite", r.stagingPath)
	if err != nil {
		return r.fail(fmt.Errorf("open staging store: %w", err))
	}
	db.SetMaxOpenConns(1)
	r.db = db

	// The staging file is discarded on any failure and the publish is an
	// atomic rename, so journal durability buys nothing here. Tune the
	// store for the bulk load instead.
	for _, pragma := range []string{
		"PRAGMA journal_mode = MEMORY",
		"PRAGMA synchronous = OFF",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return r.fail(fmt.Errorf("set pragma: %w", err))
		}
	}

	if err := initSchema(ctx, db); err != nil {
		return r.fail(fmt.Errorf("initialize schema: %w", err))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return r.fail(fmt.Errorf("begin rebuild transaction: %w", err))
	}
	r.tx = tx

	for _, table := range []string{tableProducts, tableChangelog, tableSummary} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return r.fail(fmt.Errorf("clear %s: %w", table, err))
		}
	}

	if err := r.prepareStatements(ctx); err != nil {
		return r.fail(err)
	}

	r.state = stateAccepting
	slog.Debug("staging store ready", slog.String("path", r.stagingPath))
	return nil
}

func (r *Rebuilder) prepareStatements(ctx context.Context) error {
	var err error
	r.insertProduct, err = r.tx.PrepareContext(ctx,
		"INSERT INTO products VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare product insert: %w", err)
	}
	r.insertChange, err = r.tx.PrepareContext(ctx,
		"INSERT INTO changelog VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare changelog insert: %w", err)
	}
	r.insertSummary, err = r.tx.PrepareContext(ctx,
		"INSERT INTO changelog_summary VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare summary insert: %w", err)
	}
	return nil
}

// Process indexes one bundle. Bundles without a product are skipped
// entirely; bundles without changelog data index the product only.
func (r *Rebuilder) Process(ctx context.Context, bundle *updater.Bundle) error {
	if r.state != stateAccepting {
		return fmt.Errorf("rebuild is not accepting bundles")
	}
	if bundle.Product == nil {
		return nil
	}

	row := NewProductRow(bundle.Product)
	if _, err := r.insertProduct.ExecContext(ctx,
		row.ID, row.Title, row.ImageLogo, row.ProductType,
		row.CompSystems, row.SaleRank, row.SearchTitle); err != nil {
		return r.fail(fmt.Errorf("insert product %d: %w", row.ID, err))
	}

	if bundle.Changelog == nil {
		return nil
	}

	rows, summaries, err := BuildChangelogRows(bundle.Product, bundle.Changelog)
	if err != nil {
		return r.fail(fmt.Errorf("index changelog of product %d: %w", bundle.Product.ID, err))
	}
	for _, c := range rows {
		if _, err := r.insertChange.ExecContext(ctx,
			c.ProductID, c.ProductTitle, timestampSeconds(c.Timestamp),
			c.Action, c.Category, c.DlType, c.BonusType, c.PropertyName,
			c.Serialized); err != nil {
			return r.fail(fmt.Errorf("insert changelog row for product %d: %w", c.ProductID, err))
		}
	}
	for _, s := range summaries {
		if _, err := r.insertSummary.ExecContext(ctx,
			s.ProductID, s.ProductTitle, timestampSeconds(s.Timestamp),
			s.Categories); err != nil {
			return r.fail(fmt.Errorf("insert summary row for product %d: %w", s.ProductID, err))
		}
	}
	return nil
}

// Finish commits the rebuild, reports row counts, and publishes the
// staging store over the live path.
func (r *Rebuilder) Finish(ctx context.Context) error {
	if r.state != stateAccepting {
		return fmt.Errorf("rebuild has nothing to finish")
	}

	r.closeStatements()
	if err := r.tx.Commit(); err != nil {
		r.tx = nil
		return r.fail(fmt.Errorf("commit rebuild transaction: %w", err))
	}
	r.tx = nil

	counts, err := r.queryCounts(ctx)
	if err != nil {
		return r.fail(err)
	}
	r.counts = counts

	if r.out != nil {
		r.out.Successf("Indexed %d products, %d changelog entries, %d changelog summaries",
			counts.Products, counts.Changelog, counts.Summaries)
	}
	slog.Info("index_rebuild_complete",
		slog.Int64("products", counts.Products),
		slog.Int64("changelog", counts.Changelog),
		slog.Int64("summaries", counts.Summaries),
		slog.String("path", r.livePath))

	if err := r.db.Close(); err != nil {
		r.db = nil
		r.state = stateFailed
		return fmt.Errorf("close staging store: %w", err)
	}
	r.db = nil

	// The rename is the publication point: the live path flips from the
	// old store to the new one in a single filesystem operation.
	if err := os.Rename(r.stagingPath, r.livePath); err != nil {
		r.state = stateFailed
		return fmt.Errorf("publish index store: %w", err)
	}

	r.state = statePublished
	return nil
}

// Counts returns the row counts of the last successful rebuild.
func (r *Rebuilder) Counts() Counts { return r.counts }

// Abort rolls back the open transaction and releases the staging
// connection. The live store is left exactly as it was; the staging file
// may remain and is removed by the next Prepare. Safe to call more than
// once and after a failure.
func (r *Rebuilder) Abort() {
	if r.state == statePublished || r.state == stateFailed {
		return
	}
	_ = r.fail(nil)
}

// fail transitions to the failed state, rolling back and closing
// whatever is still open, and passes the causing error through.
func (r *Rebuilder) fail(cause error) error {
	r.closeStatements()
	if r.tx != nil {
		_ = r.tx.Rollback()
		r.tx = nil
	}
	if r.db != nil {
		_ = r.db.Close()
		r.db = nil
	}
	r.state = stateFailed
	return cause
}

func (r *Rebuilder) closeStatements() {
	for _, stmt := range []*sql.Stmt{r.insertProduct, r.insertChange, r.insertSummary} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	r.insertProduct, r.insertChange, r.insertSummary = nil, nil, nil
}

func (r *Rebuilder) queryCounts(ctx context.Context) (Counts, error) {
	var counts Counts
	var err error
	if counts.Products, err = countRows(ctx, r.db, tableProducts); err != nil {
		return Counts{}, err
	}
	if counts.Changelog, err = countRows(ctx, r.db, tableChangelog); err != nil {
		return Counts{}, err
	}
	if counts.Summaries, err = countRows(ctx, r.db, tableSummary); err != nil {
		return Counts{}, err
	}
	return counts, nil
}

// timestampSeconds converts a timestamp to the REAL column encoding:
// unix seconds with fractional microseconds.
func timestampSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}
