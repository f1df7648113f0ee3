package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/gogdb/gogdb/internal/storage"
)

// lockFileName guards the data directory against concurrent update runs.
const lockFileName = ".update.lock"

// Runner drives one update run: it walks the stored products and feeds
// each bundle to every processor. Processing is strictly sequential; only
// the file loads for a single bundle happen concurrently.
type Runner struct {
	store *storage.Storage
	procs []Processor
}

// NewRunner creates a Runner over the given storage and processors.
func NewRunner(store *storage.Storage, procs ...Processor) *Runner {
	return &Runner{store: store, procs: procs}
}

// Run executes the full update: prepare all processors, stream every
// bundle, finish all processors. Any failure aborts the run; processors
// implementing Aborter get a chance to release resources. The data
// directory is locked for the duration so two runs cannot interleave.
func (r *Runner) Run(ctx context.Context) error {
	if err := os.MkdirAll(r.store.Root(), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	lock := flock.New(filepath.Join(r.store.Root(), lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire update lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another update is already running on %s", r.store.Root())
	}
	defer func() { _ = lock.Unlock() }()

	finished := false
	defer func() {
		if finished {
			return
		}
		for _, proc := range r.procs {
			if a, ok := proc.(Aborter); ok {
				a.Abort()
			}
		}
	}()

	wants := r.wantSet()
	ids, err := r.store.ListProducts()
	if err != nil {
		return err
	}
	slog.Info("update_run_started",
		slog.Int("products", len(ids)),
		slog.Int("processors", len(r.procs)),
		slog.String("root", r.store.Root()))

	for _, proc := range r.procs {
		if err := proc.Prepare(ctx); err != nil {
			return fmt.Errorf("prepare %s: %w", proc.Name(), err)
		}
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		bundle, err := r.loadBundle(ctx, id, wants)
		if err != nil {
			return err
		}
		for _, proc := range r.procs {
			if err := proc.Process(ctx, bundle); err != nil {
				return fmt.Errorf("process product %d in %s: %w", id, proc.Name(), err)
			}
		}
	}

	for _, proc := range r.procs {
		if err := proc.Finish(ctx); err != nil {
			return fmt.Errorf("finish %s: %w", proc.Name(), err)
		}
	}

	finished = true
	slog.Info("update_run_complete", slog.Int("products", len(ids)))
	return nil
}

// wantSet is the union of all processors' declared wants.
func (r *Runner) wantSet() map[string]bool {
	wants := make(map[string]bool)
	for _, proc := range r.procs {
		for _, w := range proc.Wants() {
			wants[w] = true
		}
	}
	return wants
}

// loadBundle reads the wanted pieces of one product bundle. The loads are
// independent files, so they run concurrently; the bundle is handed to
// processors only after all of them completed.
func (r *Runner) loadBundle(ctx context.Context, id int64, wants map[string]bool) (*Bundle, error) {
	bundle := &Bundle{ID: id}

	g, _ := errgroup.WithContext(ctx)
	if wants[WantProduct] {
		g.Go(func() error {
			prod, err := r.store.LoadProduct(id)
			bundle.Product = prod
			return err
		})
	}
	if wants[WantChangelog] {
		g.Go(func() error {
			changelog, err := r.store.LoadChangelog(id)
			bundle.Changelog = changelog
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load bundle %d: %w", id, err)
	}
	return bundle, nil
}
