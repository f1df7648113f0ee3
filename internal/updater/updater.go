// Package updater streams product data bundles from storage into a set
// of processors, one bundle per product, strictly in id order.
package updater

import (
	"context"

	"github.com/gogdb/gogdb/internal/model"
)

// Optional bundle fields a processor can declare interest in.
const (
	WantProduct   = "product"
	WantChangelog = "changelog"
)

// Bundle carries one product's data. Either field may be nil when the
// underlying file is missing or when no processor asked for it.
type Bundle struct {
	ID        int64
	Product   *model.Product
	Changelog []model.ChangeRecord
}

// Processor consumes the bundle stream. Prepare is called once before
// the first bundle and Finish once after the last; Process is called
// once per product, in arrival order. Wants declares which optional
// bundle fields the processor reads so the driver can skip loading the
// rest entirely.
type Processor interface {
	Name() string
	Wants() []string
	Prepare(ctx context.Context) error
	Process(ctx context.Context, bundle *Bundle) error
	Finish(ctx context.Context) error
}

// Aborter is implemented by processors that hold resources needing
// cleanup when the run fails before Finish completes.
type Aborter interface {
	Abort()
}
