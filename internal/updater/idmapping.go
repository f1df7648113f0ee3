package updater

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gogdb/gogdb/internal/storage"
)

// IDMapProcessor maintains the slug<->id lookup tables for store-visible
// products. The maps are accumulated in memory and written to user/ at
// the end of the run.
type IDMapProcessor struct {
	store     *storage.Storage
	storeToID map[string]int64
	idToStore map[int64]string
}

// NewIDMapProcessor creates the id-mapping processor.
func NewIDMapProcessor(store *storage.Storage) *IDMapProcessor {
	return &IDMapProcessor{store: store}
}

func (p *IDMapProcessor) Name() string { return "idmapping" }

func (p *IDMapProcessor) Wants() []string { return []string{WantProduct} }

func (p *IDMapProcessor) Prepare(ctx context.Context) error {
	p.storeToID = make(map[string]int64)
	p.idToStore = make(map[int64]string)
	return nil
}

func (p *IDMapProcessor) Process(ctx context.Context, bundle *Bundle) error {
	prod := bundle.Product
	if prod == nil || prod.StoreState == "" {
		return nil
	}

	if last := prod.LinkStore[strings.LastIndexByte(prod.LinkStore, '/')+1:]; last != prod.Slug {
		slog.Error("mismatched slug and store link",
			slog.Int64("product", prod.ID),
			slog.String("slug", prod.Slug),
			slog.String("link_store", prod.LinkStore))
	}
	p.storeToID[prod.Slug] = prod.ID
	p.idToStore[prod.ID] = prod.Slug
	return nil
}

func (p *IDMapProcessor) Finish(ctx context.Context) error {
	if err := p.store.SaveUser("store_to_id.json", p.storeToID); err != nil {
		return err
	}
	return p.store.SaveUser("id_to_store.json", p.idToStore)
}
