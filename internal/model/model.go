// Package model defines the catalog data types consumed by the index
// rebuild: products and their changelog records as they appear in the
// JSON storage layout.
package model

import "time"

// Change record categories. The set is open ended: records with a
// category outside this list still carry the common fields and are
// indexed without category-specific extraction.
const (
	CategoryDownload = "download"
	CategoryProperty = "property"
)

// Product is one catalog entry as stored in products/<id>/product.json.
// It is consumed read-only by the index rebuild.
type Product struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug,omitempty"`
	ImageLogo string `json:"image_logo"`
	Type      string `json:"type"`

	// CompSystems is the set of platforms the product supports
	// (windows, mac, linux).
	CompSystems []string `json:"comp_systems"`

	// RankBestselling is nil for unranked products.
	RankBestselling *int `json:"rank_bestselling"`

	// StoreState is empty for products that are not visible in the store.
	StoreState string `json:"store_state,omitempty"`
	LinkStore  string `json:"link_store,omitempty"`
}

// ChangeRecord is one entry of a product's changelog. Category-specific
// payload lives in exactly one of the optional record pointers.
type ChangeRecord struct {
	Timestamp time.Time       `json:"timestamp"`
	Action    string          `json:"action"`
	Category  string          `json:"category"`
	Download  *DownloadRecord `json:"download_record,omitempty"`
	Property  *PropertyRecord `json:"property_record,omitempty"`
}

// DownloadRecord is the payload of a "download" change record.
type DownloadRecord struct {
	DlType string `json:"dl_type"`
	Name   string `json:"name,omitempty"`
	OS     string `json:"os,omitempty"`

	// NewBonus and OldBonus describe the bonus before and after the
	// change. Either or both may be absent.
	NewBonus *BonusInfo `json:"dl_new_bonus,omitempty"`
	OldBonus *BonusInfo `json:"dl_old_bonus,omitempty"`
}

// BonusInfo describes a downloadable bonus.
type BonusInfo struct {
	Name      string `json:"name,omitempty"`
	BonusType string `json:"bonus_type"`
	Count     int    `json:"count,omitempty"`
}

// PropertyRecord is the payload of a "property" change record.
type PropertyRecord struct {
	PropertyName string `json:"property_name"`
	OldValue     any    `json:"old_value,omitempty"`
	NewValue     any    `json:"new_value,omitempty"`
}
