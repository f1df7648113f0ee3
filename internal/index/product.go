package index

import (
	"github.com/gogdb/gogdb/internal/model"
	"github.com/gogdb/gogdb/internal/normalize"
)

// UnrankedSaleRank is stored for products without a bestseller rank. It
// is larger than any real rank, so unranked products sort last in
// rank-ascending queries.
const UnrankedSaleRank = 100000

// ProductRow is one row of the products table.
type ProductRow struct {
	ID          int64
	Title       string
	ImageLogo   string
	ProductType string
	CompSystems string
	SaleRank    int
	SearchTitle string
}

// NewProductRow maps one product to its index row.
func NewProductRow(prod *model.Product) ProductRow {
	saleRank := UnrankedSaleRank
	if prod.RankBestselling != nil {
		saleRank = *prod.RankBestselling
	}
	return ProductRow{
		ID:          prod.ID,
		Title:       prod.Title,
		ImageLogo:   prod.ImageLogo,
		ProductType: prod.Type,
		CompSystems: normalize.CompressSystems(prod.CompSystems),
		SaleRank:    saleRank,
		SearchTitle: normalize.SearchKey(prod.Title),
	}
}
