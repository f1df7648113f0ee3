package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogdb/gogdb/internal/model"
)

func TestNewProductRow(t *testing.T) {
	rank := 17
	prod := &model.Product{
		ID:              10,
		Title:           "Pokémon: Détective",
		ImageLogo:       "images/logo.png",
		Type:            "game",
		CompSystems:     []string{"linux", "windows"},
		RankBestselling: &rank,
	}

	row := NewProductRow(prod)

	assert.Equal(t, int64(10), row.ID)
	assert.Equal(t, "Pokémon: Détective", row.Title)
	assert.Equal(t, "game", row.ProductType)
	assert.Equal(t, "WL", row.CompSystems)
	assert.Equal(t, 17, row.SaleRank)
	assert.Equal(t, "pokemon detective", row.SearchTitle)
}

func TestNewProductRow_UnrankedSentinel(t *testing.T) {
	row := NewProductRow(&model.Product{ID: 1, Title: "Foo"})

	assert.Equal(t, UnrankedSaleRank, row.SaleRank)
}

func TestNewProductRow_ZeroRankIsKept(t *testing.T) {
	rank := 0
	row := NewProductRow(&model.Product{ID: 1, Title: "Foo", RankBestselling: &rank})

	// An explicit rank of zero is a real rank, not absence.
	assert.Equal(t, 0, row.SaleRank)
}
