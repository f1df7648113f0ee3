package index

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogdb/gogdb/internal/model"
)

func TestRecentChanges(t *testing.T) {
	livePath := filepath.Join(t.TempDir(), "index.sqlite3")
	bundle := testBundle()
	bundle.Changelog = append(bundle.Changelog, model.ChangeRecord{
		Timestamp: time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC),
		Action:    "add",
		Category:  model.CategoryDownload,
		Download: &model.DownloadRecord{
			DlType:   "bonus",
			NewBonus: &model.BonusInfo{BonusType: "manuals"},
		},
	})
	runRebuild(t, livePath, bundle)

	db, err := OpenStore(livePath)
	require.NoError(t, err)
	defer db.Close()

	entries, err := RecentChanges(context.Background(), db, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Most recent first, tags resolved to display names.
	newest := entries[0]
	assert.Equal(t, "Foo Bar", newest.ProductTitle)
	assert.True(t, newest.Timestamp.Equal(time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Bonus: Manuals", newest.Detail)

	for _, e := range entries[1:] {
		assert.True(t, e.Timestamp.Before(newest.Timestamp))
	}
}

func TestRecentChanges_Limit(t *testing.T) {
	livePath := filepath.Join(t.TempDir(), "index.sqlite3")
	runRebuild(t, livePath, testBundle())

	db, err := OpenStore(livePath)
	require.NoError(t, err)
	defer db.Close()

	entries, err := RecentChanges(context.Background(), db, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func TestDescribeChange_UnknownTagFallsBack(t *testing.T) {
	detail := describeChange("download",
		nullString("installer"), nullString("something new"), nullString(""))
	assert.Equal(t, "Installer: something new", detail)
}

func TestTimeFromSeconds_RoundTrip(t *testing.T) {
	when := time.Date(2024, 3, 10, 12, 0, 0, 250000000, time.UTC)
	assert.True(t, timeFromSeconds(timestampSeconds(when)).Equal(when))
}
