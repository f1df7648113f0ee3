package index

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gogdb/gogdb/internal/model"
)

// ChangelogRow is one flattened row of the changelog table. Product id
// and title are denormalized so display queries need no join. The
// nullable columns are populated per category; Serialized always carries
// the full original record.
type ChangelogRow struct {
	ProductID    int64
	ProductTitle string
	Timestamp    time.Time
	Action       string
	Category     string
	DlType       *string
	BonusType    *string
	PropertyName *string
	Serialized   string
}

// SummaryRow is one row of the changelog_summary table: the sorted,
// deduplicated, comma-joined categories seen at one timestamp of one
// product's changelog.
type SummaryRow struct {
	ProductID    int64
	ProductTitle string
	Timestamp    time.Time
	Categories   string
}

// summaryAgg accumulates the category set for one timestamp.
type summaryAgg struct {
	when       time.Time
	categories map[string]struct{}
}

// BuildChangelogRows flattens one product's change records into changelog
// rows and produces one summary row per distinct timestamp. Summary
// content is independent of the input order of records sharing a
// timestamp. A record that fails to serialize aborts the whole product:
// the audit column must stay lossless.
func BuildChangelogRows(prod *model.Product, changelog []model.ChangeRecord) ([]ChangelogRow, []SummaryRow, error) {
	rows := make([]ChangelogRow, 0, len(changelog))
	summaries := make(map[int64]*summaryAgg)

	for i := range changelog {
		rec := &changelog[i]
		row := ChangelogRow{
			ProductID:    prod.ID,
			ProductTitle: prod.Title,
			Timestamp:    rec.Timestamp,
			Action:       rec.Action,
			Category:     rec.Category,
		}

		switch rec.Category {
		case model.CategoryDownload:
			if rec.Download != nil {
				row.DlType = &rec.Download.DlType
				row.BonusType = resolveBonusType(prod.ID, rec.Download)
			}
		case model.CategoryProperty:
			if rec.Property != nil {
				row.PropertyName = &rec.Property.PropertyName
			}
			// Unknown categories keep the common fields only.
		}

		serialized, err := model.SerializeRecord(rec)
		if err != nil {
			return nil, nil, err
		}
		row.Serialized = serialized
		rows = append(rows, row)

		key := rec.Timestamp.UnixMicro()
		agg := summaries[key]
		if agg == nil {
			agg = &summaryAgg{when: rec.Timestamp, categories: make(map[string]struct{})}
			summaries[key] = agg
		}
		agg.categories[rec.Category] = struct{}{}
	}

	return rows, flushSummaries(prod, summaries), nil
}

// resolveBonusType reads the new bonus descriptor first, then lets the
// old descriptor overwrite it. The two are expected to always agree; a
// disagreement is logged rather than silently resolved, and the value
// from the old descriptor wins.
func resolveBonusType(productID int64, dl *model.DownloadRecord) *string {
	var bonusType *string
	if dl.NewBonus != nil {
		bonusType = &dl.NewBonus.BonusType
	}
	if dl.OldBonus != nil {
		if bonusType != nil && *bonusType != dl.OldBonus.BonusType {
			slog.Warn("bonus type differs between new and old descriptors",
				slog.Int64("product", productID),
				slog.String("new", *bonusType),
				slog.String("old", dl.OldBonus.BonusType))
		}
		bonusType = &dl.OldBonus.BonusType
	}
	return bonusType
}

// flushSummaries turns the timestamp aggregation into summary rows,
// ordered by timestamp with categories sorted, so the output never
// depends on map iteration order.
func flushSummaries(prod *model.Product, summaries map[int64]*summaryAgg) []SummaryRow {
	keys := make([]int64, 0, len(summaries))
	for key := range summaries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	rows := make([]SummaryRow, 0, len(keys))
	for _, key := range keys {
		agg := summaries[key]
		categories := make([]string, 0, len(agg.categories))
		for category := range agg.categories {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		rows = append(rows, SummaryRow{
			ProductID:    prod.ID,
			ProductTitle: prod.Title,
			Timestamp:    agg.when,
			Categories:   strings.Join(categories, ","),
		})
	}
	return rows
}
