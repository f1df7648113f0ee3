package index

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/gogdb/gogdb/internal/names"
)

// ChangeEntry is one changelog entry prepared for display: tags resolved
// to their display names, timestamp decoded from the stored seconds.
type ChangeEntry struct {
	ProductID    int64
	ProductTitle string
	Timestamp    time.Time
	Action       string
	Category     string
	Detail       string
}

// OpenStore opens the published index store read-only.
func OpenStore(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open index store: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// RecentChanges returns the newest changelog entries, most recent first.
func RecentChanges(ctx context.Context, db *sql.DB, limit int) ([]ChangeEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT product_id, product_title, timestamp, action, category,
		       dl_type, bonus_type, property_name
		FROM changelog ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query changelog: %w", err)
	}
	defer rows.Close()

	var entries []ChangeEntry
	for rows.Next() {
		var e ChangeEntry
		var seconds float64
		var dlType, bonusType, propertyName sql.NullString
		if err := rows.Scan(&e.ProductID, &e.ProductTitle, &seconds,
			&e.Action, &e.Category, &dlType, &bonusType, &propertyName); err != nil {
			return nil, fmt.Errorf("scan changelog row: %w", err)
		}
		e.Timestamp = timeFromSeconds(seconds)
		e.Detail = describeChange(e.Category, dlType, bonusType, propertyName)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read changelog rows: %w", err)
	}
	return entries, nil
}

// describeChange renders the category-specific columns with their display
// names. Unknown tags fall back to the raw value.
func describeChange(category string, dlType, bonusType, propertyName sql.NullString) string {
	switch category {
	case "download":
		detail := displayName(names.DlTypes, dlType.String)
		if bonusType.Valid {
			detail += ": " + displayName(names.BonusTypes, bonusType.String)
		}
		return detail
	case "property":
		return propertyName.String
	default:
		return ""
	}
}

func displayName(vocab map[string]string, tag string) string {
	if name, ok := vocab[tag]; ok {
		return name
	}
	return tag
}

// timeFromSeconds decodes the REAL column encoding back to a timestamp.
func timeFromSeconds(seconds float64) time.Time {
	return time.UnixMicro(int64(math.Round(seconds * 1e6))).UTC()
}
