// Package storage reads and writes the JSON catalog layout on disk.
//
// The layout is one directory per product under products/, derived
// outputs under user/, and the published index store at the root:
//
//	<root>/products/<id>/product.json
//	<root>/products/<id>/changes.json
//	<root>/user/<name>
//	<root>/index.sqlite3
//
// All writes are atomic: content goes to a temporary file in the target
// directory and is renamed into place.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/renameio"

	"github.com/gogdb/gogdb/internal/model"
)

// Storage provides access to one catalog data directory.
type Storage struct {
	root string
}

// New creates a Storage rooted at the given data directory. The directory
// does not have to exist yet; it is created on first write.
func New(root string) *Storage {
	return &Storage{root: root}
}

// Root returns the data directory path.
func (s *Storage) Root() string {
	return s.root
}

// ProductPath returns the path of a product's main record.
func (s *Storage) ProductPath(id int64) string {
	return filepath.Join(s.root, "products", strconv.FormatInt(id, 10), "product.json")
}

// ChangelogPath returns the path of a product's changelog.
func (s *Storage) ChangelogPath(id int64) string {
	return filepath.Join(s.root, "products", strconv.FormatInt(id, 10), "changes.json")
}

// UserPath returns the path of a derived output file under user/.
func (s *Storage) UserPath(name string) string {
	return filepath.Join(s.root, "user", name)
}

// IndexDBPath returns the path of the published index store.
func (s *Storage) IndexDBPath() string {
	return filepath.Join(s.root, "index.sqlite3")
}

// LoadProduct reads one product record. A missing file is not an error:
// it returns (nil, nil).
func (s *Storage) LoadProduct(id int64) (*model.Product, error) {
	data, err := os.ReadFile(s.ProductPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read product %d: %w", id, err)
	}
	var prod model.Product
	if err := json.Unmarshal(data, &prod); err != nil {
		return nil, fmt.Errorf("decode product %d: %w", id, err)
	}
	return &prod, nil
}

// LoadChangelog reads one product's changelog. A missing file is not an
// error: it returns (nil, nil).
func (s *Storage) LoadChangelog(id int64) ([]model.ChangeRecord, error) {
	data, err := os.ReadFile(s.ChangelogPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read changelog %d: %w", id, err)
	}
	var changelog []model.ChangeRecord
	if err := json.Unmarshal(data, &changelog); err != nil {
		return nil, fmt.Errorf("decode changelog %d: %w", id, err)
	}
	return changelog, nil
}

// SaveProduct writes one product record atomically.
func (s *Storage) SaveProduct(prod *model.Product) error {
	return s.writeJSON(s.ProductPath(prod.ID), prod)
}

// SaveChangelog writes one product's changelog atomically.
func (s *Storage) SaveChangelog(id int64, changelog []model.ChangeRecord) error {
	return s.writeJSON(s.ChangelogPath(id), changelog)
}

// SaveUser writes a derived output under user/ atomically.
func (s *Storage) SaveUser(name string, v any) error {
	return s.writeJSON(s.UserPath(name), v)
}

// ListProducts returns the ids of all stored products in ascending order.
// Directory entries that are not numeric ids are skipped.
func (s *Storage) ListProducts() ([]int64, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "products"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	var ids []int64
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.ParseInt(entry.Name(), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// writeJSON marshals v with stable formatting and writes it atomically.
func (s *Storage) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
