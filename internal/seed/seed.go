// Package seed moves catalog data between the YAML seed file, the database
// and the in-memory catalog.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/domain"
	"github.com/dom/hades-build-planner/internal/repository"
	"gopkg.in/yaml.v3"
)

// ErrNoCatalog is returned by Load when the database holds no boons
var ErrNoCatalog = errors.New("no catalog stored; run 'catalog seed' or set CATALOG_FILE")

// ReadFile parses a catalog seed file. Unknown keys are rejected.
func ReadFile(path string) (catalog.RawData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.RawData{}, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode parses catalog YAML from r
func Decode(r io.Reader) (catalog.RawData, error) {
	var raw catalog.RawData
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return catalog.RawData{}, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return raw, nil
}

// Import checks raw and replaces the stored catalog with it. A catalog that
// fails integrity checks is never written.
func Import(ctx context.Context, repo repository.CatalogRepository, raw catalog.RawData) (*catalog.Catalog, error) {
	cat, err := catalog.Load(raw)
	if err != nil {
		return nil, err
	}

	rows, err := domain.NewCatalogRows(cat.Raw(), time.Now())
	if err != nil {
		return nil, err
	}
	if err := repo.ReplaceAll(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to store catalog: %w", err)
	}
	return cat, nil
}

// Load reads the stored catalog and builds the in-memory snapshot
func Load(ctx context.Context, repo repository.CatalogRepository) (*catalog.Catalog, error) {
	rows, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if rows.IsEmpty() {
		return nil, ErrNoCatalog
	}
	raw, err := rows.RawData()
	if err != nil {
		return nil, err
	}
	return catalog.Load(raw)
}

// LoadOrSeed loads the stored catalog, importing seedFile first when the
// database holds no boons yet. An empty seedFile disables seeding, in which
// case an empty database yields ErrNoCatalog.
func LoadOrSeed(ctx context.Context, repo repository.CatalogRepository, seedFile string) (*catalog.Catalog, error) {
	count, err := repo.CountBoons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count boons: %w", err)
	}

	if count == 0 && seedFile != "" {
		log.Printf("Catalog is empty, seeding from %s", seedFile)
		raw, err := ReadFile(seedFile)
		if err != nil {
			return nil, err
		}
		if _, err := Import(ctx, repo, raw); err != nil {
			return nil, err
		}
	}

	return Load(ctx, repo)
}
