package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/content"
	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/domain"
	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/storage"
	bingosqlite "github.com/louisbranch/landstalker-bingo/internal/services/bingo/storage/sqlite"
)

// DefaultReloadDebounce is how long a catalog file must stay quiet before a
// reload is attempted.
const DefaultReloadDebounce = 250 * time.Millisecond

// RuntimeConfig selects the catalog source and the serving surface.
type RuntimeConfig struct {
	// Addr is the gRPC health listener address, for example ":8095".
	Addr string
	// CatalogPath points at a JSON or YAML catalog document.
	CatalogPath string
	// DBPath and CatalogID select a catalog stored by the importer.
	DBPath    string
	CatalogID string
	// BoardSize, when positive, is required to match the loaded catalog.
	BoardSize int
	// Watch reloads CatalogPath when it changes on disk.
	Watch          bool
	ReloadDebounce time.Duration
}

// Source names where LoadCatalog found the catalog.
type Source string

const (
	SourceFile     Source = "file"
	SourceStore    Source = "sqlite"
	SourceEmbedded Source = "embedded"
)

// LoadCatalog resolves the catalog from the configured file, then the SQLite
// store, then the embedded Landstalker catalog.
func LoadCatalog(ctx context.Context, cfg RuntimeConfig) (*domain.Catalog, Source, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		catalog *domain.Catalog
		source  Source
		err     error
	)
	switch {
	case strings.TrimSpace(cfg.CatalogPath) != "":
		source = SourceFile
		catalog, err = content.Load(cfg.CatalogPath, catalogOptions(cfg)...)
	case strings.TrimSpace(cfg.DBPath) != "":
		source = SourceStore
		catalog, err = loadStoredCatalog(ctx, cfg.DBPath, cfg.CatalogID)
	default:
		source = SourceEmbedded
		catalog, err = content.Landstalker()
	}
	if err != nil {
		return nil, source, err
	}
	if err := checkBoardSize(catalog, cfg.BoardSize); err != nil {
		return nil, source, err
	}
	return catalog, source, nil
}

func loadStoredCatalog(ctx context.Context, dbPath, catalogID string) (*domain.Catalog, error) {
	store, err := bingosqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	applied, err := store.SchemaMigrations(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("opened catalog store %s (migrations %v)", dbPath, applied)
	return readStoredCatalog(ctx, store, catalogID)
}

func readStoredCatalog(ctx context.Context, store storage.CatalogStore, catalogID string) (*domain.Catalog, error) {
	catalogID = strings.TrimSpace(catalogID)
	if catalogID == "" {
		catalogID = content.LandstalkerCatalogID
	}
	record, err := store.GetCatalog(ctx, catalogID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("catalog %s is not stored: %w", catalogID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("get catalog %s: %w", catalogID, err)
	}
	catalog, err := storage.ToCatalog(record)
	if err != nil {
		return nil, fmt.Errorf("rebuild stored catalog %s: %w", catalogID, err)
	}
	return catalog, nil
}

func catalogOptions(cfg RuntimeConfig) []domain.Option {
	if cfg.BoardSize > 0 {
		return []domain.Option{domain.WithBoardSize(cfg.BoardSize)}
	}
	return nil
}

func checkBoardSize(catalog *domain.Catalog, want int) error {
	if want <= 0 || catalog.BoardSize() == want {
		return nil
	}
	return fmt.Errorf("catalog %s has board size %d, want %d", catalog.ID(), catalog.BoardSize(), want)
}
