// Package catalogimporter validates bingo catalog documents and loads them
// into the SQLite catalog store.
package catalogimporter

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/content"
	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/domain"
	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/storage"
	bingosqlite "github.com/louisbranch/landstalker-bingo/internal/services/bingo/storage/sqlite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/landstalker-bingo/internal/tools/importer/bingo"

// ErrAuditFailed is returned in strict mode when the catalog has pools no
// slot references. Unassigned slots are reported but never fail.
var ErrAuditFailed = errors.New("catalog audit failed")

// Config holds configuration for the catalog importer.
type Config struct {
	File      string
	DBPath    string
	CatalogID string
	DryRun    bool
	Strict    bool
	Export    string
	List      bool
	Delete    string
}

type catalogStore interface {
	storage.CatalogStore
	Close() error
}

var openStore = func(path string) (catalogStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := bingosqlite.Open(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

var now = func() time.Time { return time.Now().UTC() }

// ParseConfig parses CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		DBPath: filepath.Join("data", "bingo.db"),
	}

	fs.StringVar(&cfg.File, "file", "", "catalog document (.json, .yaml); empty imports the embedded Landstalker catalog")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "catalog database path")
	fs.StringVar(&cfg.CatalogID, "catalog-id", "", "store the catalog under this id instead of the document id")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "validate without writing to the database")
	fs.BoolVar(&cfg.Strict, "strict", false, "fail when the catalog has pools no slot references")
	fs.StringVar(&cfg.Export, "export", "", "write the validated catalog to this .json or .yaml path")
	fs.BoolVar(&cfg.List, "list", false, "list stored catalog ids and exit")
	fs.StringVar(&cfg.Delete, "delete", "", "delete the stored catalog with this id and exit")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.DBPath) == "" && (!cfg.DryRun || cfg.List || cfg.Delete != "") {
		return Config{}, errors.New("db-path is required")
	}
	if cfg.List && cfg.Delete != "" {
		return Config{}, errors.New("list and delete are mutually exclusive")
	}
	if cfg.Export != "" {
		if _, err := content.FormatFromPath(cfg.Export); err != nil {
			return Config{}, fmt.Errorf("export: %w", err)
		}
	}
	return cfg, nil
}

// Run executes the importer using the provided Config.
func Run(ctx context.Context, cfg Config, out io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "bingo.catalog.import", trace.WithAttributes(
		attribute.String("bingo.catalog.file", cfg.File),
		attribute.Bool("bingo.import.dry_run", cfg.DryRun),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	switch {
	case cfg.List:
		return listCatalogs(ctx, cfg.DBPath, out)
	case strings.TrimSpace(cfg.Delete) != "":
		return deleteCatalog(ctx, cfg.DBPath, strings.TrimSpace(cfg.Delete), out)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	span.SetAttributes(
		attribute.String("bingo.catalog.id", catalog.ID()),
		attribute.Int("bingo.catalog.pools", len(catalog.Pools())),
	)

	audit := catalog.Audit()
	if err := writeSummary(out, catalog, audit); err != nil {
		return err
	}

	if cfg.Export != "" {
		if err := content.Save(cfg.Export, catalog); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if _, err := fmt.Fprintf(out, "exported %s to %s\n", catalog.ID(), cfg.Export); err != nil {
			return err
		}
	}

	if cfg.Strict && !audit.Clean() {
		return fmt.Errorf("%w: unreferenced pools %v", ErrAuditFailed, audit.UnreferencedPools)
	}

	if cfg.DryRun {
		_, err = fmt.Fprintf(out, "validated catalog %s\n", catalog.ID())
		return err
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	if err := store.PutCatalog(ctx, storage.FromCatalog(catalog, now())); err != nil {
		return fmt.Errorf("import %s: %w", catalog.ID(), err)
	}
	_, err = fmt.Fprintf(out, "imported catalog %s into %s\n", catalog.ID(), cfg.DBPath)
	return err
}

func loadCatalog(cfg Config) (*domain.Catalog, error) {
	var (
		catalog *domain.Catalog
		err     error
	)
	if strings.TrimSpace(cfg.File) == "" {
		catalog, err = content.Landstalker()
	} else {
		catalog, err = content.Load(cfg.File)
	}
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(cfg.CatalogID)
	if id == "" || id == catalog.ID() {
		return catalog, nil
	}
	def := catalog.Definition()
	def.ID = id
	renamed, err := domain.New(def, domain.WithBoardSize(catalog.BoardSize()))
	if err != nil {
		return nil, fmt.Errorf("rename catalog to %s: %w", id, err)
	}
	return renamed, nil
}

func writeSummary(out io.Writer, catalog *domain.Catalog, audit domain.Audit) error {
	goals := 0
	for _, pool := range catalog.Pools() {
		goals += len(pool.Goals)
	}
	if _, err := fmt.Fprintf(out, "catalog %s: %d pools, %d goals, board %dx%d\n",
		catalog.ID(), len(catalog.Pools()), goals, catalog.BoardSize(), catalog.BoardSize()); err != nil {
		return err
	}
	if len(audit.UnreferencedPools) > 0 {
		if _, err := fmt.Fprintf(out, "unreferenced pools: %v\n", audit.UnreferencedPools); err != nil {
			return err
		}
	}
	if len(audit.UnassignedSlots) > 0 {
		if _, err := fmt.Fprintf(out, "unassigned slots: %v\n", audit.UnassignedSlots); err != nil {
			return err
		}
	}
	return nil
}

func listCatalogs(ctx context.Context, dbPath string, out io.Writer) error {
	store, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	ids, err := store.ListCatalogIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		_, err = fmt.Fprintln(out, "no catalogs stored")
		return err
	}
	for _, id := range ids {
		if _, err := fmt.Fprintln(out, id); err != nil {
			return err
		}
	}
	return nil
}

func deleteCatalog(ctx context.Context, dbPath, id string, out io.Writer) error {
	store, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	if err := store.DeleteCatalog(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	_, err = fmt.Fprintf(out, "deleted catalog %s\n", id)
	return err
}
