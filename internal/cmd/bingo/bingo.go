// Package bingo parses bingo catalog service flags and launches the service.
package bingo

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/landstalker-bingo/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/landstalker-bingo/internal/platform/grpc"
	"github.com/louisbranch/landstalker-bingo/internal/platform/timeouts"
	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/app"
)

// Config holds bingo command configuration. Environment variables carry the
// BINGO_ prefix, for example BINGO_PORT.
type Config struct {
	Port           int           `env:"PORT" envDefault:"8095"`
	CatalogPath    string        `env:"CATALOG_PATH"`
	DBPath         string        `env:"DB_PATH"`
	CatalogID      string        `env:"CATALOG_ID"`
	BoardSize      int           `env:"BOARD_SIZE"`
	Watch          bool          `env:"WATCH"`
	ReloadDebounce time.Duration `env:"RELOAD_DEBOUNCE" envDefault:"250ms"`
	// Probe, when set, checks a running server's health instead of serving.
	Probe string
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The bingo gRPC health port")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "Catalog document (.json, .yaml) to serve")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Catalog database written by catalog-importer")
	fs.StringVar(&cfg.CatalogID, "catalog-id", cfg.CatalogID, "Stored catalog id (defaults to the Landstalker catalog)")
	fs.IntVar(&cfg.BoardSize, "board-size", cfg.BoardSize, "Required board side length; 0 accepts the catalog's own")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "Reload the catalog document when it changes")
	fs.DurationVar(&cfg.ReloadDebounce, "reload-debounce", cfg.ReloadDebounce, "Quiet period before a changed catalog is reloaded")
	fs.StringVar(&cfg.Probe, "probe", "", "Check health of a running server at this address and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.BoardSize < 0 {
		return Config{}, errors.New("board-size must not be negative")
	}
	if cfg.Watch && strings.TrimSpace(cfg.CatalogPath) == "" {
		return Config{}, errors.New("watch requires a catalog path")
	}
	return cfg, nil
}

// RuntimeConfig converts command configuration into the app runtime shape.
func (c Config) RuntimeConfig() app.RuntimeConfig {
	return app.RuntimeConfig{
		Addr:           fmt.Sprintf(":%d", c.Port),
		CatalogPath:    c.CatalogPath,
		DBPath:         c.DBPath,
		CatalogID:      c.CatalogID,
		BoardSize:      c.BoardSize,
		Watch:          c.Watch,
		ReloadDebounce: c.ReloadDebounce,
	}
}

// Run starts the bingo catalog service, or probes one when cfg.Probe is set.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBingo, func(ctx context.Context) error {
		if addr := strings.TrimSpace(cfg.Probe); addr != "" {
			if err := platformgrpc.Probe(ctx, addr, app.HealthService, timeouts.Probe, log.Printf); err != nil {
				return fmt.Errorf("probe %s: %w", addr, err)
			}
			return nil
		}
		return app.Run(ctx, cfg.RuntimeConfig())
	})
}
