// Package main validates bingo catalogs and loads them into SQLite.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	entrypoint "github.com/louisbranch/landstalker-bingo/internal/platform/cmd"
	"github.com/louisbranch/landstalker-bingo/internal/platform/config"
	catalogimporter "github.com/louisbranch/landstalker-bingo/internal/tools/importer/bingo"
)

func main() {
	cfg, err := catalogimporter.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCatalogImporter, func(ctx context.Context) error {
		return catalogimporter.Run(ctx, cfg, os.Stdout)
	})
	if errors.Is(err, catalogimporter.ErrAuditFailed) {
		config.ExitCodef(2, "Error: %v", err)
	}
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}
