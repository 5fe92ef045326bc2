package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/rsned/crafting-data/internal/crafting/config"
	"github.com/rsned/crafting-data/internal/crafting/db"
	"github.com/rsned/crafting-data/internal/crafting/engine"
	"github.com/rsned/crafting-data/internal/crafting/icons"
	"github.com/rsned/crafting-data/internal/crafting/output"
	"github.com/rsned/crafting-data/internal/crafting/sync"
	"github.com/rsned/crafting-data/pkg/crafting"
)

func buildCmd() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build crafting_data.json from the export tables",
		Description: `Reads item_desc.json, cargo_desc.json, crafting_recipe_desc.json,
extraction_recipe_desc.json, item_list_desc.json and enemy_desc.json from the
data directory and writes the ranked catalog.

An output path ending in .zst is zstd-compressed. With --db the catalog is
also published to the lookup database used by "serve".`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Directory holding the export tables",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML file overriding the built-in classification tables",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output catalog path",
				Value:   "crafting_data.json",
			},
			&cli.StringFlag{
				Name:  "icons",
				Usage: "Web asset root used to resolve icon paths",
			},
			dbFlag(),
			verboseFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := setupLogger(cmd)

			cfg := config.Default()
			if path := cmd.String("config"); path != "" {
				var err error
				if cfg, err = config.Load(path); err != nil {
					return err
				}
			}

			runID := uuid.NewString()
			logger = logger.With("run_id", runID)

			tables, err := sync.NewLoader(logger).Load(ctx, cmd.String("data"))
			if err != nil {
				return fmt.Errorf("loading tables: %w", err)
			}

			builder, err := engine.NewBuilder(tables, cfg, logger)
			if err != nil {
				return err
			}
			catalog, err := builder.Build()
			if err != nil {
				return err
			}

			resolveIcons(logger, catalog, cmd.String("icons"))

			out := cmd.String("out")
			n, err := output.WriteFile(out, catalog)
			if err != nil {
				return err
			}
			logger.Info("wrote catalog",
				"path", out,
				"size", humanize.Bytes(uint64(n)),
				"entries", catalog.Len(),
				"recipes", catalog.RecipeCount())

			if dbPath := cmd.String(dbFlagName); dbPath != "" {
				if err := publish(ctx, logger, dbPath, catalog, runID); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func resolveIcons(logger *slog.Logger, catalog *crafting.Catalog, root string) {
	if root == "" {
		icons.NormalizeCatalog(catalog)
		return
	}

	missing := icons.NewResolver(os.DirFS(root)).ResolveCatalog(catalog)
	if len(missing) == 0 {
		logger.Info("all icons found", "root", root)
		return
	}
	for _, icon := range missing {
		logger.Warn("missing icon", "icon", icon)
	}
	logger.Warn("icons missing", "root", root, "count", len(missing))
}

func publish(ctx context.Context, logger *slog.Logger, dbPath string, catalog *crafting.Catalog, runID string) error {
	database, err := db.OpenAndInit(ctx, dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if err := sync.NewSyncer(database).Publish(ctx, catalog, runID); err != nil {
		return err
	}
	logger.Info("published catalog", "db", dbPath, "entries", catalog.Len())
	return nil
}

func publishCmd() *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Load a built catalog file into the lookup database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Catalog file written by build (.json or .json.zst)",
				Value: "crafting_data.json",
			},
			dbFlag(),
			verboseFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := setupLogger(cmd)

			dbPath, err := requireFlag(cmd, dbFlagName)
			if err != nil {
				return err
			}
			catalog, err := output.ReadFile(cmd.String("catalog"))
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			return publish(ctx, logger.With("run_id", runID), dbPath, catalog, runID)
		},
	}
}
