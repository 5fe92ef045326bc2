package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/rsned/crafting-data/internal/crafting/db"
	"github.com/rsned/crafting-data/internal/crafting/engine"
	"github.com/rsned/crafting-data/internal/crafting/mcp"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP lookup server on stdio",
		Flags: []cli.Flag{
			dbFlag(),
			verboseFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := setupLogger(cmd)

			dbPath, err := requireFlag(cmd, dbFlagName)
			if err != nil {
				return err
			}
			database, err := db.OpenAndInit(ctx, dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			server := mcp.NewServer(engine.New(database), logger)

			logger.Info("starting MCP server", "db", dbPath)
			if err := server.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}
}
