// Command crafting-data builds the crafting catalog from the game export
// tables and serves lookups over it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/rsned/crafting-data/internal/crafting/mcp"
)

const name = "crafting-data"

// overridden during build with ldflags
var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down...")
		cancel()
	}()

	if err := newApp().Run(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	mcp.Version = version

	return &cli.Command{
		Name:    name,
		Usage:   "Build and query the crafting catalog",
		Version: version,
		Commands: []*cli.Command{
			buildCmd(),
			publishCmd(),
			serveCmd(),
		},
	}
}

const (
	verboseFlagName = "verbose"
	dbFlagName      = "db"
)

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  verboseFlagName,
		Usage: "Enable debug logging",
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  dbFlagName,
		Usage: "Path to the SQLite lookup database",
	}
}

// setupLogger installs a stderr text logger at the level selected by
// --verbose. Stdout is left to the command's output.
func setupLogger(cmd *cli.Command) *slog.Logger {
	logLevel := slog.LevelInfo
	if cmd.Bool(verboseFlagName) {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func requireFlag(cmd *cli.Command, flag string) (string, error) {
	v := cmd.String(flag)
	if v == "" {
		return "", fmt.Errorf("--%s is required", flag)
	}
	return v, nil
}
