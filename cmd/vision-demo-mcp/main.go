package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/vision-demo-mcp/internal/config"
	"github.com/ironsheep/vision-demo-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "vision-demo-mcp - MCP server for the computer vision demo workbench")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: vision-demo-mcp [options]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment variables (also read from .env):")
	for _, name := range []string{
		config.EnvLogLevel,
		config.EnvConfidence,
		config.EnvDetectionModel,
		config.EnvClassificationModel,
		config.EnvDetectionStepMS,
		config.EnvClassifyStepMS,
		config.EnvExportDir,
	} {
		fmt.Fprintf(out, "  %s\n", name)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "This server communicates via MCP protocol over stdin/stdout.")
	fmt.Fprintln(out, "Configure it in your MCP client.")
}

func main() {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "path to a TOML config file")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("vision-demo-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "vision-demo-mcp: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vision-demo-mcp: %v\n", err)
		os.Exit(1)
	}

	// Logging goes to stderr; stdout is for MCP protocol.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = Version
	srv := server.New(cfg, server.WithLogger(logger))
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
