package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/mirror-tools-mcp/internal/config"
	"github.com/ironsheep/mirror-tools-mcp/internal/logger"
	"github.com/ironsheep/mirror-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("mirror-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("mirror-tools-mcp - MCP server for mirror reflection analysis")
			fmt.Println()
			fmt.Println("Usage: mirror-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  MIRROR_MCP_LOG_LEVEL=debug          Log level (debug, info, warn, error)")
			fmt.Println("  MIRROR_MCP_LOG_FORMAT=json          Log format (text, json)")
			fmt.Println("  MIRROR_MCP_MIN_CIRCLE_POINTS=9      Fewest rim points a circle fit accepts")
			fmt.Println("  MIRROR_MCP_INTENSITY=luma           Edge intensity (luma, lightness)")
			fmt.Println("  MIRROR_MCP_BLUR_SIGMA=0             Gaussian pre-smoothing before edge refinement")
			fmt.Println("  MIRROR_MCP_MAX_REQUEST_BYTES=1048576")
			fmt.Println("  MIRROR_MCP_PLOT_WIDTH=6             Chart width in inches")
			fmt.Println("  MIRROR_MCP_PLOT_HEIGHT=4            Chart height in inches")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	// Logs go to stderr; stdout is for MCP protocol.
	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(2)
	}

	logger.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("mirror MCP server starting")

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
