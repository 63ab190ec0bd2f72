package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/circular-marker-ar/internal/config"
	"github.com/ironsheep/circular-marker-ar/internal/server"
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
			fmt.Printf("circular-marker-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("circular-marker-mcp - MCP server for circular marker detection and pose estimation")
			fmt.Println()
			fmt.Println("Usage: circular-marker-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  MARKER_MCP_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  MARKER_MCP_CONFIG=<file>      JSON configuration file")
			fmt.Println("  MARKER_MCP_SETTINGS=<file>    Legacy whitespace settings file, applied after the JSON file")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("MARKER_MCP_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Marker MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg, err := loadConfig(os.Getenv("MARKER_MCP_CONFIG"), os.Getenv("MARKER_MCP_SETTINGS"))
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	srv := server.New(cfg, server.WithDebug(debug))
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func loadConfig(configPath, settingsPath string) (config.Config, error) {
	cfg := config.DefaultConfig()
	var err error
	if configPath != "" {
		if cfg, err = config.Load(configPath); err != nil {
			return cfg, err
		}
	}
	if settingsPath != "" {
		if cfg, err = config.LoadSettings(settingsPath, cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
