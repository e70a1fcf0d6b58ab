package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dshills/studyrag-mcp/internal/mcp"
	"github.com/dshills/studyrag-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("StudyRAG MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		fmt.Printf("Vector Extension: %v\n", storage.VectorExtensionAvailable)
		os.Exit(0)
	}

	// Log to stderr; stdout is reserved for the MCP protocol
	log.SetOutput(os.Stderr)

	// Load .env when present so provider keys can live next to the binary
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	log.Printf("StudyRAG MCP Server v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s, Vector Extension: %v",
		storage.BuildMode, storage.DriverName, storage.VectorExtensionAvailable)

	dbPath := os.Getenv("STUDYRAG_DB_PATH")
	if dbPath == "" {
		dbPath = mcp.DefaultDBPath
	}

	server, err := mcp.NewServer(dbPath)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}

	log.Println("Server stopped")
}
