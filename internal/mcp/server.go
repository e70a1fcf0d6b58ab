package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/studyrag-mcp/internal/catalog"
	"github.com/dshills/studyrag-mcp/internal/embedder"
	"github.com/dshills/studyrag-mcp/internal/ingest"
	"github.com/dshills/studyrag-mcp/internal/retriever"
	"github.com/dshills/studyrag-mcp/internal/storage"
	"github.com/dshills/studyrag-mcp/pkg/types"
)

const (
	// ServerName is the MCP server name
	ServerName = "studyrag-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.studyrag/index"
)

// Server wraps the MCP server with application dependencies. It also holds
// the session's active scope; the core packages themselves are stateless
// with respect to scope.
type Server struct {
	mcp       *server.MCPServer
	store     storage.Store
	pipeline  *ingest.Pipeline
	retriever *retriever.Retriever
	catalog   *catalog.Catalog

	scopeMu sync.Mutex
	scope   types.ScopeState
}

// NewServer creates a new MCP server instance
func NewServer(dbPath string) (*Server, error) {
	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".studyrag", "index")
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbFile := filepath.Join(dbPath, "studyrag.db")

	store, err := storage.NewSQLiteStore(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:       mcpServer,
		store:     store,
		pipeline:  ingest.New(store, emb),
		retriever: retriever.New(store, emb),
		catalog:   catalog.New(store),
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(ingestLibraryTool(), s.handleIngestLibrary)
	s.mcp.AddTool(searchLibraryTool(), s.handleSearchLibrary)
	s.mcp.AddTool(navigateScopeTool(), s.handleNavigateScope)
	s.mcp.AddTool(listCatalogTool(), s.handleListCatalog)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

// currentScope returns a copy of the session scope.
func (s *Server) currentScope() types.ScopeState {
	s.scopeMu.Lock()
	defer s.scopeMu.Unlock()
	return s.scope
}

// setScope replaces the session scope.
func (s *Server) setScope(scope types.ScopeState) {
	s.scopeMu.Lock()
	defer s.scopeMu.Unlock()
	s.scope = scope
}
