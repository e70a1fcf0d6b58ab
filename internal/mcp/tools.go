package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/studyrag-mcp/internal/ingest"
	"github.com/dshills/studyrag-mcp/internal/scope"
	"github.com/dshills/studyrag-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeBadLibrary    = -32001 // Library root missing or malformed
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleIngestLibrary handles the ingest_library tool invocation
func (s *Server) handleIngestLibrary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	root, ok := args["root"].(string)
	if !ok || root == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "root parameter is required", map[string]interface{}{
			"param":  "root",
			"reason": "missing or empty",
		})
	}
	if err := validateLibraryRoot(root); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid library root", map[string]interface{}{
			"param":  "root",
			"reason": err.Error(),
		})
	}

	mode := ingest.ModeIncremental
	if getBoolDefault(args, "force", false) {
		mode = ingest.ModeForced
	}

	report, err := s.pipeline.Run(ctx, root, mode)
	if err != nil {
		var hierr *types.HierarchyError
		if errors.As(err, &hierr) {
			return nil, newMCPError(ErrorCodeBadLibrary, "library root is not usable", map[string]interface{}{
				"root":  root,
				"error": err.Error(),
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "ingestion failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Index contents changed; cached query responses are stale
	s.retriever.InvalidateCache()

	response := map[string]interface{}{
		"scanned":     report.Scanned,
		"succeeded":   report.Succeeded,
		"skipped":     report.Skipped,
		"failed":      report.Failed,
		"duration_ms": report.Duration.Milliseconds(),
	}
	if len(report.Failures) > 0 {
		failures := report.Failures
		if len(failures) > 5 {
			response["failure_count"] = len(failures)
			failures = failures[:5]
		}
		detailed := make([]map[string]interface{}, len(failures))
		for i, f := range failures {
			detailed[i] = map[string]interface{}{
				"relative_path": f.RelativePath,
				"reason":        f.Reason,
			}
		}
		response["failures"] = detailed
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchLibrary handles the search_library tool invocation
func (s *Server) handleSearchLibrary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 5)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	searchScope := s.searchScope(args)

	results, err := s.retriever.Retrieve(ctx, query, searchScope, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	chunks := make([]map[string]interface{}, len(results))
	for i, r := range results {
		chunks[i] = map[string]interface{}{
			"rank":          r.Rank,
			"score":         r.Score,
			"text":          r.Chunk.Text,
			"term":          r.Chunk.Term,
			"topic":         r.Chunk.Topic,
			"title":         r.Chunk.Title,
			"relative_path": r.Chunk.RelativePath,
			"page_index":    r.Chunk.PageIndex,
		}
	}

	response := map[string]interface{}{
		"query":   query,
		"scope":   searchScope.Describe(),
		"results": chunks,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// searchScope builds the scope for one query: explicit term/topic/titles
// arguments replace the session scope entirely, otherwise the session scope
// applies.
func (s *Server) searchScope(args map[string]interface{}) types.ScopeState {
	term := getStringDefault(args, "term", "")
	topic := getStringDefault(args, "topic", "")
	titles := getStringSlice(args, "titles")

	if term == "" && topic == "" && len(titles) == 0 {
		return s.currentScope()
	}
	return types.ScopeState{Term: term, Topic: topic, Titles: titles}
}

// handleNavigateScope handles the navigate_scope tool invocation
func (s *Server) handleNavigateScope(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	action, ok := args["action"].(string)
	if !ok || action == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "action parameter is required", map[string]interface{}{
			"param":  "action",
			"reason": "missing or empty",
		})
	}

	var kind scope.CommandKind
	switch action {
	case "use_term":
		kind = scope.CmdUseTerm
	case "open_topic":
		kind = scope.CmdOpenTopic
	case "select_title":
		kind = scope.CmdSelectTitle
	case "deselect_title":
		kind = scope.CmdDeselectTitle
	case "clear":
		kind = scope.CmdClearScope
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "unknown action", map[string]interface{}{
			"param":   "action",
			"value":   action,
			"allowed": []string{"use_term", "open_topic", "select_title", "deselect_title", "clear"},
		})
	}

	value := getStringDefault(args, "value", "")
	next, err := scope.Apply(s.currentScope(), scope.Command{Kind: kind, Value: value})
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "scope navigation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.setScope(next)

	response := map[string]interface{}{
		"scope": next.Describe(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListCatalog handles the list_catalog tool invocation
func (s *Server) handleListCatalog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	term := getStringDefault(args, "term", "")
	topic := getStringDefault(args, "topic", "")
	if topic != "" && term == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "topic requires term", map[string]interface{}{
			"param": "topic",
		})
	}

	response := map[string]interface{}{}
	switch {
	case term == "":
		terms, err := s.catalog.Terms(ctx)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to list terms", map[string]interface{}{"error": err.Error()})
		}
		response["terms"] = terms

	case topic == "":
		topics, err := s.catalog.Topics(ctx, term)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to list topics", map[string]interface{}{"error": err.Error()})
		}
		response["term"] = term
		response["topics"] = topics

	default:
		titles, err := s.catalog.Titles(ctx, term, topic)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to list titles", map[string]interface{}{"error": err.Error()})
		}
		names := make([]string, len(titles))
		for i, t := range titles {
			names[i] = t.Title
		}
		response["term"] = term
		response["topic"] = topic
		response["titles"] = names
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	overview, err := s.catalog.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	docs, err := s.catalog.Documents(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list documents", map[string]interface{}{
			"error": err.Error(),
		})
	}

	failures := make([]map[string]interface{}, 0)
	for _, d := range docs {
		if d.LastError != "" {
			failures = append(failures, map[string]interface{}{
				"relative_path": d.RelativePath,
				"error":         d.LastError,
			})
		}
	}

	response := map[string]interface{}{
		"scope": s.currentScope().Describe(),
		"statistics": map[string]interface{}{
			"documents":  overview.Documents,
			"chunks":     overview.Chunks,
			"embeddings": overview.Embeddings,
			"by_status":  overview.ByStatus,
		},
	}
	if len(failures) > 0 {
		response["failed_documents"] = failures
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validateLibraryRoot checks that a library root is an absolute, readable
// directory.
func validateLibraryRoot(path string) error {
	if !filepath.IsAbs(path) {
		return ErrRootNotAbsolute
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrRootNotFound
	}
	if err != nil {
		return ErrRootNotReadable
	}
	if !info.IsDir() {
		return ErrRootNotDirectory
	}
	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if args == nil {
		return defaultValue
	}
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validation errors

var (
	ErrRootNotAbsolute  = errors.New("library root must be an absolute path")
	ErrRootNotFound     = errors.New("library root does not exist")
	ErrRootNotReadable  = errors.New("library root is not readable")
	ErrRootNotDirectory = errors.New("library root is not a directory")
)
