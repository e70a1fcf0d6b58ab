package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ingestLibraryTool returns the tool definition for ingest_library
func ingestLibraryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_library",
		Description: "Scan a term/topic/title study library and index its documents for semantic search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"root": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the library root (term/topic/title directory tree)",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-ingest every document regardless of content fingerprints",
					"default":     false,
				},
			},
			Required: []string{"root"},
		},
	}
}

// searchLibraryTool returns the tool definition for search_library
func searchLibraryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_library",
		Description: "Search indexed study materials with a natural language query, constrained to the active scope unless overridden",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language search query",
				},
				"term": map[string]interface{}{
					"type":        "string",
					"description": "Override: restrict to one term instead of the active scope",
				},
				"topic": map[string]interface{}{
					"type":        "string",
					"description": "Override: restrict to one topic (requires term)",
				},
				"titles": map[string]interface{}{
					"type":        "array",
					"description": "Override: restrict to these titles",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of chunks to return (1-100)",
					"default":     5,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// navigateScopeTool returns the tool definition for navigate_scope
func navigateScopeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "navigate_scope",
		Description: "Change the active search scope: activate a term or topic, select or deselect titles, or clear",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"action": map[string]interface{}{
					"type":        "string",
					"description": "Navigation action to apply",
					"enum":        []string{"use_term", "open_topic", "select_title", "deselect_title", "clear"},
				},
				"value": map[string]interface{}{
					"type":        "string",
					"description": "Term, topic, or title name; ignored for clear",
				},
			},
			Required: []string{"action"},
		},
	}
}

// listCatalogTool returns the tool definition for list_catalog
func listCatalogTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_catalog",
		Description: "List indexed terms, the topics under a term, or the titles under a term and topic",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"term": map[string]interface{}{
					"type":        "string",
					"description": "List topics under this term; omit to list terms",
				},
				"topic": map[string]interface{}{
					"type":        "string",
					"description": "List titles under this term and topic; requires term",
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report index statistics, per-document ingestion states, and the active scope",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
