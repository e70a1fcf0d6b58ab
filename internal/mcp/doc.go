// Package mcp is the stdio MCP surface of the study-library server. It
// exposes ingestion, scoped search, catalog listings, scope navigation, and
// status as MCP tools over the core packages.
package mcp
