// Package scope translates a caller's navigation state into storage-level
// search filters and applies navigation commands as pure state transitions.
package scope
