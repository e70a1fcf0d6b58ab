package scope

import (
	"github.com/dshills/studyrag-mcp/internal/storage"
	"github.com/dshills/studyrag-mcp/pkg/types"
)

// Resolve converts a scope into the storage filter that enforces it. An
// empty scope resolves to nil, which matches every chunk. Titles are copied
// so later scope mutations can't leak into an in-flight query.
func Resolve(s types.ScopeState) *storage.SearchFilters {
	if s.IsEmpty() {
		return nil
	}
	f := &storage.SearchFilters{
		Term:  s.Term,
		Topic: s.Topic,
	}
	if len(s.Titles) > 0 {
		f.Titles = make([]string, len(s.Titles))
		copy(f.Titles, s.Titles)
	}
	return f
}
