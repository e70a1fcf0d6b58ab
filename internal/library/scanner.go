package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/studyrag-mcp/pkg/types"
)

// recognizedExtensions lists the file extensions the scanner treats as
// source documents. Anything else is silently ignored.
var recognizedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// SkippedEntry records a malformed library entry that was skipped during a
// scan, with the reason it could not be used.
type SkippedEntry struct {
	Path   string
	Reason string
}

// ScanResult holds the outcome of one library scan.
type ScanResult struct {
	Entries []types.DocumentEntry
	Skipped []SkippedEntry
}

// Scan walks the three-level term/topic/title hierarchy under root and
// returns one DocumentEntry per recognized document file. Entries are
// returned in deterministic (path-sorted) order. The only fatal condition
// is a missing or unreadable root, reported as *types.HierarchyError.
func Scan(root string) (*ScanResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &types.HierarchyError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &types.HierarchyError{Root: root, Err: fmt.Errorf("not a directory")}
	}

	result := &ScanResult{}

	termDirs, err := os.ReadDir(root)
	if err != nil {
		return nil, &types.HierarchyError{Root: root, Err: err}
	}

	for _, termDir := range termDirs {
		if !termDir.IsDir() {
			continue // stray files at the root are not part of the hierarchy
		}
		term := termDir.Name()
		if strings.HasPrefix(term, ".") {
			continue
		}

		topicDirs, err := os.ReadDir(filepath.Join(root, term))
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedEntry{
				Path:   term,
				Reason: fmt.Sprintf("unreadable term directory: %v", err),
			})
			continue
		}

		for _, topicDir := range topicDirs {
			if !topicDir.IsDir() || strings.HasPrefix(topicDir.Name(), ".") {
				continue
			}
			topic := topicDir.Name()

			titleDirs, err := os.ReadDir(filepath.Join(root, term, topic))
			if err != nil {
				result.Skipped = append(result.Skipped, SkippedEntry{
					Path:   term + "/" + topic,
					Reason: fmt.Sprintf("unreadable topic directory: %v", err),
				})
				continue
			}

			for _, titleDir := range titleDirs {
				if !titleDir.IsDir() || strings.HasPrefix(titleDir.Name(), ".") {
					continue
				}
				title := titleDir.Name()
				scanTitleDir(root, term, topic, title, result)
			}
		}
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		return result.Entries[i].RelativePath < result.Entries[j].RelativePath
	})

	return result, nil
}

// scanTitleDir collects recognized document files directly under one title
// directory. Deeper nesting is ignored: documents live at exactly the third
// level of the hierarchy.
func scanTitleDir(root, term, topic, title string, result *ScanResult) {
	dir := filepath.Join(root, term, topic, title)
	files, err := os.ReadDir(dir)
	if err != nil {
		result.Skipped = append(result.Skipped, SkippedEntry{
			Path:   term + "/" + topic + "/" + title,
			Reason: fmt.Sprintf("unreadable title directory: %v", err),
		})
		return
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !recognizedExtensions[ext] {
			continue
		}

		entry := types.DocumentEntry{
			Term:         term,
			Topic:        topic,
			Title:        title,
			RelativePath: strings.Join([]string{term, topic, title, name}, "/"),
			DisplayName:  strings.TrimSuffix(name, filepath.Ext(name)),
			AbsPath:      filepath.Join(dir, name),
		}
		if err := entry.Validate(); err != nil {
			result.Skipped = append(result.Skipped, SkippedEntry{
				Path:   entry.RelativePath,
				Reason: err.Error(),
			})
			continue
		}
		result.Entries = append(result.Entries, entry)
	}
}
