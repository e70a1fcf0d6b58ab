package types

import "errors"

// DocumentEntry describes one source file discovered by a library scan.
// It is transient input to the ingestion pipeline and is never persisted;
// RelativePath is the provenance key used for all delete/update targeting.
type DocumentEntry struct {
	Term         string
	Topic        string
	Title        string // Third-level directory name, stable across files
	RelativePath string // Slash-separated, relative to the library root
	DisplayName  string // Human-readable name derived from the file name
	AbsPath      string // Absolute path used to read the source bytes
}

// Validate checks that the entry carries a complete hierarchy position.
func (d *DocumentEntry) Validate() error {
	if d.Term == "" || d.Topic == "" || d.Title == "" {
		return errors.New("document entry missing hierarchy level")
	}
	if d.RelativePath == "" {
		return errors.New("document entry missing relative path")
	}
	return nil
}
