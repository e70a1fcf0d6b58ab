// Package library discovers source documents in a study library directory.
//
// A library root is organized as exactly three nested directory levels:
//
//	root/<term>/<topic>/<title>/*.pdf
//
// The scanner walks this structure and emits one DocumentEntry per
// recognized file. The title is taken from the third-level directory name,
// not the file name, so a single title may span multiple source files.
// Files at any other depth are ignored; malformed entries are reported in
// the scan result rather than failing the scan. Only a missing or unreadable
// root is fatal.
package library
