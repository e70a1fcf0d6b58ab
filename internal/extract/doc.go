// Package extract turns source documents into ordered per-page text.
//
// Extraction is a collaborator of the ingestion pipeline: the core only
// depends on the PageReader interface and does not care how text leaves the
// file. Two implementations ship with the server: a plaintext reader for
// .txt/.md files (pages split on form feed) and a PDF reader that shells out
// to the pdftotext utility. A Registry dispatches by file extension.
package extract
