package models

import (
	"path/filepath"
	"strings"
)

// FileKind classifies an uploaded file by its filename extension.
type FileKind string

const (
	KindPDF         FileKind = "pdf"
	KindSpreadsheet FileKind = "spreadsheet"
	KindWord        FileKind = "word"
	KindImage       FileKind = "image"
	KindPlain       FileKind = "plain"
)

// UploadedFile is one file from an upload batch, fully read into memory.
// Immutable once read.
type UploadedFile struct {
	Name string
	Data []byte
	Kind FileKind
}

// NewUploadedFile builds an UploadedFile with its kind inferred from the name.
func NewUploadedFile(name string, data []byte) UploadedFile {
	return UploadedFile{Name: name, Data: data, Kind: KindForFilename(name)}
}

// KindForFilename infers the file kind from the filename extension,
// case-insensitively. Unrecognized extensions fall back to plain text.
func KindForFilename(name string) FileKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF
	case ".xlsx", ".xls":
		return KindSpreadsheet
	case ".docx":
		return KindWord
	case ".jpg", ".jpeg", ".png", ".webp":
		return KindImage
	default:
		// .txt, .csv and anything unknown decode as plain text.
		return KindPlain
	}
}
