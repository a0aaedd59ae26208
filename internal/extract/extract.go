// Package extract turns uploaded files into plain UTF-8 text.
// Extraction is dispatched on the file extension; unknown extensions are
// rejected before any file is opened.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for file extensions with no extractor.
var ErrUnsupported = errors.New("unsupported file extension")

// extractors maps a lowercase extension (with dot) to its extractor.
var extractors = map[string]func(path string) (string, error){
	".txt":  fromTXT,
	".md":   fromMarkdown,
	".pdf":  fromPDF,
	".docx": fromDOCX,
}

// Supported reports whether the filename's extension has an extractor.
func Supported(filename string) bool {
	_, ok := extractors[normalizeExt(filename)]
	return ok
}

// Extensions returns the supported extensions, for error messages.
func Extensions() []string {
	return []string{".txt", ".md", ".pdf", ".docx"}
}

// Text extracts the plain text of the file at path. A file with no extractable
// content yields an empty string, not an error.
func Text(path string) (string, error) {
	fn, ok := extractors[normalizeExt(path)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	return fn(path)
}

func normalizeExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func fromTXT(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	// Strip a UTF-8 BOM if present
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
