// Package parsers reads tournament score sheets exported from spreadsheets.
package parsers

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Parser turns a score sheet file into rows.
type Parser interface {
	Parse(data []byte) (*ScoreSheet, error)
}

// ParserFactory defines the interface for creating parsers
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory picks a parser by file extension.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the parser for filename.
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx", ".xlsm":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %q", ext)
	}
}
