// Package position provides source position tracking for expressions read
// from the command line or from expression files.
package position

import (
	"fmt"
	"path/filepath"
)

// Position represents a single point in source code
type Position struct {
	Filename string // Source file name, empty for command-line input
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Offset   int    // 0-based byte offset in the expression
}

// IsValid returns true if the position is valid
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String returns a string representation of the position
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Advance returns the position of the next byte on the same line.
func (p Position) Advance() Position {
	p.Column++
	p.Offset++
	return p
}

// Start returns the first position of a line in filename.
func Start(filename string, line int) Position {
	return Position{Filename: filename, Line: line, Column: 1, Offset: 0}
}
