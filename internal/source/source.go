// Package source implements the Source Reader stage: it loads a file fully
// into memory up-front (5 SYSTEM, no I/O backpressure) and provides O(1)
// line-number lookups from a byte offset for diagnostics.
package source

import (
	"os"
	"strings"
)

// File is an entire source file held in memory, together with a table of
// line-start offsets used to translate a byte offset into a line number.
type File struct {
	Name  string
	Text  string
	lines []int // byte offset of the first character of each line
}

// Load reads path fully into memory and indexes its line boundaries.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(path, string(data)), nil
}

// New constructs a File directly from in-memory text, without reading a
// file from disk.
func New(name, text string) *File {
	f := &File{Name: name, Text: text}
	f.lines = []int{0}
	for i, c := range text {
		if c == '\n' {
			f.lines = append(f.lines, i+1)
		}
	}
	return f
}

// LineOf returns the 1-indexed line number containing the given byte offset.
func (f *File) LineOf(offset int) int {
	// Binary search over line start offsets.
	lo, hi := 0, len(f.lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lines[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// ColumnOf returns the 1-indexed column of the given byte offset on its line.
func (f *File) ColumnOf(offset int) int {
	line := f.LineOf(offset)
	start := f.lines[line-1]
	return offset - start + 1
}

// LineText returns the full text of the given 1-indexed line, without its
// trailing newline.
func (f *File) LineText(line int) string {
	if line < 1 || line > len(f.lines) {
		return ""
	}
	start := f.lines[line-1]
	end := len(f.Text)
	if line < len(f.lines) {
		end = f.lines[line] - 1
	}
	if end < start {
		end = start
	}
	return strings.TrimRight(f.Text[start:end], "\r")
}

// NumLines returns the total number of lines tracked.
func (f *File) NumLines() int {
	return len(f.lines)
}
