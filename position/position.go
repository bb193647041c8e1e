// Package position implements the source location model shared by the
// grammar compiler, the PEG engine and the diagnostic renderer: 1-based
// line/column, 0-based byte offset, and half-open spans over that offset
// space.
//
// Row/column computation is amortized the same way the teacher's engine
// amortizes it (see salikh/peg parser2.Result.rowCol / countRowCol /
// computeContent): walking a whole source string per query is cheap once
// but quadratic across a parse that asks for hundreds of locations, so a
// Counter remembers the last offset it resolved and only scans forward
// from there.
package position

import (
	"fmt"
	"unicode/utf8"
)

// Location identifies one character position in a source text.
type Location struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based byte offset
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Less reports whether l comes strictly before m in the source.
func (l Location) Less(m Location) bool {
	return l.Offset < m.Offset
}

// Span is a half-open range [Start, End) over a source text's byte offsets.
type Span struct {
	Start Location
	End   Location
}

// Extract returns the slice of input covered by the span.
func (s Span) Extract(input string) string {
	return input[s.Start.Offset:s.End.Offset]
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// Empty reports whether the span covers zero bytes.
func (s Span) Empty() bool {
	return s.Start.Offset == s.End.Offset
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	start, end := a.Start, a.End
	if b.Start.Offset < start.Offset {
		start = b.Start
	}
	if b.End.Offset > end.Offset {
		end = b.End
	}
	return Span{Start: start, End: end}
}

// Counter resolves byte offsets into Locations for one source string,
// caching the last resolved offset so repeated queries in increasing
// offset order (the common case during parsing and diagnostic rendering)
// are amortized to O(1) past the first scan.
type Counter struct {
	source string
	last   Location
}

// NewCounter returns a Counter over source, positioned at offset 0.
func NewCounter(source string) *Counter {
	return &Counter{source: source, last: Location{Line: 1, Column: 1, Offset: 0}}
}

// Locate resolves offset into a Location. offset must be non-decreasing
// across calls for the amortized fast path to apply; out-of-order queries
// still return correct results, just by rescanning from the start.
func (c *Counter) Locate(offset int) Location {
	if offset < c.last.Offset {
		c.last = Location{Line: 1, Column: 1, Offset: 0}
	}
	line, col, pos := c.last.Line, c.last.Column, c.last.Offset
	for pos < offset && pos < len(c.source) {
		r, w := utf8.DecodeRuneInString(c.source[pos:])
		if w == 0 {
			w = 1
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		pos += w
	}
	loc := Location{Line: line, Column: col, Offset: offset}
	c.last = loc
	return loc
}

// Span builds a Span from two offsets using this counter.
func (c *Counter) Span(start, end int) Span {
	return Span{Start: c.Locate(start), End: c.Locate(end)}
}
