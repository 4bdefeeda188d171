package sexp

// Span represents a contiguous slice of the original string.  Instead of
// representing this as a string slice, however, it is useful to retain the
// physical indices.  This allows us to do certain things, such as determine the
// enclosing line, etc.
type Span struct {
	// The first character of this span in the original string.
	start int
	// One past the final character of this span in the original string.
	end int
}

// NewSpan constructs a new span whilst checking the internal invariants are
// maintained.
func NewSpan(start int, end int) Span {
	if start > end {
		panic("invalid span")
	}

	return Span{start, end}
}

// Start returns the starting index of this span in the original string.
func (p *Span) Start() int {
	return p.start
}

// End returns one past the last index of this span in the original string.
func (p *Span) End() int {
	return p.end
}

// Length returns the number of characters covered by this span in the original
// string.
func (p *Span) Length() int {
	return p.end - p.start
}

// Line provides information about a given line within the original string.
// This includes the line number (counting from 1), and the span of the line
// within the original string.
type Line struct {
	// Original text
	text []rune
	// Span within original text of this line.
	span Span
	// Line number of this line (counting from 1).
	number int
}

// Get the string representing this line.
func (p *Line) String() string {
	// Extract runes representing line
	runes := p.text[p.span.start:p.span.end]
	// Convert into string
	return string(runes)
}

// Number gets the line number of this line, where the first line in a string
// has line number 1.
func (p *Line) Number() int {
	return p.number
}

// Start returns the starting index of this line in the original string.
func (p *Line) Start() int {
	return p.span.start
}

// Length returns the number of characters in this line.
func (p *Line) Length() int {
	return p.span.Length()
}

// FindFirstEnclosingLine determines the first line of text which encloses the
// start of span. Observe that, if the position is beyond the bounds of text
// then the last physical line is returned. Also, the returned line is not
// guaranteed to enclose the entire span, as these can cross multiple lines.
//
// This is what lets chcparse report a CHC syntax error as "line N: ...<the
// offending line>..." instead of a bare character offset: the teacher's own
// SourceMap[T] carried this alongside a per-AST-node span registry that
// pkg/sexp's Parser never actually populates (no parser.go code calls
// SourceMap.Put), so that registry is dropped and this turns into the
// freestanding line lookup chcparse needs.
func FindFirstEnclosingLine(text []rune, span Span) Line {
	// Index identifies the current position within the original text.
	index := span.start
	// Num records the line number, counting from 1.
	num := 1
	// Start records the starting offset of the current line.
	start := 0
	// Find the line.
	for i := 0; i < len(text); i++ {
		if i == index {
			end := findEndOfLine(index, text)
			return Line{text, Span{start, end}, num}
		} else if text[i] == '\n' {
			num++
			start = i + 1
		}
	}
	//
	return Line{text, Span{start, len(text)}, num}
}

// Find the end of the enclosing line
func findEndOfLine(index int, text []rune) int {
	for i := index; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}
	// No end in sight!
	return len(text)
}
