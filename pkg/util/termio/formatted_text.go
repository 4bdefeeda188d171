package termio

// FormattedText is a chunk of text carrying an optional ANSI escape to apply
// when it is rendered to a terminal canvas.
type FormattedText struct {
	text   string
	escape *AnsiEscape
}

// NewText constructs an unformatted chunk of text.
func NewText(text string) FormattedText {
	return FormattedText{text, nil}
}

// NewFormattedText constructs a chunk of text carrying a given escape.
func NewFormattedText(text string, escape AnsiEscape) FormattedText {
	return FormattedText{text, &escape}
}

// NewColouredText constructs a chunk of text in a given foreground colour.
func NewColouredText(text string, colour uint) FormattedText {
	return NewFormattedText(text, NewAnsiEscape().FgColour(colour))
}

// Format attaches an ANSI escape to this text, applied when it is rendered.
func (p *FormattedText) Format(escape AnsiEscape) {
	p.escape = &escape
}

// Len returns the number of characters in this chunk.
func (p FormattedText) Len() uint {
	return uint(len(p.text))
}

// Clip truncates this chunk to the half-open range [from,to), clamped to the
// chunk's own bounds.
func (p *FormattedText) Clip(from, to uint) {
	n := uint(len(p.text))

	if to > n {
		to = n
	}

	if from > to {
		from = to
	}

	p.text = p.text[from:to]
}

// Bytes renders this chunk, wrapping it in its escape (and a reset) when one
// is set.
func (p FormattedText) Bytes() []byte {
	if p.escape == nil {
		return []byte(p.text)
	}

	return []byte(p.escape.Build() + p.text + ResetAnsiEscape().Build())
}
