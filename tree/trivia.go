package tree

import "github.com/dvoran/pegcore/position"

// TriviaKind discriminates the three trivia variants.
type TriviaKind int

const (
	WhitespaceTrivia TriviaKind = iota
	LineCommentTrivia
	BlockCommentTrivia
)

func (k TriviaKind) String() string {
	switch k {
	case WhitespaceTrivia:
		return "Whitespace"
	case LineCommentTrivia:
		return "LineComment"
	case BlockCommentTrivia:
		return "BlockComment"
	default:
		return "Unknown"
	}
}

// Trivia is a span of input with no semantic meaning (whitespace or a
// comment) that the engine preserves for the lossless round-trip law.
type Trivia struct {
	Kind TriviaKind
	Span position.Span
	Text string
}
