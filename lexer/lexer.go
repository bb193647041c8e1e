// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lexer tokenises PEG grammar source text. It never fails: an
// unterminated string, character class or action, or an unrecognised
// character, is reported as an Error token carrying the offending span
// rather than as a returned error, so the grammar parser decides how to
// react (per the teacher's convention in parser/parser.go of surfacing
// scan problems as data rather than as early returns).
package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dvoran/pegcore/position"
)

// maxSource bounds grammar size, per the hard cap on ingest.
const maxSource = 1_000_000

// Kind discriminates the tokens the lexer emits.
type Kind int

const (
	Eof Kind = iota
	Identifier
	Directive    // Text is the directive name, without the leading '%'.
	StringLit    // Text is the decoded string contents.
	CharClassLit // Text is the raw class body between '[' and ']', escapes not yet decoded.
	IntLit       // Text is the digit sequence; Value holds the parsed integer.
	Action       // Text is the action source, braces stripped.
	Operator     // Text is the operator ("<-", "/", "&", ...); "←" is reported as "<-" and "^" as "↑".
	Error        // Text is a human-readable description of the problem.
)

func (k Kind) String() string {
	switch k {
	case Eof:
		return "Eof"
	case Identifier:
		return "Identifier"
	case Directive:
		return "Directive"
	case StringLit:
		return "StringLit"
	case CharClassLit:
		return "CharClassLit"
	case IntLit:
		return "IntLit"
	case Action:
		return "Action"
	case Operator:
		return "Operator"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Token is one lexeme together with its source span.
type Token struct {
	Kind            Kind
	Text            string
	CaseInsensitive bool // StringLit, CharClassLit: trailing 'i' seen
	Value           int  // IntLit only
	Span            position.Span
}

// Lexer scans grammar source text into a Token stream, one call to Next
// per token.
type Lexer struct {
	src     string
	counter *position.Counter
	pos     int
	errored bool // size cap already reported, stop emitting further tokens
}

// New creates a Lexer over source. If source exceeds the grammar size
// cap, the first call to Next returns a single Error token at offset 0
// and every subsequent call returns Eof.
func New(source string) *Lexer {
	return &Lexer{src: source, counter: position.NewCounter(source)}
}

func (l *Lexer) span(start, end int) position.Span {
	return l.counter.Span(start, end)
}

// Next returns the next token. Once Eof or a size-cap Error has been
// returned, every further call returns Eof.
func (l *Lexer) Next() Token {
	if l.errored {
		return Token{Kind: Eof, Span: l.span(len(l.src), len(l.src))}
	}
	if len(l.src) > maxSource {
		l.errored = true
		return Token{Kind: Error, Text: "grammar source exceeds the maximum of 1000000 characters", Span: l.span(0, 0)}
	}
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return Token{Kind: Eof, Span: l.span(l.pos, l.pos)}
	}
	start := l.pos
	r, w := utf8.DecodeRuneInString(l.src[l.pos:])
	switch {
	case r == '%':
		return l.scanDirective(start)
	case r == '"' || r == '\'':
		return l.scanString(start, r)
	case r == '[':
		return l.scanCharClass(start)
	case r == '{':
		return l.scanBraceOrAction(start)
	case isDigit(r):
		return l.scanInt(start)
	case isIdentStart(r):
		return l.scanIdentifier(start)
	case r == '<':
		if strings.HasPrefix(l.src[l.pos:], "<-") {
			l.pos += 2
			return Token{Kind: Operator, Text: "<-", Span: l.span(start, l.pos)}
		}
		l.pos += w
		return Token{Kind: Operator, Text: "<", Span: l.span(start, l.pos)}
	case r == '←':
		l.pos += w
		return Token{Kind: Operator, Text: "<-", Span: l.span(start, l.pos)}
	case r == '↑' || r == '^':
		l.pos += w
		return Token{Kind: Operator, Text: "↑", Span: l.span(start, l.pos)}
	case strings.ContainsRune("/&!?*+.~()>,}$|", r):
		l.pos += w
		return Token{Kind: Operator, Text: string(r), Span: l.span(start, l.pos)}
	default:
		l.pos += w
		return Token{Kind: Error, Text: "unexpected character " + strconv.QuoteRune(r), Span: l.span(start, l.pos)}
	}
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		r, w := utf8.DecodeRuneInString(l.src[l.pos:])
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			l.pos += w
		case r == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func (l *Lexer) scanIdentifier(start int) Token {
	for l.pos < len(l.src) {
		r, w := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentCont(r) {
			break
		}
		l.pos += w
	}
	return Token{Kind: Identifier, Text: l.src[start:l.pos], Span: l.span(start, l.pos)}
}

func (l *Lexer) scanDirective(start int) Token {
	l.pos++ // '%'
	nameStart := l.pos
	for l.pos < len(l.src) {
		r, w := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentCont(r) {
			break
		}
		l.pos += w
	}
	if l.pos == nameStart {
		return Token{Kind: Error, Text: "expected directive name after '%'", Span: l.span(start, l.pos)}
	}
	return Token{Kind: Directive, Text: l.src[nameStart:l.pos], Span: l.span(start, l.pos)}
}

func (l *Lexer) scanInt(start int) Token {
	for l.pos < len(l.src) && isDigit(rune(l.src[l.pos])) {
		l.pos++
	}
	text := l.src[start:l.pos]
	v, _ := strconv.Atoi(text)
	return Token{Kind: IntLit, Text: text, Value: v, Span: l.span(start, l.pos)}
}

// scanString scans a quoted string literal with backslash escapes,
// decoding it, and consumes an optional trailing case-insensitivity 'i'.
func (l *Lexer) scanString(start int, quote rune) Token {
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{Kind: Error, Text: "unterminated string literal", Span: l.span(start, l.pos)}
		}
		r, w := utf8.DecodeRuneInString(l.src[l.pos:])
		if r == quote {
			l.pos += w
			break
		}
		if r == '\n' {
			return Token{Kind: Error, Text: "unterminated string literal", Span: l.span(start, l.pos)}
		}
		if r == '\\' {
			decoded, width, err := decodeEscape(l.src[l.pos:])
			if err != nil {
				return Token{Kind: Error, Text: err.Error(), Span: l.span(start, l.pos)}
			}
			b.WriteRune(decoded)
			l.pos += width
			continue
		}
		b.WriteRune(r)
		l.pos += w
	}
	ci := l.consumeCaseInsensitiveSuffix()
	return Token{Kind: StringLit, Text: b.String(), CaseInsensitive: ci, Span: l.span(start, l.pos)}
}

// scanCharClass scans '[' ... ']' verbatim (escapes are preserved
// literally; charclass.Parse is responsible for decoding them) and
// consumes an optional trailing 'i'.
func (l *Lexer) scanCharClass(start int) Token {
	l.pos++ // '['
	bodyStart := l.pos
	for {
		if l.pos >= len(l.src) {
			return Token{Kind: Error, Text: "unterminated character class", Span: l.span(start, l.pos)}
		}
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '\n':
			return Token{Kind: Error, Text: "unterminated character class", Span: l.span(start, l.pos)}
		case ']':
			body := l.src[bodyStart:l.pos]
			l.pos++
			ci := l.consumeCaseInsensitiveSuffix()
			return Token{Kind: CharClassLit, Text: body, CaseInsensitive: ci, Span: l.span(start, l.pos)}
		}
		l.pos++
	}
}

func (l *Lexer) consumeCaseInsensitiveSuffix() bool {
	if l.pos < len(l.src) && l.src[l.pos] == 'i' {
		l.pos++
		return true
	}
	return false
}

// scanBraceOrAction disambiguates a repetition brace ("{n}", "{n,}",
// "{n,m}") from an action block by bounded lookahead: a '{' followed by
// digits and then '}' or ',' is a repetition brace, emitted as a single
// '{' operator token so the parser can read the repetition contents with
// ordinary Int/Operator tokens; anything else begins an action block
// scanned to its balanced closing brace.
func (l *Lexer) scanBraceOrAction(start int) Token {
	if l.looksLikeRepetitionBrace() {
		l.pos++
		return Token{Kind: Operator, Text: "{", Span: l.span(start, l.pos)}
	}
	return l.scanAction(start)
}

func (l *Lexer) looksLikeRepetitionBrace() bool {
	i := l.pos + 1
	for i < len(l.src) && isDigit(rune(l.src[i])) {
		i++
	}
	if i == l.pos+1 {
		return false
	}
	return i < len(l.src) && (l.src[i] == '}' || l.src[i] == ',')
}

// scanAction scans a brace-balanced action block, skipping over quoted
// strings so braces inside string literals do not unbalance the count.
func (l *Lexer) scanAction(start int) Token {
	l.pos++ // '{'
	bodyStart := l.pos
	depth := 1
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '{':
			depth++
			l.pos++
		case '}':
			depth--
			l.pos++
			if depth == 0 {
				return Token{Kind: Action, Text: l.src[bodyStart : l.pos-1], Span: l.span(start, l.pos)}
			}
		case '"', '\'':
			quote := l.src[l.pos]
			l.pos++
			for l.pos < len(l.src) && l.src[l.pos] != quote {
				if l.src[l.pos] == '\\' {
					l.pos++
				}
				l.pos++
			}
			if l.pos < len(l.src) {
				l.pos++ // closing quote
			}
		default:
			l.pos++
		}
	}
	return Token{Kind: Error, Text: "unterminated action block", Span: l.span(start, l.pos)}
}

// decodeEscape decodes one backslash escape at the start of s (s[0] ==
// '\\'), returning the decoded rune and the number of bytes consumed.
func decodeEscape(s string) (rune, int, error) {
	if len(s) < 2 {
		return 0, 0, strconvError("unterminated escape sequence")
	}
	switch s[1] {
	case 'n':
		return '\n', 2, nil
	case 'r':
		return '\r', 2, nil
	case 't':
		return '\t', 2, nil
	case '\\':
		return '\\', 2, nil
	case '\'':
		return '\'', 2, nil
	case '"':
		return '"', 2, nil
	case '0':
		return 0, 2, nil
	case 'x':
		if len(s) < 4 {
			return 0, 0, strconvError("incomplete \\x escape")
		}
		v, err := strconv.ParseInt(s[2:4], 16, 32)
		if err != nil {
			return 0, 0, strconvError("invalid \\x escape")
		}
		return rune(v), 4, nil
	case 'u':
		if len(s) < 6 {
			return 0, 0, strconvError("incomplete \\u escape")
		}
		v, err := strconv.ParseInt(s[2:6], 16, 32)
		if err != nil {
			return 0, 0, strconvError("invalid \\u escape")
		}
		return rune(v), 6, nil
	default:
		r, w := utf8.DecodeRuneInString(s[1:])
		return r, 1 + w, nil
	}
}

type strconvError string

func (e strconvError) Error() string { return string(e) }
