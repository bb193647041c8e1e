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

// Package engine is the packrat-memoized backtracking PEG interpreter.
// It walks a validated *expr.Grammar over an input string, building a
// lossless CST, a trivia-stripped AST, or both, and invoking the bound
// Actions along the way.
//
// Unlike the teacher's per-node closure compilation (parser2.go's
// makeXHandler family, each returning a handler func(r *Result, pos int)
// (int, error) closed over its own Term/Special), match below is one
// exhaustive switch over expr.Kind, re-entered at every recursion point.
// The packrat cache key (rule name, offset) and the handler error-message
// conventions are kept from that teacher model; the dispatch shape is not,
// since the grammar's construct set is closed and a switch expresses that
// more directly than per-node closures would.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	log "github.com/golang/glog"

	"github.com/dvoran/pegcore/dictionary"
	"github.com/dvoran/pegcore/expr"
	"github.com/dvoran/pegcore/position"
	"github.com/dvoran/pegcore/recovery"
	"github.com/dvoran/pegcore/tree"
)

// Config selects the engine's optional behaviors.
type Config struct {
	// Packrat enables memoization of (rule, offset) results.
	Packrat bool
	// Recovery selects the panic-mode recovery strategy.
	Recovery recovery.Strategy
	// CaptureTrivia runs the grammar's %whitespace expression between
	// tokens and attaches the matched text to the CST as Trivia. If
	// false, trivia is skipped but discarded (position still advances).
	CaptureTrivia bool
	// CascadeBound overrides recovery.DefaultCascadeBound when > 0.
	CascadeBound int
}

// Engine runs a validated grammar against input strings.
type Engine struct {
	grammar   *expr.Grammar
	actions   map[string]Action
	config    Config
	dictTries map[*expr.Expr]*dictionary.Trie
	wordLits  map[*expr.Expr]bool
}

// New returns an Engine bound to g, dispatching to actions by rule name.
// actions may be nil or partial; rules with no bound Action simply
// contribute no value of their own to their parent's childValues.
func New(g *expr.Grammar, actions map[string]Action, cfg Config) *Engine {
	return &Engine{
		grammar:   g,
		actions:   actions,
		config:    cfg,
		dictTries: make(map[*expr.Expr]*dictionary.Trie),
		wordLits:  make(map[*expr.Expr]bool),
	}
}

// Parse runs the grammar's start rule over input and returns the AST
// value produced by its bound Action (nil if the start rule has none).
func (e *Engine) Parse(input string) (any, error) {
	start := e.grammar.Start()
	if start == nil {
		return nil, fmt.Errorf("engine: grammar has no rules")
	}
	p := e.newState(input, false, true)
	r := p.applyRule(start.Name, 0)
	if p.actionErr != nil {
		return nil, p.actionErr
	}
	if !r.ok {
		return nil, unexpectedAt(p.counter, input, 0, r.expected)
	}
	if r.end != len(input) {
		return nil, unexpectedAt(p.counter, input, r.end, "end of input")
	}
	return r.value, nil
}

// ParseCst runs the grammar's start rule and returns the lossless CST. In
// recovery.Advanced mode, a parse that fails or stops short of consuming
// the whole input still returns a best-effort tree with synthesised Error
// nodes rather than an error.
func (e *Engine) ParseCst(input string) (*tree.CstNode, error) {
	node, _, err := e.parseCst(input)
	return node, err
}

// Diagnostics is the result of ParseCstWithDiagnostics: the best-effort
// tree produced so far, plus every diagnostic recorded along the way.
type Diagnostics struct {
	Node        *tree.CstNode
	Diagnostics []DiagEntry
}

// DiagEntry mirrors diag.Diagnostic without importing the diag package
// into the public engine surface's zero-dependency callers; callers that
// want rendering should go through the peg facade, which does import diag.
type DiagEntry struct {
	Message string
	Span    position.Span
	Help    []string
}

// ParseCstWithDiagnostics always runs in recovery.Advanced mode for this
// one call, regardless of the Engine's configured strategy, and returns
// the partial tree together with every diagnostic recorded.
func (e *Engine) ParseCstWithDiagnostics(input string) Diagnostics {
	forced := *e
	forced.config.Recovery = recovery.Advanced
	node, recov, _ := (&forced).parseCst(input)
	var entries []DiagEntry
	if recov != nil {
		for _, d := range recov.Diagnostics() {
			var help []string
			help = append(help, d.Help...)
			entries = append(entries, DiagEntry{Message: d.Message, Span: d.Span, Help: help})
		}
	}
	return Diagnostics{Node: node, Diagnostics: entries}
}

func (e *Engine) parseCst(input string) (*tree.CstNode, *recovery.Controller, error) {
	start := e.grammar.Start()
	if start == nil {
		return nil, nil, fmt.Errorf("engine: grammar has no rules")
	}
	p := e.newState(input, true, false)
	if e.config.Recovery == recovery.Advanced {
		p.recov = recovery.NewController(input, p.counter, e.config.CascadeBound)
	}
	r := p.applyRule(start.Name, 0)
	if !r.ok {
		if p.recov == nil {
			return nil, nil, unexpectedAt(p.counter, input, 0, r.expected)
		}
		errNode := p.recov.Recover(0, r.expected)
		return errNode, p.recov, nil
	}
	node := r.node
	if r.end != len(input) {
		if p.recov == nil {
			return nil, nil, unexpectedAt(p.counter, input, r.end, "end of input")
		}
		for node.Kind == tree.NonTerminalKind && r.end < len(input) && !p.recov.CascadeExceeded() {
			errNode := p.recov.Recover(r.end, "end of input")
			node.Children = append(node.Children, errNode)
			if errNode.Span.End.Offset == r.end {
				break
			}
			r.end = errNode.Span.End.Offset
		}
	}
	if trailing, end := p.consumeTrivia(r.end); len(trailing) > 0 {
		node.TrailingTrivia = trailing
		_ = end
	}
	return node, p.recov, nil
}

// ParseCstAndAst runs the grammar's start rule and returns both the
// lossless CST and its trivia-stripped, action-valued AST counterpart in
// one pass. Unlike ParseCst, this always builds AST values (invoking
// bound Actions), since the AST's whole purpose is to carry them.
func (e *Engine) ParseCstAndAst(input string) (*tree.CstNode, *tree.AstNode, error) {
	start := e.grammar.Start()
	if start == nil {
		return nil, nil, fmt.Errorf("engine: grammar has no rules")
	}
	p := e.newState(input, true, true)
	r := p.applyRule(start.Name, 0)
	if p.actionErr != nil {
		return nil, nil, p.actionErr
	}
	if !r.ok {
		return nil, nil, unexpectedAt(p.counter, input, 0, r.expected)
	}
	if r.end != len(input) {
		return nil, nil, unexpectedAt(p.counter, input, r.end, "end of input")
	}
	node := r.node
	if trailing, _ := p.consumeTrivia(r.end); len(trailing) > 0 {
		node.TrailingTrivia = trailing
	}
	astNode, err := tree.Strip(node, p.astValues)
	if err != nil {
		return nil, nil, err
	}
	return node, astNode, nil
}

func (e *Engine) dictTrie(x *expr.Expr) *dictionary.Trie {
	if t, ok := e.dictTries[x]; ok {
		return t
	}
	t := dictionary.New(x.Words, x.CaseInsensitive)
	e.dictTries[x] = t
	return t
}

// isKeywordLiteral reports whether x's entire text is made up of characters
// the grammar's %word expression matches, the trigger condition for the
// implicit word-boundary check after "keyword-like literals" (spec.md §4.D).
// Computed once per Literal node and cached, mirroring dictTrie's memoization.
func (e *Engine) isKeywordLiteral(x *expr.Expr) bool {
	if e.grammar.WordExpr == nil || x.Text == "" {
		return false
	}
	if v, ok := e.wordLits[x]; ok {
		return v
	}
	v := e.allWordChars(x.Text)
	e.wordLits[x] = v
	return v
}

// allWordChars reports whether %word matches s from front to back with
// nothing left over, run over a throwaway parseState since s is the
// literal's own text rather than the input being parsed.
func (e *Engine) allWordChars(s string) bool {
	sub := e.newState(s, false, false)
	pos := 0
	for pos < len(s) {
		r := sub.match(e.grammar.WordExpr, pos, nil)
		if !r.ok || r.end == pos {
			return false
		}
		pos = r.end
	}
	return true
}

// matchResult is the outcome of matching one expr.Expr or applying one
// rule at a given position.
type matchResult struct {
	ok       bool
	end      int
	node     *tree.CstNode
	value    any
	hasValue bool
	expected string
}

type cacheEntry struct {
	ok       bool
	end      int
	node     *tree.CstNode
	value    any
	hasValue bool
	expected string
}

// ruleFrame accumulates the CST children and AST child values produced by
// nested rule applications while one rule's own body is being matched.
type ruleFrame struct {
	children    []*tree.CstNode
	childValues []any
	choice      int
}

type captureFrame map[string]string

type captureStack struct {
	frames []captureFrame
}

func newCaptureStack() *captureStack {
	return &captureStack{frames: []captureFrame{{}}}
}

func (s *captureStack) push() { s.frames = append(s.frames, captureFrame{}) }
func (s *captureStack) pop()  { s.frames = s.frames[:len(s.frames)-1] }

func (s *captureStack) set(name, text string) {
	s.frames[len(s.frames)-1][name] = text
}

func (s *captureStack) lookup(name string) (string, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	return "", false
}

func (s *captureStack) snapshot() []captureFrame {
	out := make([]captureFrame, len(s.frames))
	for i, f := range s.frames {
		cp := make(captureFrame, len(f))
		for k, v := range f {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

func (s *captureStack) restore(snap []captureFrame) {
	s.frames = snap
}

// parseState carries everything that mutates over the course of one
// engine.Parse/ParseCst call.
type parseState struct {
	eng   *Engine
	input string

	counter *position.Counter
	cache   map[int]map[string]*cacheEntry

	captures *captureStack
	frames   []*ruleFrame

	buildCst      bool
	buildAst      bool
	captureTrivia bool

	predicateDepth int
	tokenDepth     int
	suppressDepth  int

	recov *recovery.Controller

	hadActionError bool
	actionErr      error

	// astValues records, for each rule-invocation CstNode built while
	// buildAst is set, the value its bound action produced. tree.Strip
	// consults this to populate AstNode.Value; rules with no action
	// never get an entry here and Strip leaves their Value nil.
	astValues map[*tree.CstNode]any
}

func (e *Engine) newState(input string, buildCst, buildAst bool) *parseState {
	return &parseState{
		eng:           e,
		input:         input,
		counter:       position.NewCounter(input),
		cache:         make(map[int]map[string]*cacheEntry),
		captures:      newCaptureStack(),
		buildCst:      buildCst,
		buildAst:      buildAst,
		captureTrivia: e.config.CaptureTrivia,
	}
}

func (p *parseState) topFrame() *ruleFrame {
	if len(p.frames) == 0 {
		return nil
	}
	return p.frames[len(p.frames)-1]
}

func (p *parseState) frameSnapshot() (int, int) {
	f := p.topFrame()
	if f == nil {
		return 0, 0
	}
	return len(f.children), len(f.childValues)
}

func (p *parseState) frameRestore(nc, nv int) {
	f := p.topFrame()
	if f == nil {
		return
	}
	f.children = f.children[:nc]
	f.childValues = f.childValues[:nv]
}

// attachNode adds n as the next child of the innermost rule frame. It is
// a no-op inside a predicate, inside Ignore, or inside a token region
// (tokenDepth > 0): a token boundary coalesces everything it covers,
// including nested rule invocations, into the one Token node it builds
// itself once its own Sub has matched, so nodes produced while still
// inside that region must not also attach themselves to the enclosing
// rule.
func (p *parseState) attachNode(n *tree.CstNode) {
	if n == nil || !p.buildCst || p.suppressDepth > 0 || p.predicateDepth > 0 || p.tokenDepth > 0 {
		return
	}
	f := p.topFrame()
	if f == nil {
		return
	}
	f.children = append(f.children, n)
}

func (p *parseState) attachValue(v any) {
	if !p.buildAst || p.suppressDepth > 0 || p.predicateDepth > 0 || p.tokenDepth > 0 {
		return
	}
	f := p.topFrame()
	if f == nil {
		return
	}
	f.childValues = append(f.childValues, v)
}

func (p *parseState) recordChoice(i int) {
	if f := p.topFrame(); f != nil {
		f.choice = i
	}
}

// tryRecover attempts panic-mode recovery at pos, reporting ok=false when
// recovery is unavailable (no controller, inside a predicate or token
// region, or the cascade bound has been reached).
func (p *parseState) tryRecover(pos int, expected string) (*tree.CstNode, bool) {
	if p.recov == nil || p.predicateDepth > 0 || p.tokenDepth > 0 {
		return nil, false
	}
	if p.recov.CascadeExceeded() {
		return nil, false
	}
	return p.recov.Recover(pos, expected), true
}

func (p *parseState) cacheGet(pos int, rule string) (*cacheEntry, bool) {
	byRule, ok := p.cache[pos]
	if !ok {
		return nil, false
	}
	e, ok := byRule[rule]
	return e, ok
}

func (p *parseState) cachePut(pos int, rule string, entry *cacheEntry) {
	byRule, ok := p.cache[pos]
	if !ok {
		byRule = make(map[string]*cacheEntry)
		p.cache[pos] = byRule
	}
	byRule[rule] = entry
}

// consumeTrivia runs the grammar's %whitespace expression, if declared,
// and reports the trivia consumed (nil if CaptureTrivia is off or nothing
// matched) and the position after it.
func (p *parseState) consumeTrivia(pos int) ([]tree.Trivia, int) {
	if p.eng.grammar.WhitespaceExpr == nil {
		return nil, pos
	}
	p.tokenDepth++
	p.suppressDepth++
	r := p.match(p.eng.grammar.WhitespaceExpr, pos, nil)
	p.suppressDepth--
	p.tokenDepth--
	if !r.ok || r.end == pos {
		return nil, pos
	}
	if !p.captureTrivia {
		return nil, r.end
	}
	text := p.input[pos:r.end]
	return []tree.Trivia{{Kind: tree.WhitespaceTrivia, Span: p.counter.Span(pos, r.end), Text: text}}, r.end
}

func ruleExpectation(rule *expr.Rule, inner string) string {
	if rule.ErrorMessage != "" {
		return rule.ErrorMessage
	}
	if inner != "" {
		return inner
	}
	return rule.Name
}

// applyRule matches rule at pos, consulting and updating the packrat
// cache, consuming leading trivia, building the rule's CST node per the
// Terminal/NonTerminal/Token classification, and invoking its bound
// Action when AST values are being built.
func (p *parseState) applyRule(name string, pos int) matchResult {
	rule := p.eng.grammar.Rule(name)
	if rule == nil {
		return matchResult{ok: false, end: pos, expected: fmt.Sprintf("rule %q to be defined", name)}
	}

	if p.eng.config.Packrat {
		if entry, ok := p.cacheGet(pos, name); ok {
			log.V(5).Infof("packrat hit: %s@%d ok=%v", name, pos, entry.ok)
			if !entry.ok {
				return matchResult{ok: false, end: pos, expected: entry.expected}
			}
			p.attachNode(entry.node)
			if entry.hasValue {
				p.attachValue(entry.value)
			}
			return matchResult{ok: true, end: entry.end, node: entry.node, value: entry.value, hasValue: entry.hasValue}
		}
	}

	log.V(6).Infof("applying rule %s at %d", name, pos)

	var leading []tree.Trivia
	contentStart := pos
	if p.tokenDepth == 0 {
		leading, contentStart = p.consumeTrivia(pos)
	}

	frame := &ruleFrame{choice: -1}
	p.frames = append(p.frames, frame)

	isTokenRule := rule.Expr != nil && rule.Expr.Kind == expr.TokenBoundary
	var res matchResult
	if isTokenRule {
		p.tokenDepth++
		res = p.match(rule.Expr.Sub, contentStart, nil)
		p.tokenDepth--
	} else {
		res = p.match(rule.Expr, contentStart, nil)
	}

	p.frames = p.frames[:len(p.frames)-1]

	if !res.ok {
		expected := ruleExpectation(rule, res.expected)
		log.V(6).Infof("rule %s failed at %d: expected %s", name, pos, expected)
		if p.eng.config.Packrat {
			p.cachePut(pos, name, &cacheEntry{ok: false, expected: expected})
		}
		return matchResult{ok: false, end: pos, expected: expected}
	}

	var node *tree.CstNode
	if p.buildCst {
		span := p.counter.Span(contentStart, res.end)
		switch {
		case isTokenRule:
			node = &tree.CstNode{Kind: tree.TokenKind, Rule: name, Span: span, Text: p.input[contentStart:res.end], LeadingTrivia: leading}
		case len(frame.children) > 0:
			var children []*tree.CstNode
			cursor := contentStart
			for _, ch := range append(frame.children, &tree.CstNode{Span: p.counter.Span(res.end, res.end)}) {
				next := ch.Span.Start.Offset
				if len(ch.LeadingTrivia) > 0 {
					next = ch.LeadingTrivia[0].Span.Start.Offset
				}
				if next > cursor {
					children = append(children, &tree.CstNode{Kind: tree.TerminalKind, Span: p.counter.Span(cursor, next), Text: p.input[cursor:next]})
				}
				children, cursor = append(children, ch), ch.Span.End.Offset
			}
			node = &tree.CstNode{Kind: tree.NonTerminalKind, Rule: name, Span: span, Children: children[:len(children)-1], LeadingTrivia: leading}
		default:
			node = &tree.CstNode{Kind: tree.TerminalKind, Rule: name, Span: span, Text: p.input[contentStart:res.end], LeadingTrivia: leading}
		}
	}

	var value any
	hasValue := false
	if p.buildAst {
		if action := p.eng.actions[name]; action != nil {
			sv := SemanticValues{
				text:        p.input[contentStart:res.end],
				span:        p.counter.Span(contentStart, res.end),
				childValues: frame.childValues,
				choice:      frame.choice,
			}
			v, err := action.Apply(sv)
			if err != nil {
				p.hadActionError = true
				if p.actionErr == nil {
					p.actionErr = &ActionError{Location: p.counter.Locate(contentStart), Action: rule.Action, Cause: err}
				}
				expected := "a valid action result"
				if p.eng.config.Packrat {
					p.cachePut(pos, name, &cacheEntry{ok: false, expected: expected})
				}
				return matchResult{ok: false, end: pos, expected: expected}
			}
			value, hasValue = v, true
		}
	}

	entry := &cacheEntry{ok: true, end: res.end, node: node, value: value, hasValue: hasValue}
	if p.eng.config.Packrat {
		p.cachePut(pos, name, entry)
	}
	if node != nil && hasValue {
		if p.astValues == nil {
			p.astValues = make(map[*tree.CstNode]any)
		}
		p.astValues[node] = value
	}
	p.attachNode(node)
	if hasValue {
		p.attachValue(value)
	}
	return matchResult{ok: true, end: res.end, node: node, value: value, hasValue: hasValue}
}

// match evaluates e starting at pos. cut, if non-nil, is the commit flag
// of the innermost enclosing Choice alternative: a Cut anywhere within
// that alternative's dynamic extent (but not past a nested Reference,
// which always starts its own alternative with cut reset to nil) sets it.
func (p *parseState) match(e *expr.Expr, pos int, cut *bool) matchResult {
	switch e.Kind {
	case expr.Literal:
		return p.matchLiteral(e, pos)
	case expr.CharClass:
		return p.matchCharClass(e, pos)
	case expr.Any:
		return p.matchAny(pos)
	case expr.Reference:
		return p.applyRule(e.Name, pos)
	case expr.BackReference:
		return p.matchBackReference(e, pos)
	case expr.Cut:
		if cut != nil {
			*cut = true
		}
		return matchResult{ok: true, end: pos}
	case expr.Dictionary:
		return p.matchDictionary(e, pos)
	case expr.Sequence:
		return p.matchSequence(e, pos, cut)
	case expr.Choice:
		return p.matchChoice(e, pos)
	case expr.Group:
		return p.match(e.Sub, pos, cut)
	case expr.ZeroOrMore:
		return p.matchRepeat(e.Sub, pos, cut, 0, expr.Unbounded)
	case expr.OneOrMore:
		return p.matchRepeat(e.Sub, pos, cut, 1, expr.Unbounded)
	case expr.Optional:
		return p.matchOptional(e, pos, cut)
	case expr.Repetition:
		return p.matchRepeat(e.Sub, pos, cut, e.Min, e.Max)
	case expr.And:
		return p.matchAnd(e, pos)
	case expr.Not:
		return p.matchNot(e, pos)
	case expr.TokenBoundary:
		return p.matchTokenBoundary(e, pos)
	case expr.Ignore:
		return p.matchIgnore(e, pos, cut)
	case expr.Capture:
		return p.matchCapture(e, pos, cut)
	case expr.CaptureScope:
		p.captures.push()
		r := p.match(e.Sub, pos, cut)
		p.captures.pop()
		return r
	default:
		return matchResult{ok: false, end: pos, expected: fmt.Sprintf("unsupported construct %s", e.Kind)}
	}
}

func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// matchLiteral matches e.Text verbatim (or case-insensitively) at pos. When
// the grammar declares %word and e's text is itself made up entirely of
// word characters (e.g. "if", a keyword rather than punctuation), a
// successful match is rejected if the next input character also continues
// a word: otherwise "if" would match the first two letters of "iffy".
func (p *parseState) matchLiteral(e *expr.Expr, pos int) matchResult {
	text := e.Text
	if len(p.input)-pos < len(text) {
		return matchResult{ok: false, end: pos, expected: strconv.Quote(text)}
	}
	next := p.input[pos : pos+len(text)]
	matched := next == text
	if !matched && e.CaseInsensitive {
		matched = asciiEqualFold(next, text)
	}
	if !matched {
		return matchResult{ok: false, end: pos, expected: strconv.Quote(text)}
	}
	end := pos + len(text)
	if p.eng.isKeywordLiteral(e) {
		p.predicateDepth++
		r := p.match(p.eng.grammar.WordExpr, end, nil)
		p.predicateDepth--
		if r.ok && r.end > end {
			return matchResult{ok: false, end: pos, expected: fmt.Sprintf("%s (word boundary)", strconv.Quote(text))}
		}
	}
	return matchResult{ok: true, end: end}
}

func (p *parseState) matchCharClass(e *expr.Expr, pos int) matchResult {
	r, w := utf8.DecodeRuneInString(p.input[pos:])
	if w == 0 || !e.Class.Match(r, e.CaseInsensitive) {
		return matchResult{ok: false, end: pos, expected: fmt.Sprintf("[%s]", e.Class)}
	}
	return matchResult{ok: true, end: pos + w}
}

func (p *parseState) matchAny(pos int) matchResult {
	if pos >= len(p.input) {
		return matchResult{ok: false, end: pos, expected: "any character"}
	}
	_, w := utf8.DecodeRuneInString(p.input[pos:])
	return matchResult{ok: true, end: pos + w}
}

func (p *parseState) matchBackReference(e *expr.Expr, pos int) matchResult {
	text, ok := p.captures.lookup(e.Name)
	if !ok {
		return matchResult{ok: false, end: pos, expected: fmt.Sprintf("capture %q to have matched earlier", e.Name)}
	}
	if !strings.HasPrefix(p.input[pos:], text) {
		return matchResult{ok: false, end: pos, expected: strconv.Quote(text)}
	}
	return matchResult{ok: true, end: pos + len(text)}
}

func (p *parseState) matchDictionary(e *expr.Expr, pos int) matchResult {
	trie := p.eng.dictTrie(e)
	n, ok := trie.LongestMatch(p.input[pos:])
	if !ok {
		return matchResult{ok: false, end: pos, expected: "a dictionary word"}
	}
	return matchResult{ok: true, end: pos + n}
}

func (p *parseState) matchSequence(e *expr.Expr, pos int, cut *bool) matchResult {
	start := pos
	cur := pos
	nc, nv := p.frameSnapshot()
	capSnap := p.captures.snapshot()
	for _, el := range e.Elements {
		r := p.match(el, cur, cut)
		if r.ok {
			cur = r.end
			continue
		}
		if errNode, recovered := p.tryRecover(cur, r.expected); recovered {
			p.attachNode(errNode)
			cur = errNode.Span.End.Offset
			continue
		}
		p.frameRestore(nc, nv)
		p.captures.restore(capSnap)
		return matchResult{ok: false, end: start, expected: r.expected}
	}
	return matchResult{ok: true, end: cur}
}

func (p *parseState) matchChoice(e *expr.Expr, pos int) matchResult {
	capSnap := p.captures.snapshot()
	nc, nv := p.frameSnapshot()
	var lastExpected string
	for i, alt := range e.Elements {
		committed := false
		r := p.match(alt, pos, &committed)
		if r.ok {
			p.recordChoice(i)
			return r
		}
		p.frameRestore(nc, nv)
		p.captures.restore(capSnap)
		lastExpected = r.expected
		if committed {
			break
		}
	}
	return matchResult{ok: false, end: pos, expected: lastExpected}
}

func (p *parseState) matchOptional(e *expr.Expr, pos int, cut *bool) matchResult {
	nc, nv := p.frameSnapshot()
	capSnap := p.captures.snapshot()
	r := p.match(e.Sub, pos, cut)
	if r.ok {
		return r
	}
	p.frameRestore(nc, nv)
	p.captures.restore(capSnap)
	return matchResult{ok: true, end: pos}
}

// matchRepeat implements ZeroOrMore (min=0), OneOrMore (min=1) and
// Repetition{min,max}, all sharing the no-progress guard that stops an
// unbounded loop from spinning on a sub-expression that matches empty.
func (p *parseState) matchRepeat(sub *expr.Expr, pos int, cut *bool, min, max int) matchResult {
	cur := pos
	count := 0
	for max == expr.Unbounded || count < max {
		nc, nv := p.frameSnapshot()
		capSnap := p.captures.snapshot()
		r := p.match(sub, cur, cut)
		if r.ok && r.end > cur {
			cur = r.end
			count++
			continue
		}
		p.frameRestore(nc, nv)
		p.captures.restore(capSnap)
		if !r.ok {
			if errNode, recovered := p.tryRecover(cur, r.expected); recovered && errNode.Span.End.Offset > cur {
				p.attachNode(errNode)
				cur = errNode.Span.End.Offset
				count++
				continue
			}
		}
		break
	}
	if count < min {
		return matchResult{ok: false, end: pos, expected: fmt.Sprintf("at least %d repetitions", min)}
	}
	return matchResult{ok: true, end: cur}
}

func (p *parseState) matchAnd(e *expr.Expr, pos int) matchResult {
	p.predicateDepth++
	r := p.match(e.Sub, pos, nil)
	p.predicateDepth--
	if !r.ok {
		return matchResult{ok: false, end: pos, expected: r.expected}
	}
	return matchResult{ok: true, end: pos}
}

func (p *parseState) matchNot(e *expr.Expr, pos int) matchResult {
	p.predicateDepth++
	r := p.match(e.Sub, pos, nil)
	p.predicateDepth--
	if r.ok {
		return matchResult{ok: false, end: pos, expected: "a negative lookahead not to match"}
	}
	return matchResult{ok: true, end: pos}
}

func (p *parseState) matchTokenBoundary(e *expr.Expr, pos int) matchResult {
	p.tokenDepth++
	r := p.match(e.Sub, pos, nil)
	p.tokenDepth--
	if !r.ok {
		return matchResult{ok: false, end: pos, expected: r.expected}
	}
	if p.buildCst {
		p.attachNode(&tree.CstNode{Kind: tree.TokenKind, Span: p.counter.Span(pos, r.end), Text: p.input[pos:r.end]})
	}
	if p.buildAst {
		p.attachValue(p.input[pos:r.end])
	}
	return matchResult{ok: true, end: r.end}
}

func (p *parseState) matchIgnore(e *expr.Expr, pos int, cut *bool) matchResult {
	p.suppressDepth++
	r := p.match(e.Sub, pos, cut)
	p.suppressDepth--
	return matchResult{ok: r.ok, end: r.end, expected: r.expected}
}

func (p *parseState) matchCapture(e *expr.Expr, pos int, cut *bool) matchResult {
	r := p.match(e.Sub, pos, cut)
	if !r.ok {
		return r
	}
	p.captures.set(e.Name, p.input[pos:r.end])
	return matchResult{ok: true, end: r.end}
}
