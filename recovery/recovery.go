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

// Package recovery implements panic-mode error recovery: given a
// failure position and the expectation that was not met, it scans
// forward to the next synchronisation token and synthesises an Error
// CST node covering the skipped range, so the engine's enclosing
// combinator can resume as if that region had matched.
package recovery

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/dvoran/pegcore/diag"
	"github.com/dvoran/pegcore/position"
	"github.com/dvoran/pegcore/tree"
)

// Strategy selects how the engine reacts to a match failure that would
// otherwise propagate to the top of the parse.
type Strategy int

const (
	// None returns the first failure as an error (engine.UnexpectedInput
	// or engine.UnexpectedEof); no diagnostic is built.
	None Strategy = iota
	// Basic is handled by the engine exactly like None: the first failure
	// is returned as an error and no diagnostic is recorded.
	Basic
	// Advanced synthesises Error CST nodes and keeps parsing.
	Advanced
)

func (s Strategy) String() string {
	switch s {
	case None:
		return "None"
	case Basic:
		return "Basic"
	case Advanced:
		return "Advanced"
	default:
		return "Unknown"
	}
}

// DefaultCascadeBound is the default limit on synthesised Error nodes
// per parse; exceeding it converts recovery into a hard failure.
const DefaultCascadeBound = 100

// defaultSyncTokens are the characters panic-mode recovery scans for.
// The synchronisation token itself is left unconsumed.
const defaultSyncTokens = ",;})]\n"

// Controller drives panic-mode recovery for a single parse.
type Controller struct {
	input        string
	counter      *position.Counter
	cascadeBound int
	errorCount   int
	diagnostics  []diag.Diagnostic
}

// NewController returns a Controller over input with the given cascade
// bound (DefaultCascadeBound if <= 0).
func NewController(input string, counter *position.Counter, cascadeBound int) *Controller {
	if cascadeBound <= 0 {
		cascadeBound = DefaultCascadeBound
	}
	return &Controller{input: input, counter: counter, cascadeBound: cascadeBound}
}

// Diagnostics returns every diagnostic recorded so far, in order.
func (c *Controller) Diagnostics() []diag.Diagnostic {
	return c.diagnostics
}

// ErrorCount reports how many Error nodes have been synthesised so far.
func (c *Controller) ErrorCount() int {
	return c.errorCount
}

// CascadeExceeded reports whether the cascade bound has been reached.
func (c *Controller) CascadeExceeded() bool {
	return c.errorCount >= c.cascadeBound
}

// Recover scans forward from failOffset to the next synchronisation
// token (or end of input), records a diagnostic, and returns an Error
// CstNode covering the skipped range. The caller is responsible for
// checking CascadeExceeded before calling Recover again.
func (c *Controller) Recover(failOffset int, expected string) *tree.CstNode {
	c.errorCount++
	syncOffset := failOffset
	for syncOffset < len(c.input) && !isSyncToken(c.input[syncOffset]) {
		syncOffset++
	}
	span := c.counter.Span(failOffset, syncOffset)
	log.V(4).Infof("recovering at %d: skipped %d bytes to %s, expected %s", failOffset, syncOffset-failOffset, span, expected)
	if c.errorCount == c.cascadeBound {
		log.V(2).Infof("recovery cascade bound %d reached", c.cascadeBound)
	}
	c.diagnostics = append(c.diagnostics, diag.Diagnostic{
		Severity: diag.Error,
		Code:     "unexpected-input",
		Message:  "unexpected input",
		Span:     span,
		Help:     []string{fmt.Sprintf("expected %s", expected)},
	})
	return &tree.CstNode{
		Kind:        tree.ErrorKind,
		Rule:        tree.ErrorRule,
		Span:        span,
		SkippedText: c.input[failOffset:syncOffset],
		Expected:    expected,
	}
}

func isSyncToken(b byte) bool {
	for i := 0; i < len(defaultSyncTokens); i++ {
		if defaultSyncTokens[i] == b {
			return true
		}
	}
	return false
}
