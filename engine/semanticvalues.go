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

package engine

import (
	"strconv"
	"strings"

	"github.com/dvoran/pegcore/position"
)

// Action is the opaque external callback a Rule is bound to. The engine
// never inspects action source text; it only invokes Apply once a rule's
// expression has matched, the same narrow boundary spec.md draws around
// action-code compilation (an external collaborator).
type Action interface {
	Apply(sv SemanticValues) (any, error)
}

// SemanticValues is the per-rule bundle handed to a rule's Action.
type SemanticValues struct {
	text        string
	span        position.Span
	childValues []any
	choice      int
}

// Token returns the matched text (token text if the rule is a
// TokenBoundary, the full matched span's text otherwise).
func (sv SemanticValues) Token() string { return sv.text }

// Span returns the span of the rule's match.
func (sv SemanticValues) Span() position.Span { return sv.span }

// Size returns the number of child values collected.
func (sv SemanticValues) Size() int { return len(sv.childValues) }

// Values returns every child value, in document order.
func (sv SemanticValues) Values() []any { return sv.childValues }

// Get returns the i-th child value (0-based), or nil if out of range.
func (sv SemanticValues) Get(i int) any {
	if i < 0 || i >= len(sv.childValues) {
		return nil
	}
	return sv.childValues[i]
}

// Choice returns the 0-based index of the alternative that matched, or
// -1 if no Choice was evaluated within this rule.
func (sv SemanticValues) Choice() int { return sv.choice }

// ToInt parses the matched text as a base-10 integer, returning 0 if it
// does not parse.
func (sv SemanticValues) ToInt() int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(sv.text), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ToLong is an alias for ToInt, matching the external action-callback
// surface's naming (spec.md §6).
func (sv SemanticValues) ToLong() int64 { return sv.ToInt() }

// ToDouble parses the matched text as a floating-point number, returning
// 0 if it does not parse.
func (sv SemanticValues) ToDouble() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(sv.text), 64)
	if err != nil {
		return 0
	}
	return v
}
