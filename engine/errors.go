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
	"fmt"
	"unicode/utf8"

	"github.com/dvoran/pegcore/position"
)

// UnexpectedInput is returned when a NONE/BASIC-mode parse fails because
// input didn't match what the grammar expected at Location. Found is the
// first disallowed character; Expected is the failing rule's errorMessage
// override, the nearest enclosing rule name, or a synthesised description
// of the failing terminal.
type UnexpectedInput struct {
	Location position.Location
	Found    string
	Expected string
}

func (e *UnexpectedInput) Error() string {
	return fmt.Sprintf("%s: expected %s, found %q", e.Location, e.Expected, e.Found)
}

// UnexpectedEof is returned in place of UnexpectedInput when the failure
// happened because input ran out before the grammar demanded more, rather
// than because of a mismatched character.
type UnexpectedEof struct {
	Location position.Location
	Expected string
}

func (e *UnexpectedEof) Error() string {
	return fmt.Sprintf("%s: expected %s, found end of input", e.Location, e.Expected)
}

// ActionError is returned when a rule's bound Action callback itself
// returns an error. Action is the rule's opaque action source
// (expr.Rule.Action); Cause unwraps to the callback's own error.
type ActionError struct {
	Location position.Location
	Action   string
	Cause    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: action %q failed: %s", e.Location, e.Action, e.Cause)
}

func (e *ActionError) Unwrap() error { return e.Cause }

// unexpectedAt builds UnexpectedEof when offset has run off the end of
// input, otherwise UnexpectedInput naming the first rune sitting at offset.
func unexpectedAt(counter *position.Counter, input string, offset int, expected string) error {
	loc := counter.Locate(offset)
	if offset >= len(input) {
		return &UnexpectedEof{Location: loc, Expected: expected}
	}
	r, w := utf8.DecodeRuneInString(input[offset:])
	if w == 0 {
		r = utf8.RuneError
	}
	return &UnexpectedInput{Location: loc, Found: string(r), Expected: expected}
}
