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

package tree

import "fmt"

// Diff compares two CstNode trees structurally and returns a list of
// human-readable mismatches, or nil if the trees are equivalent. Used by
// tests to produce a readable failure instead of a raw struct dump.
func Diff(got, want *CstNode) (diff []string) {
	if got == nil && want == nil {
		return nil
	}
	if got == nil {
		diff = append(diff, fmt.Sprintf("Expected (%s), got nil", want.Rule))
		return
	}
	if want == nil {
		diff = append(diff, fmt.Sprintf("Expected nil, got (%s)", got.Rule))
		return
	}
	if got.Rule != want.Rule {
		diff = append(diff, fmt.Sprintf("Expected rule %q, got %q", want.Rule, got.Rule))
	}
	if got.Kind != want.Kind {
		diff = append(diff, fmt.Sprintf("Expected kind %s, got %s", want.Kind, got.Kind))
	}
	if got.Text != want.Text {
		diff = append(diff, fmt.Sprintf("Expected text %q, got %q", want.Text, got.Text))
	}
	if got.Kind == ErrorKind || want.Kind == ErrorKind {
		if got.SkippedText != want.SkippedText {
			diff = append(diff, fmt.Sprintf("Expected skipped text %q, got %q", want.SkippedText, got.SkippedText))
		}
		if got.Expected != want.Expected {
			diff = append(diff, fmt.Sprintf("Expected expectation %q, got %q", want.Expected, got.Expected))
		}
	}
	if len(got.Children) != len(want.Children) {
		diff = append(diff, fmt.Sprintf("Expected %d children got %d", len(want.Children), len(got.Children)))
	}
	n := len(got.Children)
	if len(want.Children) < n {
		n = len(want.Children)
	}
	for i := 0; i < n; i++ {
		diff = append(diff, Diff(got.Children[i], want.Children[i])...)
	}
	return
}
