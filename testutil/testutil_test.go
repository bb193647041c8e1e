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

package testutil

import (
	"testing"

	"github.com/dvoran/pegcore/peg"
)

func TestInvalidGrammarsAreRejected(t *testing.T) {
	for _, tc := range Invalid {
		if _, err := peg.New(tc.Grammar, nil, peg.Config{}); err == nil {
			t.Errorf("%s: peg.New(%q) succeeded, want an error", tc.Name, tc.Grammar)
		}
	}
}

func TestPositiveGrammarsAcceptExpectedInputs(t *testing.T) {
	for _, tc := range Positive {
		p, err := peg.New(tc.Grammar, nil, peg.Config{})
		if err != nil {
			t.Errorf("%s: peg.New(%q): %v", tc.Name, tc.Grammar, err)
			continue
		}
		RunPositive(t, tc, func(input string) bool {
			_, err := p.ParseCst(input)
			return err == nil
		})
	}
}

func TestCaptureGrammarsCaptureExpectedText(t *testing.T) {
	for _, tc := range Captures {
		p, err := peg.New(tc.Grammar, nil, peg.Config{})
		if err != nil {
			t.Errorf("%s: peg.New(%q): %v", tc.Name, tc.Grammar, err)
			continue
		}
		RunCapture(t, tc, p.ParseCst)
	}
}
