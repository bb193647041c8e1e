package dictionary

import "testing"

func TestLongestMatch(t *testing.T) {
	tr := New([]string{"a", "ab", "abc", "b"}, false)
	tests := []struct {
		input    string
		wantLen  int
		wantOk   bool
	}{
		{"abcd", 3, true},
		{"ab", 2, true},
		{"a", 1, true},
		{"b", 1, true},
		{"c", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		gotLen, gotOk := tr.LongestMatch(tt.input)
		if gotLen != tt.wantLen || gotOk != tt.wantOk {
			t.Errorf("LongestMatch(%q) = (%d, %v), want (%d, %v)",
				tt.input, gotLen, gotOk, tt.wantLen, tt.wantOk)
		}
	}
}

func TestLongestMatchCaseInsensitive(t *testing.T) {
	tr := New([]string{"And", "Or"}, true)
	if n, ok := tr.LongestMatch("and rest"); !ok || n != 3 {
		t.Errorf("LongestMatch(%q) = (%d, %v), want (3, true)", "and rest", n, ok)
	}
	if n, ok := tr.LongestMatch("ORDER"); !ok || n != 2 {
		t.Errorf("LongestMatch(%q) = (%d, %v), want (2, true)", "ORDER", n, ok)
	}
}
