package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, "anything"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q, want %q", got, "ab  ")
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight long = %q, want unchanged", got)
	}
	if got := padRight("ab", 0); got != "ab" {
		t.Fatalf("padRight zero = %q, want unchanged", got)
	}
}
