package cmdline

import (
	"errors"
	"slices"
	"testing"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"/open a.go b.go", []string{"/open", "a.go", "b.go"}},
		{"/open  \t a.go", []string{"/open", "a.go"}},
		{`/open "my notes.md"`, []string{"/open", "my notes.md"}},
		{`/open 'it''s'`, []string{"/open", "its"}},
		{`/open "say \"hi\""`, []string{"/open", `say "hi"`}},
		{`/open 'a\b'`, []string{"/open", `a\b`}},
		{`/open a\ b`, []string{"/open", "a b"}},
		{`/open ""`, []string{"/open", ""}},
		{`/close dir\`, []string{"/close", `dir\`}},
	}

	for _, c := range cases {
		got, err := Split(c.in)
		if err != nil {
			t.Errorf("Split(%q) error: %v", c.in, err)
			continue
		}
		if !slices.Equal(got, c.want) {
			t.Errorf("Split(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSplitUnterminated(t *testing.T) {
	for _, in := range []string{`/open "a.go`, `/open 'a.go`} {
		if _, err := Split(in); !errors.Is(err, ErrUnterminatedQuote) {
			t.Errorf("Split(%q) error = %v", in, err)
		}
	}
}
