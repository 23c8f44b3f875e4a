package version

import (
	"errors"
	"testing"
)

// FuzzParse checks that Parse never panics and that accepted input
// round-trips through String.
// Run with: go test -fuzz=FuzzParse -fuzztime=30s
func FuzzParse(f *testing.F) {
	seeds := []string{
		"1.0.0",
		"0.0.1",
		"10.20.30",
		"1",
		"1.0",
		"0.0.0",
		"999.999.999",
		"",
		"v1.0.0",
		"1.0.0.0",
		"1.2.3-alpha",
		"a.b.c",
		"1..0",
		".1.0",
		"1.0.",
		"18446744073709551615",
		"18446744073709551616",
		"１.２.３",
		" 1.0.0",
		"1.0.0\n",
		"bump",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		v, ok := Parse(input)
		if !ok {
			if !v.IsZero() {
				t.Errorf("rejected input %q returned non-zero version %v", input, v)
			}
			return
		}

		reparsed, ok := Parse(v.String())
		if !ok {
			t.Fatalf("failed to reparse %q (from %q)", v.String(), input)
		}
		if !reparsed.Equal(v) {
			t.Errorf("reparsed version differs: original=%v, reparsed=%v", v, reparsed)
		}
	})
}

// FuzzParseCommand checks that every command either classifies or
// wraps ErrUnknownCommand.
func FuzzParseCommand(f *testing.F) {
	for _, seed := range []string{"", "bump", "bump-minor", "bump-major", "sync", "2.0", "nope"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		cmd, err := ParseCommand(input)
		if err != nil {
			if !errors.Is(err, ErrUnknownCommand) {
				t.Errorf("ParseCommand(%q) error = %v, want ErrUnknownCommand", input, err)
			}
			return
		}

		current := NewSemanticVersion(1, 2, 3)
		next := cmd.Next(current)
		if cmd.Kind() == CommandBump && !next.GreaterThan(current) {
			t.Errorf("bump %q produced %v from %v", input, next, current)
		}
	})
}
