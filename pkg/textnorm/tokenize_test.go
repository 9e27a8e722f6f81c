package textnorm

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "Empty", input: "", expected: []string{}},
		{name: "Simple words", input: "Pizza Delivery", expected: []string{"Pizza", "Delivery"}},
		{name: "Whitespace runs", input: "  Help   Wanted \t", expected: []string{"Help", "Wanted"}},
		{name: "Curly quotes folded", input: "Krabs’ “Secret”", expected: []string{"Krabs'", "'Secret'"}},
		{name: "Disallowed characters dropped", input: "Mr. Krabs, Inc.", expected: []string{"Mr", "Krabs", "Inc"}},
		{name: "Allowed punctuation kept", input: "Who's Ready? (Again!) - Part 2: Fun & Games", expected: []string{"Who's", "Ready?", "(Again!)", "-", "Part", "2:", "Fun", "&", "Games"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.input)
			if len(got) == 0 && len(tc.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Tokenize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestDetokenize(t *testing.T) {
	testCases := []struct {
		name     string
		tokens   []string
		expected string
	}{
		{name: "Empty", tokens: nil, expected: ""},
		{name: "Plain join", tokens: []string{"Band", "Geeks"}, expected: "Band Geeks"},
		{name: "Closing punctuation attached", tokens: []string{"Who", "Is", "It", "?"}, expected: "Who Is It?"},
		{name: "Colon attached", tokens: []string{"Chapter", "One", ":", "Jellyfish"}, expected: "Chapter One: Jellyfish"},
		{name: "Hyphen spaced", tokens: []string{"Squid", "-", "Wood"}, expected: "Squid - Wood"},
		{name: "Em dash spaced", tokens: []string{"Night", "—", "Day"}, expected: "Night — Day"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Detokenize(tc.tokens); got != tc.expected {
				t.Errorf("Detokenize(%q) = %q, want %q", tc.tokens, got, tc.expected)
			}
		})
	}
}

func TestDetokenizeIdempotentOnCanonicalText(t *testing.T) {
	inputs := []string{
		"Pizza Delivery",
		"Who Is It? Again",
		"Squid - Wood",
		"Chapter One: Jellyfish",
		`The "Secret" Formula`,
	}
	for _, in := range inputs {
		once := Detokenize(Tokenize(in))
		twice := Detokenize(Tokenize(once))
		if once != twice {
			t.Errorf("round trip not stable for %q: %q then %q", in, once, twice)
		}
	}
}
