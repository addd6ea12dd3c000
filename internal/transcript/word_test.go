package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "Hello", want: "hello"},
		{name: "strips trailing punctuation", input: "world!", want: "world"},
		{name: "strips leading punctuation", input: "\"quoted", want: "quoted"},
		{name: "strips both sides", input: "(yeah?!)", want: "yeah"},
		{name: "collapses whitespace", input: "  gonna \t stop ", want: "gonna stop"},
		{name: "keeps internal apostrophe", input: "don't", want: "don't"},
		{name: "keeps digits", input: "24/7,", want: "24/7"},
		{name: "pure punctuation becomes empty", input: "...", want: ""},
		{name: "empty stays empty", input: "", want: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Normalize(tc.input))
		})
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	t.Parallel()

	input := "  Shout!! it   LOUD... "
	first := Normalize(input)
	require.Equal(t, first, Normalize(input))
}

func TestSanitizeDropsMalformedWords(t *testing.T) {
	t.Parallel()

	words := []Word{
		{Text: "ok", Start: 1.0, End: 1.5},
		{Text: "backwards", Start: 2.0, End: 1.0},
		{Text: "negative", Start: -0.5, End: 0.5},
		{Text: "zero-length", Start: 3.0, End: 3.0},
	}

	valid, diags := Sanitize(words)
	require.Len(t, valid, 2)
	require.Equal(t, "ok", valid[0].Text)
	require.Equal(t, "zero-length", valid[1].Text)
	require.Len(t, diags, 2)
	require.ErrorContains(t, diags[0], "backwards")
	require.ErrorContains(t, diags[1], "negative")
}

func TestNormalizeAllKeepsIndexAlignment(t *testing.T) {
	t.Parallel()

	words := []Word{
		{Text: "One,", Start: 0, End: 0.4},
		{Text: "TWO", Start: 0.5, End: 0.9},
	}
	require.Equal(t, []string{"one", "two"}, NormalizeAll(words))
}
