// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/fherex/compiler"
)

// seedScenario is one (pattern, input, expected accept/reject) case shared
// across the plaintext and cipher matchers.
type seedScenario struct {
	pattern string
	input   string
	accept  bool
}

var seedScenarios = []seedScenario{
	{"^abc$", "abc", true},
	{"^abc$", "abccc", false},
	{"^ab+c$", "abbc", true},
	{`^ab{2,4}c$`, "abbbbbc", false},
	{"^[^ade]$", "b", true},
	{`^hel(ab{2}|l{3,}o)bc$`, "helllllllobc", true},
	{`^01[b-e]{4}56$`, "01bcde56", true},
}

func TestRunPlainSeedScenarios(t *testing.T) {
	for _, sc := range seedScenarios {
		sc := sc
		t.Run(sc.pattern+"/"+sc.input, func(t *testing.T) {
			p, err := compiler.Compile(sc.pattern)
			require.NoError(t, err)

			accept, err := RunPlain(p, []byte(sc.input))
			require.NoError(t, err)
			require.Equal(t, sc.accept, accept)
		})
	}
}

func TestRunPlainAnchors(t *testing.T) {
	p, err := compiler.Compile("^ab")
	require.NoError(t, err)
	accept, err := RunPlain(p, []byte("xab"))
	require.NoError(t, err)
	require.False(t, accept, "^ab must reject a match not starting at position 0")

	p, err = compiler.Compile("ab$")
	require.NoError(t, err)
	accept, err = RunPlain(p, []byte("abx"))
	require.NoError(t, err)
	require.False(t, accept, "ab$ must reject a match not ending at the input's end")

	p, err = compiler.Compile("^ab$")
	require.NoError(t, err)
	accept, err = RunPlain(p, []byte("ab"))
	require.NoError(t, err)
	require.True(t, accept)
}

func TestRunPlainLooseMatch(t *testing.T) {
	// Without anchors, falling off the end of the program after consuming
	// only a prefix/infix still accepts: the "loose match" case.
	p, err := compiler.Compile("ab")
	require.NoError(t, err)
	accept, err := RunPlain(p, []byte("xabz"))
	require.NoError(t, err)
	require.True(t, accept)
}

func TestRunPlainQuantifierCounts(t *testing.T) {
	p, err := compiler.Compile(`^a{2,4}$`)
	require.NoError(t, err)

	cases := []struct {
		input  string
		accept bool
	}{
		{"a", false},
		{"aa", true},
		{"aaa", true},
		{"aaaa", true},
		{"aaaaa", false},
	}
	for _, c := range cases {
		accept, err := RunPlain(p, []byte(c.input))
		require.NoError(t, err)
		require.Equal(t, c.accept, accept, "input %q", c.input)
	}
}

func TestRunPlainAlternation(t *testing.T) {
	p, err := compiler.Compile("^ab|cd$")
	require.NoError(t, err)

	// "ab|cd" without grouping around "^...$" only anchors the first
	// alternative's start and the second alternative's end, matching
	// regexp/syntax's own precedence: alternation binds looser than the
	// anchors written directly against one branch.
	accept, err := RunPlain(p, []byte("ab"))
	require.NoError(t, err)
	require.True(t, accept)

	accept, err = RunPlain(p, []byte("cd"))
	require.NoError(t, err)
	require.True(t, accept)
}

// TestRunPlainRejectsOnInputExhaustion exercises the rule that a plain
// (non-repeatable, non-optional) Char or IntervalChar running out of input
// rejects the whole match immediately, instead of backtracking into an
// alternative that might otherwise succeed. "(ab|a)" has a branch that
// alone would match "a", but the first alternative's Char('b') still runs
// out of input first and must reject the entire match.
func TestRunPlainRejectsOnInputExhaustion(t *testing.T) {
	p, err := compiler.Compile("^(ab|a)$")
	require.NoError(t, err)

	accept, err := RunPlain(p, []byte("a"))
	require.NoError(t, err)
	require.False(t, accept)

	accept, err = RunPlain(p, []byte("ab"))
	require.NoError(t, err)
	require.True(t, accept)
}

func TestRunPlainGroupedAlternation(t *testing.T) {
	p, err := compiler.Compile("^(ab|cd)$")
	require.NoError(t, err)

	for _, in := range []string{"ab", "cd"} {
		accept, err := RunPlain(p, []byte(in))
		require.NoError(t, err)
		require.True(t, accept, "input %q", in)
	}

	accept, err := RunPlain(p, []byte("ac"))
	require.NoError(t, err)
	require.False(t, accept)
}
