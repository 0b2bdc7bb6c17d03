package dialog

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerminalConfirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
	}
	for input, want := range cases {
		out := new(bytes.Buffer)
		term := NewTerminal(strings.NewReader(input), out)
		got, err := term.Confirm(context.Background(), "Delete branch?")
		require.NoError(t, err)
		require.Equal(t, want, got, "input %q", input)
		require.Equal(t, "Delete branch? [y/N]: ", out.String())
	}
}

func TestTerminalPrompt(t *testing.T) {
	out := new(bytes.Buffer)
	term := NewTerminal(strings.NewReader("North\n\n"), out)
	ctx := context.Background()

	value, ok, err := term.Prompt(ctx, "Branch name", "Main")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "North", value)

	value, ok, err = term.Prompt(ctx, "Branch name", "Main")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Main", value)

	_, ok, err = term.Prompt(ctx, "Branch name", "Main")
	require.NoError(t, err)
	require.False(t, ok, "EOF cancels")
	require.Contains(t, out.String(), "Branch name [Main]: ")
}

func TestTerminalAlertHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	term := NewTerminal(strings.NewReader(""), new(bytes.Buffer))
	require.ErrorIs(t, term.Alert(ctx, "x"), context.Canceled)
}

func TestScripted(t *testing.T) {
	s := NewScripted(Answer{Confirm: true}, Answer{Value: "Renamed"}, Answer{Cancel: true})
	ctx := context.Background()

	ok, err := s.Confirm(ctx, "Delete customer?")
	require.NoError(t, err)
	require.True(t, ok)

	value, ok, err := s.Prompt(ctx, "Branch name", "Old")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Renamed", value)

	_, ok, _ = s.Prompt(ctx, "Branch name", "Old")
	require.False(t, ok)

	ok, _ = s.Confirm(ctx, "again?")
	require.False(t, ok, "exhausted script answers no")

	require.NoError(t, s.Alert(ctx, "Delete failed"))
	require.Equal(t, []string{"Delete failed"}, s.Alerts())
	require.Equal(t, "Delete failed", s.LastAlert())
	require.Equal(t, []string{"Delete customer?", "Branch name", "Branch name", "again?"}, s.Asked())
}
