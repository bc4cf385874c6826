package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerminalCode(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminalWithIO(strings.NewReader("12345\n"), &out)

	code, err := term.Code(CodeSMS)
	require.NoError(t, err)
	require.Equal(t, "12345", code)
	require.Contains(t, out.String(), "SMS code")
}

func TestTerminalCancel(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminalWithIO(strings.NewReader("q\n"), &out)

	_, err := term.Code(CodeTwoFactor)
	require.ErrorIs(t, err, ErrCancelled)
}

func TestTerminalCancelOnEOF(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminalWithIO(strings.NewReader(""), &out)

	_, err := term.Code(CodeEmail)
	require.ErrorIs(t, err, ErrCancelled)
}

func TestTerminalConfirm(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminalWithIO(strings.NewReader("yes\nno\n"), &out)

	ok, err := term.Confirm("Remove authenticator?")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = term.Confirm("Remove authenticator?")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTerminalNotifySeverity(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminalWithIO(strings.NewReader(""), &out)

	term.Notify("stale session", Warning)
	term.Notify("boom", Error)
	term.Notify("hello", Info)

	require.Contains(t, out.String(), "warning: stale session")
	require.Contains(t, out.String(), "error: boom")
	require.Contains(t, out.String(), "hello")
}
