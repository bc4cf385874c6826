package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSecret = "AAAAAAAAAAAAAAAAAAAAAAAAAAA="

func TestCodeGoldenVector(t *testing.T) {
	code, err := Code(testSecret, 1600000000)
	require.NoError(t, err)
	require.Equal(t, "Q6WFV", code)
}

func TestCodeDeterministicWithinPeriod(t *testing.T) {
	// 1600000020 starts a new 30-second step; everything inside it
	// yields the same code.
	first, err := Code(testSecret, 1600000020)
	require.NoError(t, err)
	for _, ts := range []int64{1600000021, 1600000029, 1600000049} {
		code, err := Code(testSecret, ts)
		require.NoError(t, err)
		require.Equal(t, first, code, "time %d", ts)
	}

	next, err := Code(testSecret, 1600000050)
	require.NoError(t, err)
	require.NotEqual(t, first, next)
}

func TestCodeAlphabet(t *testing.T) {
	for _, ts := range []int64{0, 1, 29, 30, 1600000000, 1893456000} {
		code, err := Code(testSecret, ts)
		require.NoError(t, err)
		require.Len(t, code, 5)
		for _, c := range code {
			require.True(t, strings.ContainsRune(string(codeChars), c),
				"code %q contains %q outside the alphabet", code, c)
		}
	}
}

func TestCodeInvalidSecret(t *testing.T) {
	for _, secret := range []string{"", "not base64!!", "%%%"} {
		_, err := Code(secret, 1600000000)
		require.ErrorIs(t, err, ErrInvalidSecret, "secret %q", secret)
	}
}

func TestSecondsRemaining(t *testing.T) {
	for ts := int64(1599999990); ts < 1600000060; ts++ {
		got := SecondsRemaining(ts)
		require.GreaterOrEqual(t, got, 1)
		require.LessOrEqual(t, got, 30)
		if ts%30 == 0 {
			require.Equal(t, 30, got)
		} else {
			require.Equal(t, SecondsRemaining(ts-1)-1, got)
		}
	}
}
