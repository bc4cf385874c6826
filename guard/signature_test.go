package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfirmationKeyGoldenVectors(t *testing.T) {
	// Known-good values for a fixed secret and timestamp.
	cases := map[string]string{
		"conf":    "%2FWlhe4F1OkCpalik7tz4NJLkPu8%3D",
		"allow":   "FXZHwQznJzvo9iyKQ838L%2B8E6ZA%3D",
		"cancel":  "%2FpXrcN8P0MPlPlW5W72PD56%2BG0E%3D",
		"details": "uEnF6f%2BvchLL8oogxc5XTmcxa5w%3D",
		"":        "9QHNFcdfR5dIhXPu5d%2B9DVCy7b0%3D",
	}
	for tag, want := range cases {
		got, err := ConfirmationKey(testSecret, tag, 1600000000)
		require.NoError(t, err)
		require.Equal(t, want, got, "tag %q", tag)
	}
}

func TestConfirmationKeyTagTruncation(t *testing.T) {
	long, err := ConfirmationKey(testSecret, strings.Repeat("x", 40), 1600000000)
	require.NoError(t, err)
	exact, err := ConfirmationKey(testSecret, strings.Repeat("x", 32), 1600000000)
	require.NoError(t, err)
	require.Equal(t, exact, long)

	shorter, err := ConfirmationKey(testSecret, strings.Repeat("x", 31), 1600000000)
	require.NoError(t, err)
	require.NotEqual(t, exact, shorter)
}

func TestConfirmationKeyEmptyTagDependsOnTimeOnly(t *testing.T) {
	a, err := ConfirmationKey(testSecret, "", 1600000000)
	require.NoError(t, err)
	b, err := ConfirmationKey(testSecret, "", 1600000000)
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := ConfirmationKey(testSecret, "", 1600000001)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestConfirmationKeyEncoding(t *testing.T) {
	key, err := ConfirmationKey(testSecret, "conf", 1600000000)
	require.NoError(t, err)
	// quote_plus output never contains raw reserved characters.
	require.NotContains(t, key, "/")
	require.NotContains(t, key, " ")
}

func TestConfirmationKeyInvalidSecret(t *testing.T) {
	_, err := ConfirmationKey("", "conf", 1600000000)
	require.ErrorIs(t, err, ErrInvalidSecret)
}
