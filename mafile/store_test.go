package mafile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PMArkive/PySteamAuth/session"
)

func testBundle() *SecretBundle {
	return &SecretBundle{
		SharedSecret:   "AAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		IdentitySecret: "BBBBBBBBBBBBBBBBBBBBBBBBBBB=",
		AccountName:    "bob",
		RevocationCode: "R12345",
		DeviceID:       "android:dev",
		FullyEnrolled:  true,
		Session: &session.Session{
			SteamID:    76561198000000000,
			OAuthToken: "token",
			SessionID:  "sess",
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	b := testBundle()

	require.NoError(t, s.Save(b))

	loaded, err := s.Load(b.SteamID())
	require.NoError(t, err)
	require.Equal(t, b, loaded)

	// maFile written under the id-derived name, next to the manifest.
	_, err = os.Stat(filepath.Join(s.Dir(), "76561198000000000.maFile"))
	require.NoError(t, err)
}

func TestStoreLoadSelected(t *testing.T) {
	s := NewStore(t.TempDir())
	b := testBundle()
	require.NoError(t, s.Save(b))

	other := testBundle()
	other.AccountName = "alice"
	other.Session.SteamID = 76561198000000001
	require.NoError(t, s.Save(other))

	m, err := s.LoadManifest()
	require.NoError(t, err)
	m.SelectedAccount = 1
	require.NoError(t, s.SaveManifest(m))

	selected, err := s.LoadSelected()
	require.NoError(t, err)
	require.Equal(t, "alice", selected.AccountName)
}

func TestStoreEncryptedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	s.SetPassphrase([]byte("hunter2"))
	require.NoError(t, s.SaveManifest(&Manifest{Encrypted: true}))

	b := testBundle()
	require.NoError(t, s.Save(b))

	// The on-disk payload must not leak the secrets in clear.
	raw, err := os.ReadFile(filepath.Join(dir, "76561198000000000.maFile"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "AAAAAAAAAAAAAAAAAAAAAAAAAAA=")

	loaded, err := s.Load(b.SteamID())
	require.NoError(t, err)
	require.Equal(t, b, loaded)

	// A different passphrase must not decrypt.
	fresh := NewStore(dir)
	fresh.SetPassphrase([]byte("wrong"))
	_, err = fresh.Load(b.SteamID())
	require.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestStoreMissingManifest(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.LoadManifest()
	require.ErrorIs(t, err, ErrNoManifest)
}

func TestStoreUnknownAccount(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Save(testBundle()))

	_, err := s.Load(1)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestStoreRemove(t *testing.T) {
	s := NewStore(t.TempDir())
	b := testBundle()
	require.NoError(t, s.Save(b))
	require.NoError(t, s.Remove(b.SteamID()))

	_, err := s.Load(b.SteamID())
	require.ErrorIs(t, err, ErrAccountNotFound)
	_, err = os.Stat(filepath.Join(s.Dir(), "76561198000000000.maFile"))
	require.True(t, os.IsNotExist(err))
}

func TestManifestJSONShape(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Save(testBundle()))

	raw, err := os.ReadFile(filepath.Join(s.Dir(), "manifest.json"))
	require.NoError(t, err)
	for _, key := range []string{
		`"encrypted"`, `"first_run"`, `"periodic_checking"`,
		`"auto_confirm_trades"`, `"auto_confirm_market_transactions"`,
		`"selected_account"`, `"entries"`, `"steamid"`, `"filename"`,
	} {
		require.Contains(t, string(raw), key)
	}
}
