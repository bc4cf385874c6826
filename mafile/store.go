package mafile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var (
	// ErrNoManifest means the directory has never been set up.
	ErrNoManifest = errors.New("manifest not found")

	// ErrAccountNotFound means the manifest has no entry for the id.
	ErrAccountNotFound = errors.New("account not found in manifest")

	ErrWrongPassphrase = errors.New("wrong passphrase")
)

const manifestFilename = "manifest.json"

// Store reads and writes maFiles under one directory. It is the only
// component that touches the files; everything above exchanges
// SecretBundle values.
type Store struct {
	dir        string
	passphrase []byte
	manifest   *Manifest
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// SetPassphrase installs the passphrase used when the manifest marks
// the files encrypted.
func (s *Store) SetPassphrase(passphrase []byte) {
	s.passphrase = passphrase
}

// LoadManifest reads manifest.json, caching the result for entry
// lookups.
func (s *Store) LoadManifest() (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, manifestFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoManifest
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	s.manifest = &m
	return &m, nil
}

func (s *Store) SaveManifest(m *Manifest) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	s.manifest = m
	return os.WriteFile(filepath.Join(s.dir, manifestFilename), raw, 0o600)
}

// Load returns the secret bundle for an account id.
func (s *Store) Load(steamID uint64) (*SecretBundle, error) {
	entry, err := s.entry(steamID)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, entry.Filename))
	if err != nil {
		return nil, err
	}
	if s.manifest.Encrypted {
		raw, err = decrypt(string(raw), entry.EncryptionSalt, entry.EncryptionIV, s.passphrase)
		if err != nil {
			return nil, err
		}
	}
	var b SecretBundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("parse maFile: %w", err)
	}
	return &b, nil
}

// LoadSelected loads the bundle the manifest marks active.
func (s *Store) LoadSelected() (*SecretBundle, error) {
	if s.manifest == nil {
		if _, err := s.LoadManifest(); err != nil {
			return nil, err
		}
	}
	if len(s.manifest.Entries) == 0 {
		return nil, ErrAccountNotFound
	}
	idx := s.manifest.SelectedAccount
	if idx < 0 || idx >= len(s.manifest.Entries) {
		idx = 0
	}
	return s.Load(s.manifest.Entries[idx].SteamID)
}

// Save writes the bundle back, registering a manifest entry for new
// accounts. Encryption material is rotated on every save.
func (s *Store) Save(b *SecretBundle) error {
	if s.manifest == nil {
		if _, err := s.LoadManifest(); err != nil && !errors.Is(err, ErrNoManifest) {
			return err
		}
		if s.manifest == nil {
			s.manifest = NewManifest()
		}
	}
	steamID := b.SteamID()
	if steamID == 0 {
		return errors.New("bundle has no steam id")
	}

	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}

	entry := s.findEntry(steamID)
	if entry == nil {
		s.manifest.Entries = append(s.manifest.Entries, ManifestEntry{
			SteamID:  steamID,
			Filename: strconv.FormatUint(steamID, 10) + ".maFile",
		})
		entry = &s.manifest.Entries[len(s.manifest.Entries)-1]
	}

	payload := raw
	if s.manifest.Encrypted {
		data, salt, nonce, err := encrypt(raw, s.passphrase)
		if err != nil {
			return err
		}
		payload = []byte(data)
		entry.EncryptionSalt = salt
		entry.EncryptionIV = nonce
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, entry.Filename), payload, 0o600); err != nil {
		return err
	}
	return s.SaveManifest(s.manifest)
}

// Remove deletes an account's maFile and manifest entry, as after a
// revoke.
func (s *Store) Remove(steamID uint64) error {
	entry, err := s.entry(steamID)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, entry.Filename)); err != nil && !os.IsNotExist(err) {
		return err
	}
	entries := s.manifest.Entries[:0]
	for _, e := range s.manifest.Entries {
		if e.SteamID != steamID {
			entries = append(entries, e)
		}
	}
	s.manifest.Entries = entries
	if s.manifest.SelectedAccount >= len(entries) {
		s.manifest.SelectedAccount = 0
	}
	return s.SaveManifest(s.manifest)
}

func (s *Store) entry(steamID uint64) (*ManifestEntry, error) {
	if s.manifest == nil {
		if _, err := s.LoadManifest(); err != nil {
			return nil, err
		}
	}
	if entry := s.findEntry(steamID); entry != nil {
		return entry, nil
	}
	return nil, ErrAccountNotFound
}

func (s *Store) findEntry(steamID uint64) *ManifestEntry {
	for i := range s.manifest.Entries {
		if s.manifest.Entries[i].SteamID == steamID {
			return &s.manifest.Entries[i]
		}
	}
	return nil
}
