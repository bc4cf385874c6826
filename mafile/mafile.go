// Package mafile persists account secrets in the maFile/manifest
// layout, optionally encrypted with a passphrase.
package mafile

import (
	"github.com/PMArkive/PySteamAuth/session"
)

// SecretBundle is the secret material for one account, in the maFile
// JSON shape. The store owns it; other components borrow it for the
// duration of an operation and hand mutations (session tokens) back
// through Save instead of touching disk themselves.
type SecretBundle struct {
	SharedSecret   string `json:"shared_secret"`
	SerialNumber   string `json:"serial_number"`
	RevocationCode string `json:"revocation_code"`
	URI            string `json:"uri"`
	ServerTime     int64  `json:"server_time,string"`
	AccountName    string `json:"account_name"`
	TokenGID       string `json:"token_gid"`
	IdentitySecret string `json:"identity_secret"`
	Secret1        string `json:"secret_1"`
	Status         int32  `json:"status"`
	DeviceID       string `json:"device_id"`
	// FullyEnrolled flips once finalize succeeds; until then the
	// authenticator is not active on the account.
	FullyEnrolled bool             `json:"fully_enrolled"`
	Session       *session.Session `json:"Session"`
}

// SteamID returns the account id the bundle belongs to, 0 when no
// session has been established yet.
func (b *SecretBundle) SteamID() uint64 {
	if b.Session == nil {
		return 0
	}
	return b.Session.SteamID
}

// Manifest mirrors manifest.json: which maFiles exist, which account
// is selected, and the app toggles that outlive a run.
type Manifest struct {
	Encrypted                bool            `json:"encrypted"`
	FirstRun                 bool            `json:"first_run"`
	PeriodicChecking         bool            `json:"periodic_checking"`
	PeriodicCheckingInterval int             `json:"periodic_checking_interval"`
	PeriodicCheckingCheckall bool            `json:"periodic_checking_checkall"`
	AutoConfirmTrades        bool            `json:"auto_confirm_trades"`
	AutoConfirmMarket        bool            `json:"auto_confirm_market_transactions"`
	SelectedAccount          int             `json:"selected_account"`
	Entries                  []ManifestEntry `json:"entries"`
}

type ManifestEntry struct {
	SteamID        uint64 `json:"steamid"`
	EncryptionIV   string `json:"encryption_iv"`
	EncryptionSalt string `json:"encryption_salt"`
	Filename       string `json:"filename"`
}

// NewManifest returns the defaults written right after a first enroll.
func NewManifest() *Manifest {
	return &Manifest{
		PeriodicCheckingInterval: 5,
	}
}
