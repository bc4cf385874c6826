package community

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"math/big"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/google/uuid"
)

// EncryptPassword encrypts an account password with the RSA public key
// returned by the getrsakey endpoint. Modulus and exponent are the
// hex-encoded values from the response.
func EncryptPassword(modulusHex, exponentHex, password string) (string, error) {
	n, ok := new(big.Int).SetString(modulusHex, 16)
	if !ok {
		return "", errors.New("invalid RSA modulus")
	}
	e, ok := new(big.Int).SetString(exponentHex, 16)
	if !ok {
		return "", errors.New("invalid RSA exponent")
	}
	pubKey := rsa.PublicKey{
		N: n,
		E: int(e.Int64()),
	}
	encrypted, err := rsa.EncryptPKCS1v15(rand.Reader, &pubKey, []byte(password))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(encrypted), nil
}

// GenerateSessionID returns a fresh random sessionid cookie value.
func GenerateSessionID() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateDeviceID returns a random mobile device identifier. Steam only
// requires the "android:" prefix and a UUID-shaped body; the value must be
// generated once per enrollment and then kept with the account's secrets.
func GenerateDeviceID() string {
	return "android:" + uuid.NewString()
}

// SetCookies stores cookies on the client's jar under the community domain,
// creating the jar if needed.
func SetCookies(client *http.Client, cookies []*http.Cookie) error {
	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return err
		}
		client.Jar = jar
	}
	communityURL, err := url.Parse(CommunityBase)
	if err != nil {
		return err
	}
	client.Jar.SetCookies(communityURL, cookies)
	return nil
}
