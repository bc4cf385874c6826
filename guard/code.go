// Package guard derives Steam Guard login codes and confirmation keys
// from an account's shared and identity secrets.
package guard

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
)

// codeChars is the alphabet Steam uses for guard codes.
var codeChars = []byte("23456789BCDFGHJKMNPQRTVWXY")

const (
	codeLength = 5
	// codePeriod is the lifetime of one login code in seconds.
	codePeriod = 30
)

// Code returns the 5-character login code for the base64-encoded shared
// secret at Unix time t. The code is a pure function of the secret and
// the 30-second time step.
func Code(sharedSecret string, t int64) (string, error) {
	key, err := decodeSecret(sharedSecret)
	if err != nil {
		return "", err
	}

	var step [8]byte
	binary.BigEndian.PutUint64(step[:], uint64(t/codePeriod))

	mac := hmacSHA1(key, step[:])

	// The low nibble of the last MAC byte selects the 4-byte window;
	// the sign bit is masked off.
	start := int(mac[len(mac)-1] & 0x0f)
	full := binary.BigEndian.Uint32(mac[start:start+4]) & 0x7fffffff

	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeChars[full%uint32(len(codeChars))]
		full /= uint32(len(codeChars))
	}
	return string(code), nil
}

// SecondsRemaining reports how long the code for Unix time t stays
// valid. Always in [1,30].
func SecondsRemaining(t int64) int {
	return codePeriod - int(t%codePeriod)
}

func decodeSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

func hmacSHA1(key, data []byte) []byte {
	mac := hmac.New(sha1.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
