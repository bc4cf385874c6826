package guard

import (
	"encoding/base64"
	"encoding/binary"
	"net/url"
)

// maxTagLen is the longest tag the server's verifier hashes; longer
// tags are truncated, not rejected.
const maxTagLen = 32

// ConfirmationKey signs a confirmation request: HMAC-SHA1 over the
// 8-byte big-endian time followed by up to 32 bytes of the tag, keyed
// by the base64-encoded identity secret. The result is the base64
// digest, percent-encoded the way the mobileconf endpoints expect
// (quote_plus style, space as '+').
func ConfirmationKey(identitySecret, tag string, t int64) (string, error) {
	key, err := decodeSecret(identitySecret)
	if err != nil {
		return "", err
	}

	data := make([]byte, 8, 8+maxTagLen)
	binary.BigEndian.PutUint64(data, uint64(t))
	tagBytes := []byte(tag)
	if len(tagBytes) > maxTagLen {
		tagBytes = tagBytes[:maxTagLen]
	}
	data = append(data, tagBytes...)

	mac := hmacSHA1(key, data)
	return url.QueryEscape(base64.StdEncoding.EncodeToString(mac)), nil
}
