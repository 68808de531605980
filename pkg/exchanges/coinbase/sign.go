package coinbase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
)

// DecodeSecret decodes the base64-encoded API secret into the raw HMAC key.
// A malformed secret is a configuration error and must be rejected at client
// construction, not when the first request is signed.
func DecodeSecret(secret string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, interfaces.NewInternalError("malformed API secret: not valid base64", err)
	}
	return key, nil
}

// Sign computes the request signature the exchange expects: HMAC-SHA256 over
// timestamp||method||path||body keyed with the decoded secret, base64-encoded.
// The timestamp is unix seconds rendered as a decimal string and must be
// captured at signing time; the exchange rejects stale or skewed timestamps.
//
// Sign is deterministic and performs no I/O.
func Sign(secret []byte, timestamp, method, path, body string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp + method + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
