// Package signature verifies HMAC-SHA256 signatures on inbound webhook
// requests.
//
// Two schemes are supported. Herald's own scheme signs "{timestamp}.{body}"
// and is sent as "v1=<hex>" alongside a timestamp header. GitHub's scheme
// signs the raw body and is sent as "sha256=<hex>".
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissing is returned when a signature or timestamp header is absent.
	ErrMissing = errors.New("signature: missing")

	// ErrMismatch is returned when a signature does not match the payload.
	ErrMismatch = errors.New("signature: mismatch")

	// ErrExpired is returned when a signed timestamp is outside the tolerance.
	ErrExpired = errors.New("signature: timestamp outside tolerance")
)

// Sign returns the herald signature "v1=<hex>" over "{timestamp}.{payload}".
func Sign(payload []byte, secret string, timestamp int64) string {
	content := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(content))
	return "v1=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a herald signature. A positive tolerance also rejects
// timestamps further than tolerance from now.
func Verify(payload []byte, secret, timestamp, sig string, tolerance time.Duration) error {
	if sig == "" || timestamp == "" {
		return ErrMissing
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp %q", ErrMismatch, timestamp)
	}
	if tolerance > 0 {
		skew := time.Since(time.Unix(ts, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > tolerance {
			return ErrExpired
		}
	}
	if !hmac.Equal([]byte(Sign(payload, secret, ts)), []byte(sig)) {
		return ErrMismatch
	}
	return nil
}

// SignGitHub returns GitHub's "sha256=<hex>" signature of payload.
func SignGitHub(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifyGitHub checks an X-Hub-Signature-256 header value.
func VerifyGitHub(payload []byte, secret, sig string) error {
	if sig == "" {
		return ErrMissing
	}
	if !strings.HasPrefix(sig, "sha256=") {
		return fmt.Errorf("%w: unsupported scheme", ErrMismatch)
	}
	if !hmac.Equal([]byte(SignGitHub(payload, secret)), []byte(sig)) {
		return ErrMismatch
	}
	return nil
}
