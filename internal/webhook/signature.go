// Package webhook verifies payment-provider webhook signatures. The body
// is signed with HMAC-SHA256 and compared constant-time; verification runs
// before any payload parsing so parsing never sees unverified input.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// SignatureHeader is the provider's signature header name
const SignatureHeader = "X-Webhook-Signature"

var (
	// ErrMissingSignature is returned when the signature header is absent
	ErrMissingSignature = errors.New("missing webhook signature")
	// ErrInvalidSignature is returned when the signature does not match
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Sign computes the hex HMAC-SHA256 of body under secret
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the provider signature over the raw body. Comparison is
// constant-time via hmac.Equal.
func Verify(secret string, body []byte, signature string) error {
	if signature == "" {
		return ErrMissingSignature
	}

	expected, err := hex.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), expected) {
		return ErrInvalidSignature
	}
	return nil
}
