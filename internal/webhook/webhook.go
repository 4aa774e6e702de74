// Package webhook verifies and processes GitHub push deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Headers set by GitHub on every delivery.
const (
	SignatureHeader = "X-Hub-Signature-256"
	EventHeader     = "X-GitHub-Event"
	DeliveryHeader  = "X-GitHub-Delivery"
)

const signaturePrefix = "sha256="

// Sentinel errors returned while handling a delivery.
var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMalformedPayload = errors.New("malformed payload")
)

// Sign returns the signature header value GitHub would send for payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks header against the HMAC-SHA256 of payload keyed by secret.
// A missing or malformed header fails verification.
func VerifySignature(secret string, payload []byte, header string) error {
	if header == "" || !strings.HasPrefix(header, signaturePrefix) {
		return ErrInvalidSignature
	}
	if !hmac.Equal([]byte(header), []byte(Sign(secret, payload))) {
		return ErrInvalidSignature
	}
	return nil
}
