package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrBadSignature marks a delivery whose HMAC did not verify. Handlers
// treat it as a security event, not a client mistake.
var ErrBadSignature = errors.New("webhook: signature verification failed")

const signaturePrefix = "sha512="

// Sign computes the signature header value for rawBody under secret.
func Sign(rawBody, secret []byte) string {
	mac := hmac.New(sha512.New, secret)
	mac.Write(rawBody)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the HMAC-SHA512 over the exact raw bytes and
// compares in constant time. It runs before any JSON parsing.
func VerifySignature(rawBody []byte, provided string, secret []byte) bool {
	if !strings.HasPrefix(provided, signaturePrefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(provided, signaturePrefix))
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, secret)
	mac.Write(rawBody)
	return hmac.Equal(got, mac.Sum(nil))
}
