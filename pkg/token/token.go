// Package token signs small JSON payloads into compact URL-safe strings.
//
// A token is base64url(payload) + "." + base64url(signature), where the
// signature is the first 8 bytes of an HMAC-SHA256 over the raw payload.
// The truncated signature keeps tokens short enough for headers and query
// strings; it is meant for short-lived carriers such as tenant bootstrap
// and impersonation tokens, not for long-lived credentials.
//
// Expiry is the caller's concern: embed a timestamp in the payload and
// check it after ParseToken returns.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrSignatureInvalid = errors.New("signature mismatch")
)

const signatureLen = 8

func sign(data []byte, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return h.Sum(nil)[:signatureLen]
}

// GenerateToken encodes the payload as JSON and appends a truncated
// HMAC-SHA256 signature keyed with secret.
func GenerateToken[T any](payload T, secret string) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(data) +
		"." +
		base64.RawURLEncoding.EncodeToString(sign(data, secret)), nil
}

// ParseToken verifies the signature in constant time and decodes the JSON
// payload into T. The zero value of T is returned alongside any error.
func ParseToken[T any](tok string, secret string) (T, error) {
	var payload T

	raw, sig, ok := strings.Cut(tok, ".")
	if !ok {
		return payload, ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return payload, ErrInvalidToken
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return payload, ErrInvalidToken
	}

	if subtle.ConstantTimeCompare(got, sign(data, secret)) != 1 {
		return payload, ErrSignatureInvalid
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
