package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// SignatureValidator checks the x-signature header on inbound provider
// notifications.
//
// The header carries: ts=<timestamp>,v1=<signature> where the signature is
// HMAC-SHA256 of: id:<event id>;request-id:<x-request-id>;ts:<timestamp>;
type SignatureValidator struct {
	secret string
}

func NewSignatureValidator(secret string) *SignatureValidator {
	return &SignatureValidator{secret: secret}
}

func (v *SignatureValidator) Validate(xSignature, xRequestID, eventID string) bool {
	if xSignature == "" || v.secret == "" {
		return false
	}

	ts, hash := parseSignatureHeader(xSignature)
	if ts == "" || hash == "" {
		return false
	}

	manifest := buildManifest(eventID, xRequestID, ts)
	expected := calculateHMAC(manifest, v.secret)

	return hmac.Equal([]byte(hash), []byte(expected))
}

func parseSignatureHeader(header string) (ts, hash string) {
	tsRegex := regexp.MustCompile(`ts=([^,]+)`)
	v1Regex := regexp.MustCompile(`v1=([^,]+)`)

	if m := tsRegex.FindStringSubmatch(header); len(m) > 1 {
		ts = m[1]
	}
	if m := v1Regex.FindStringSubmatch(header); len(m) > 1 {
		hash = m[1]
	}

	return ts, hash
}

func buildManifest(eventID, requestID, ts string) string {
	var parts []string

	if eventID != "" {
		parts = append(parts, "id:"+eventID)
	}
	if requestID != "" {
		parts = append(parts, "request-id:"+requestID)
	}
	if ts != "" {
		parts = append(parts, "ts:"+ts)
	}

	return strings.Join(parts, ";") + ";"
}

func calculateHMAC(manifest, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(manifest))
	return hex.EncodeToString(h.Sum(nil))
}
