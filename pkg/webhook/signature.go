package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body, with an
// optional "sha256=" prefix.
const SignatureHeader = "X-Signature-256"

const signaturePrefix = "sha256="

// Sign returns the SignatureHeader value for payload.
func Sign(secret string, payload []byte) string {
	return signaturePrefix + hex.EncodeToString(generateMAC(secret, payload))
}

// verifySignature reports whether signature matches payload.
func verifySignature(secret string, payload []byte, signature string) bool {
	signatureBytes, err := hex.DecodeString(strings.TrimPrefix(signature, signaturePrefix))
	if err != nil {
		return false
	}
	return hmac.Equal(signatureBytes, generateMAC(secret, payload))
}

func generateMAC(secret string, payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}
