package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks callback signatures issued by the processor.
type Verifier struct {
	secret string
}

// NewVerifier creates a verifier for the shared key secret.
func NewVerifier(secret string) Verifier {
	return Verifier{secret: secret}
}

// Sign returns the hex HMAC-SHA256 of "remoteOrderID|paymentID".
func (v Verifier) Sign(paymentID, remoteOrderID string) string {
	return hex.EncodeToString(v.mac(paymentID, remoteOrderID))
}

// Verify reports whether signature matches the pair. The signature must be
// the exact lowercase hex digest; malformed input is rejected rather than
// reported as an error.
func (v Verifier) Verify(paymentID, remoteOrderID, signature string) bool {
	if v.secret == "" || paymentID == "" || remoteOrderID == "" {
		return false
	}
	if len(signature) != hex.EncodedLen(sha256.Size) {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(v.Sign(paymentID, remoteOrderID)))
}

func (v Verifier) mac(paymentID, remoteOrderID string) []byte {
	h := hmac.New(sha256.New, []byte(v.secret))
	h.Write([]byte(remoteOrderID + "|" + paymentID))
	return h.Sum(nil)
}
