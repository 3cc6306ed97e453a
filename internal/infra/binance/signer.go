package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Signer produces Binance-style request signatures: HMAC-SHA256 over
// the encoded query string, rendered as lowercase hex. The secret is
// held as []byte to allow memory wiping.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner creates a signer for the given API secret.
func NewSigner(secret []byte) *Signer {
	return &Signer{
		secret: secret,
		now:    time.Now,
	}
}

// Sign computes the signature over the exact serialization of params.
func (s *Signer) Sign(params *Params) string {
	return s.hmacHex(params.Encode())
}

// PrepareSigned returns a copy of params with the current timestamp
// (Unix milliseconds) appended and a signature computed over the
// resulting set. The signature field itself is never signed.
func (s *Signer) PrepareSigned(params *Params) *Params {
	signed := params.Clone()
	signed.Add("timestamp", strconv.FormatInt(s.now().UnixMilli(), 10))
	signed.Add("signature", s.Sign(signed))
	return signed
}

// Wipe clears the secret from memory.
func (s *Signer) Wipe() {
	if s == nil {
		return
	}
	for i := range s.secret {
		s.secret[i] = 0
	}
}

func (s *Signer) hmacHex(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
