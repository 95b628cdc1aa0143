package signature

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecret creates a random shared secret for producers.
// Format: "hsec_" + 32 bytes hex.
func GenerateSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("herald: failed to generate random secret: " + err.Error())
	}
	return "hsec_" + hex.EncodeToString(b)
}
