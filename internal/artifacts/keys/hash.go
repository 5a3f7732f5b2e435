package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

func SHA256Text(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func SHA256Bytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// SHA256JSON hashes the canonical encoding/json rendering of v (map keys sorted).
func SHA256JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return SHA256Bytes(b)
}
