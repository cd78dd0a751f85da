package scenario

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"strings"
	"time"
)

// RandomSeed turns the scenario seed into a math/rand seed. Integers are used as is,
// other text is hashed and an empty seed falls back to now.
func (s *Scenario) RandomSeed(now func() time.Time) int64 {
	raw := ""
	if s != nil {
		raw = strings.TrimSpace(s.Seed)
	}
	if raw == "" {
		if now == nil {
			now = time.Now
		}
		return now().UnixNano()
	}
	if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return value
	}
	return hashSeed(raw)
}

// hashSeed derives a non-zero seed from the first bytes of a SHA-256 digest.
func hashSeed(text string) int64 {
	digest := sha256.Sum256([]byte("tankduel.match\x00" + text))
	for offset := 0; offset+8 <= len(digest); offset += 8 {
		if seed := int64(binary.LittleEndian.Uint64(digest[offset : offset+8])); seed != 0 {
			return seed
		}
	}
	return 1
}
