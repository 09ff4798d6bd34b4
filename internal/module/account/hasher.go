package account

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// digestSeparator joins the normalized value and the salt.
// Existing invite records depend on it.
const digestSeparator = ":"

// Hasher binds values such as email addresses to a salted one-way digest.
type Hasher struct {
	salt string
}

// NewHasher creates a Hasher with a process-wide secret salt.
func NewHasher(salt string) *Hasher {
	return &Hasher{salt: salt}
}

// Digest returns hex(sha256(lower(trim(raw)) + ":" + salt)).
func (h *Hasher) Digest(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	sum := sha256.Sum256([]byte(normalized + digestSeparator + h.salt))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether raw digests to digest.
func (h *Hasher) Matches(digest, raw string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(h.Digest(raw))) == 1
}
