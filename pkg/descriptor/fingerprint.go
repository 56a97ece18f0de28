package descriptor

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint hashes the ordered references so that two declarations
// produce the same value only when they list the same packages in the same
// order with the same overrides.
func Fingerprint(refs []Reference) string {
	h := blake3.New()
	for _, ref := range refs {
		h.Write([]byte(ref.Name))
		h.Write([]byte{0})
		h.Write([]byte(ref.LibDir))
		h.Write([]byte{0})
		if ref.NoLibs {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
