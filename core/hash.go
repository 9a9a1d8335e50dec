package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Proof-of-work parameters. Difficulty is fixed, not adaptive.
const (
	// GenesisProof seeds the chain; the first mined proof is searched
	// against it.
	GenesisProof uint64 = 100

	// GenesisPrevHash is the placeholder previous-hash of block 1.
	GenesisPrevHash = "1"

	// proofTargetPrefix is the hex prefix a valid proof hash must carry:
	// four zero nibbles, so roughly one candidate in 65536 satisfies it.
	proofTargetPrefix = "0000"
)

// BlockDigest computes the SHA-256 digest of the block's canonical JSON
// form. encoding/json emits struct fields in declaration order and map keys
// sorted, so equivalent blocks serialize identically regardless of metadata
// insertion order.
func BlockDigest(b Block) string {
	data, _ := json.Marshal(b)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ValidProof reports whether candidate is a valid successor proof for
// lastProof: sha256 of the two decimal values concatenated must start with
// the target prefix.
func ValidProof(lastProof, candidate uint64) bool {
	guess := fmt.Sprintf("%d%d", lastProof, candidate)
	sum := sha256.Sum256([]byte(guess))
	return strings.HasPrefix(hex.EncodeToString(sum[:]), proofTargetPrefix)
}
