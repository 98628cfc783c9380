package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"token-holder-lab/internal/domain"
)

// ComputeSnapshotID computes a deterministic snapshot_id using SHA256.
// Formula: SHA256(token|chain|taken_at|holder_count)
// Returns hex-encoded hash (64 characters).
func ComputeSnapshotID(token string, chain domain.Chain, takenAt int64, holderCount int) string {
	data := fmt.Sprintf("%s|%s|%d|%d",
		domain.NormalizeAddress(token),
		chain,
		takenAt,
		holderCount,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
