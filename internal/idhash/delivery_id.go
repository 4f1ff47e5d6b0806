package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeDeliveryID computes a deterministic push-delivery dedupe key using SHA256.
// Formula: SHA256(challenge_id|user_id|type)
// Returns hex-encoded hash (64 characters).
func ComputeDeliveryID(challengeID, userID, notificationType string) string {
	data := fmt.Sprintf("%s|%s|%s", challengeID, userID, notificationType)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
