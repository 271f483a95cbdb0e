package validation

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

var idRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

func NormalizeRoomID(roomID string) string {
	return strings.TrimSpace(roomID)
}

func ValidateRoomID(roomID string) bool {
	return idRe.MatchString(NormalizeRoomID(roomID))
}

func ValidateUserID(userID string) bool {
	return idRe.MatchString(strings.TrimSpace(userID))
}

// SnapshotCacheTTLSeconds reads SNAPSHOT_CACHE_TTL_SECONDS; cached room
// snapshots expire after this long.
func SnapshotCacheTTLSeconds() int {
	ttlStr := os.Getenv("SNAPSHOT_CACHE_TTL_SECONDS")
	if ttlStr == "" {
		return 600
	}
	ttl, err := strconv.Atoi(ttlStr)
	if err != nil || ttl < 1 {
		return 600
	}
	return ttl
}

// MaxIngestFrameBytes reads MAX_INGEST_FRAME_BYTES; larger ingest frames are
// rejected before decoding.
func MaxIngestFrameBytes() int {
	maxStr := os.Getenv("MAX_INGEST_FRAME_BYTES")
	if maxStr == "" {
		return 1 << 20
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1024 {
		return 1 << 20
	}
	return max
}
