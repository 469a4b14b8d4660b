package port

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const (
	// MinPort is the lowest port Resolve can return.
	MinPort = 3000

	// Range is the number of distinct ports Resolve can return, so the
	// result always lies in [MinPort, MinPort+Range).
	Range = 1000

	// hashPrefixLen is how many hex characters of the digest are used.
	// Eight hex characters fit in a uint32, so the parse cannot overflow.
	hashPrefixLen = 8
)

// Resolve maps a directory path to a stable port in [3000, 3999].
//
// The path is hashed as-is; callers are expected to pass an absolute,
// symlink-resolved path so that every way of reaching the same directory
// lands on the same port.
func Resolve(dir string) int {
	sum := sha256.Sum256([]byte(dir))
	prefix := hex.EncodeToString(sum[:])[:hashPrefixLen]

	// The prefix is always valid hex of bounded length, so the error is
	// unreachable.
	n, _ := strconv.ParseUint(prefix, 16, 32)
	return MinPort + int(n%Range)
}
