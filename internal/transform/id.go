package transform

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// randomSuffix returns a value in [0, 0xFFFFFF).
func randomSuffix() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint32(time.Now().UnixNano()) % 0xFFFFFF
	}
	return binary.BigEndian.Uint32(b[:]) % 0xFFFFFF
}

// newID formats "YYYYMMDD_HHMMSS_xxxxxx". Two calls in the same second
// collide with probability 1/0xFFFFFF; that is accepted.
func newID(now time.Time, suffix uint32) string {
	return fmt.Sprintf("%s_%06x", now.Format("20060102_150405"), suffix%0xFFFFFF)
}
