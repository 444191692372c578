// Package xid generates prefixed, human-scannable record ids such as
// "sale-1724835600123456789-a1b2c3d4e5f60718". The prefix tells an
// operator what table a stray id belongs to.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const randomBytes = 8

func New(prefix string) string {
	now := time.Now().UnixNano()
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		// Timestamp alone still gives a usable, roughly unique id.
		return fmt.Sprintf("%s-%d", prefix, now)
	}
	return fmt.Sprintf("%s-%d-%s", prefix, now, hex.EncodeToString(buf))
}
