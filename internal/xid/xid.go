// Package xid generates opaque, time-ordered identifiers. The store
// stamps one on every backup export so a snapshot can be traced
// through logs and round trips.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const randomBytes = 8

// New returns "<prefix>-<unixnano>-<random hex>". If the random source
// fails the timestamp alone still makes the id unique enough for
// tracing.
func New(prefix string) string {
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}
