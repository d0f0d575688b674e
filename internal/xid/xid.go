package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns a prefixed, time-ordered identifier with a random suffix.
func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}

// Number builds a human-facing document number such as an invoice or
// purchase-order number: prefix, compact timestamp, short random tail.
func Number(prefix string, at time.Time) string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%s", prefix, at.Format("20060102150405"))
	}
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102150405"), hex.EncodeToString(buf))
}
