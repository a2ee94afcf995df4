package hash

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

type Hash struct {
	data []byte
}

func NewHash(data []byte) Hash {
	return Hash{data: data}
}

func (h Hash) ComputeHash() string {
	sum := sha256.Sum256(h.data)
	return fmt.Sprintf("%x", sum)
}

// ItemID derives a stable feed entry id from an article link, so readers
// recognise the same story across refreshes.
func ItemID(link string) string {
	return "urn:newsly:" + NewHash([]byte(strings.TrimSpace(link))).ComputeHash()[:32]
}
