package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewClientID returns a correlation identifier for a submission, e.g.
// CLI-1735689600000-4K7QZ2. Uniqueness is probabilistic; the client table's
// unique constraint is the backstop and fails loudly on collision.
func NewClientID() string {
	return newPrefixedID("CLI")
}

// NewDraftID returns an identifier for a draft, e.g. DRAFT-1735689600000-9XB31F.
func NewDraftID() string {
	return newPrefixedID("DRAFT")
}

func newPrefixedID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), randomSuffix(6))
}

func randomSuffix(n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// fall back to a time-derived character rather than panic.
			b.WriteByte(idAlphabet[time.Now().Nanosecond()%len(idAlphabet)])
			continue
		}
		b.WriteByte(idAlphabet[idx.Int64()])
	}
	return b.String()
}
