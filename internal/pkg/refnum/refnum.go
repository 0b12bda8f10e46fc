package refnum

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	prefix    = "WC"
	alphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffixLen = 6

	// largest multiple of len(alphabet) below 256, for unbiased sampling
	randMax = 252
)

// Generate returns a reference number of the form WC-YYYYMMDD-XXXXXX.
// It does not check uniqueness against the store; the unique index on
// warranty_claims.reference_number is the actual guarantee, and a
// collision surfaces as a creation failure.
func Generate() string {
	return GenerateAt(time.Now())
}

// GenerateAt returns a reference number dated with the given time.
func GenerateAt(t time.Time) string {
	suffix := make([]byte, 0, suffixLen)
	buf := make([]byte, suffixLen)
	for len(suffix) < suffixLen {
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(fmt.Sprintf("refnum: rand.Read: %v", err))
		}
		for _, b := range buf {
			if b >= randMax || len(suffix) == suffixLen {
				continue
			}
			suffix = append(suffix, alphabet[int(b)%len(alphabet)])
		}
	}
	return fmt.Sprintf("%s-%s-%s", prefix, t.Format("20060102"), suffix)
}
