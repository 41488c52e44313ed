package claims

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewClaimReference generates a human-readable claim reference of the form
// CLM-<base36 timestamp>-<6 random base36 chars>, uppercased. Uniqueness is
// probabilistic; callers that need a guarantee check the table and retry.
func NewClaimReference() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceAlphabet))))
		if err != nil {
			// crypto/rand failing is unrecoverable for token generation
			panic(fmt.Sprintf("claims: reference generation: %v", err))
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}

	return fmt.Sprintf("CLM-%s-%s", ts, string(suffix))
}
