package authcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Ambiguous characters (0/O, 1/I/L) are excluded so codes survive being read
// over the phone.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const codeLength = 10

// NewCode generates an authorization code of the form AUTH-XXXXXXXXXX.
// Uniqueness is probabilistic; the service checks the table and retries.
func NewCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			panic(fmt.Sprintf("authcode: code generation: %v", err))
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return "AUTH-" + string(buf)
}
