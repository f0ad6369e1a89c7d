package uid

import (
	"crypto/rand"
	"math/big"
)

// Digits generates fixed-length numeric strings from crypto/rand, used for
// account numbers handed out to end users.
type Digits struct {
	length int
}

// NewDigits returns a generator producing strings of length numeric digits.
func NewDigits(length int) *Digits {
	return &Digits{length: length}
}

// Generate returns a random digit string. The first digit is never zero so
// the value keeps its full length in any numeric representation.
func (d *Digits) Generate() string {
	buf := make([]byte, d.length)
	for i := range buf {
		lo := int64(0)
		if i == 0 {
			lo = 1
		}

		n, err := rand.Int(rand.Reader, big.NewInt(10-lo))
		if err != nil {
			// crypto/rand never fails on supported platforms
			buf[i] = '0' + byte(i%10)
			continue
		}
		buf[i] = '0' + byte(n.Int64()+lo)
	}

	return string(buf)
}
