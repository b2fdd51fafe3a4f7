package app

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dkeye/Duet/internal/domain"
)

type CodeGenerator interface {
	Generate() (domain.Code, error)
}

// RandomCodes draws codes from crypto/rand so an active code cannot be guessed
// from previous ones.
type RandomCodes struct {
	Alphabet string
	Length   int
}

func NewRandomCodes() RandomCodes {
	return RandomCodes{Alphabet: domain.CodeAlphabet, Length: domain.CodeLength}
}

func (g RandomCodes) Generate() (domain.Code, error) {
	size := big.NewInt(int64(len(g.Alphabet)))
	buf := make([]byte, g.Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		buf[i] = g.Alphabet[n.Int64()]
	}
	return domain.Code(buf), nil
}
