package keygen

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"gitlab.com/otp-enc.net/internal/domain"
	"gitlab.com/otp-enc.net/internal/static/errs"
)

var _ IKeyGenerator = &KeyGenerator{}

type KeyGenerator struct {
	random io.Reader
}

// NewKeyGenerator uses crypto/rand when random is nil.
func NewKeyGenerator(random io.Reader) *KeyGenerator {
	if random == nil {
		random = rand.Reader
	}
	return &KeyGenerator{random: random}
}

// Generate implements IKeyGenerator
func (g *KeyGenerator) Generate(length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: key length must not be negative, got %d", errs.ErrUsage, length)
	}

	alphabet := big.NewInt(domain.AlphabetSize)
	key := make([]byte, length)
	for i := range key {
		v, err := rand.Int(g.random, alphabet)
		if err != nil {
			return nil, fmt.Errorf("failed to read random source: %w", err)
		}
		key[i] = domain.SymbolFromValue(int(v.Int64()))
	}
	return key, nil
}
