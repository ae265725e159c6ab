package cipher

import (
	"fmt"

	"gitlab.com/otp-enc.net/internal/domain"
	"gitlab.com/otp-enc.net/internal/static/errs"
)

var _ ICipherService = &CipherService{}

// CipherService is stateless and safe for concurrent use.
type CipherService struct{}

func NewCipherService() *CipherService {
	return &CipherService{}
}

// Encrypt implements ICipherService
func (s *CipherService) Encrypt(plaintext, key []byte) ([]byte, error) {
	return transform(plaintext, key, 1)
}

// Decrypt implements ICipherService
func (s *CipherService) Decrypt(ciphertext, key []byte) ([]byte, error) {
	return transform(ciphertext, key, -1)
}

// transform validates both inputs completely before producing any output.
func transform(text, key []byte, sign int) ([]byte, error) {
	if len(key) < len(text) {
		return nil, fmt.Errorf("%w: key length %d, text length %d", errs.ErrKeyTooShort, len(key), len(text))
	}
	key = key[:len(text)]
	if i := domain.FirstInvalidSymbol(text); i >= 0 {
		return nil, fmt.Errorf("%w: text byte %q at offset %d", errs.ErrInvalidSymbol, text[i], i)
	}
	if i := domain.FirstInvalidSymbol(key); i >= 0 {
		return nil, fmt.Errorf("%w: key byte %q at offset %d", errs.ErrInvalidSymbol, key[i], i)
	}

	out := make([]byte, len(text))
	for i := range text {
		t, _ := domain.SymbolValue(text[i])
		k, _ := domain.SymbolValue(key[i])
		v := (t + sign*k) % domain.AlphabetSize
		if v < 0 {
			v += domain.AlphabetSize
		}
		out[i] = domain.SymbolFromValue(v)
	}
	return out, nil
}
