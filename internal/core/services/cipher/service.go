package cipher

// ICipherService defines the one-time-pad transform over the 27-symbol alphabet
type ICipherService interface {
	// Encrypt adds key to plaintext symbol by symbol, modulo 27.
	// Only the first len(plaintext) key symbols are used.
	Encrypt(plaintext, key []byte) ([]byte, error)

	// Decrypt subtracts key from ciphertext symbol by symbol, modulo 27.
	Decrypt(ciphertext, key []byte) ([]byte, error)
}
