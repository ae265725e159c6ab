package keygen

// IKeyGenerator produces random keys over the 27-symbol alphabet
type IKeyGenerator interface {
	// Generate returns length symbols drawn uniformly and independently
	Generate(length int) ([]byte, error)
}
