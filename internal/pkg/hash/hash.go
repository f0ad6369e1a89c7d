package hash

// Hash abstracts a one-way hash with verification.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}
