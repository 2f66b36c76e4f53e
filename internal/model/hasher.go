package model

// Hasher is a one-way salted hash with verification.
type Hasher interface {
	Hash(secret string) (string, error)
	// Compare reports whether secret matches hash. A mismatch is not an error.
	Compare(secret, hash string) (bool, error)
}
