package playerjwt

// Verifier validates bearer tokens and extracts identity claims.
type Verifier interface {
	VerifyToken(tokenString string) (*Claims, error)
}
