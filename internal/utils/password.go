package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash from a plain-text password.  The cost
// comes from BCRYPT_COST so test and development environments can trade
// hashing strength for speed.
func HashPassword(plain string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches the stored hash.  bcrypt
// compares in constant time and an empty or malformed hash never matches.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
