package generator

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
)

// Code returns a random lowercase hex code of the given length.
func Code(length int) (string, error) {
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}

// Token returns a random URL-safe token carrying size bytes of entropy.
func Token(size int) (string, error) {
	bytes := make([]byte, size)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
