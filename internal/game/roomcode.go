package game

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// DefaultCodeLength is the length of generated room codes.
const DefaultCodeLength = 6

// codeAlphabet leaves out characters that are easy to misread (I, O, 0, 1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NormalizeCode returns the canonical form of a client supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GenerateCode returns a random room code of n characters.
func GenerateCode(n int) (string, error) {
	out := make([]byte, n)
	for i := range out {
		x, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[x.Int64()]
	}
	return string(out), nil
}
