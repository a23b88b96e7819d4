package crypto

import "crypto/rand"

const (
	nanoidAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	nanoidSize     = 22 // 22 * 6 = 132 bits of entropy, a shade over uuid's 128
)

// NanoID returns a 22-character URL-safe random identifier. It backs the
// unusable placeholder secrets minted for federated accounts.
//
// The alphabet has exactly 64 characters, so masking a byte with 63 maps
// uniformly with no rejection sampling.
func NanoID() (string, error) {
	bytes := make([]byte, nanoidSize)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	out := make([]byte, nanoidSize)
	for i, b := range bytes {
		out[i] = nanoidAlphabet[int(b)&63]
	}
	return string(out), nil
}
