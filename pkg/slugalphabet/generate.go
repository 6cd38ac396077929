package slugalphabet

import (
	"crypto/rand"
	"math/big"
)

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate draws one random slug of the given length uniformly from
// Alphabet using a cryptographically acceptable RNG (spec.md §4.1, §9
// "Randomness" — a weak PRNG shared across instances would cluster
// collisions).
func Generate(length int) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			panic(err)
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b)
}

// GenerateBatch draws n independent random slugs of the given length,
// de-duplicated (spec.md §4.1 step 5: "duplicates within a batch are
// de-duplicated before the store check").
func GenerateBatch(n, length int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		s := Generate(length)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
