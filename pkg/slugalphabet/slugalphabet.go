// Package slugalphabet defines the base-62 alphabet slugs and aliases
// are drawn from, and the cheap validity checks redirect-svc and
// write-svc run before touching any cache or store (spec.md §4.3's
// "Validation" step, §4.2's alias constraints).
package slugalphabet

const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var valid [256]bool

func init() {
	for i := 0; i < len(Alphabet); i++ {
		valid[Alphabet[i]] = true
	}
}

// Valid reports whether every byte of s is in the base-62 alphabet.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !valid[s[i]] {
			return false
		}
	}
	return true
}

// ValidSlug reports whether s is exactly length characters long and
// entirely within the base-62 alphabet — the short-circuit check
// redirect-svc runs before tier 1 (spec.md §4.3 "Validation").
func ValidSlug(s string, length int) bool {
	return len(s) == length && Valid(s)
}

// ValidAlias reports whether s is an acceptable custom alias: within
// the base-62 alphabet and within [minLen, maxLen] (spec.md §4.2).
func ValidAlias(s string, minLen, maxLen int) bool {
	return len(s) >= minLen && len(s) <= maxLen && Valid(s)
}
