package arith

import (
	"github.com/bits-and-blooms/bitset"
)

// PrimesBelow returns the odd primes less than n, ascending. The sieve of
// Eratosthenes runs on a bitset, so the 2^16 table the discriminant wheel
// needs costs a few kilobytes.
func PrimesBelow(n uint64) []uint64 {
	if n < 3 {
		return nil
	}
	composite := bitset.New(uint(n))
	for i := uint64(3); i*i < n; i += 2 {
		if composite.Test(uint(i)) {
			continue
		}
		for j := i * i; j < n; j += 2 * i {
			composite.Set(uint(j))
		}
	}
	primes := make([]uint64, 0, n/8)
	for i := uint64(3); i < n; i += 2 {
		if !composite.Test(uint(i)) {
			primes = append(primes, i)
		}
	}
	return primes
}
