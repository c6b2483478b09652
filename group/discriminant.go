package group

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"math/big"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/crypto/blake2b"

	"github.com/3for/classygroup/arith"
	"github.com/3for/classygroup/logger"
)

const (
	// wheel = 8*3*5*7*11*13. Candidates are placed on residues coprime to
	// the wheel and ≡ 7 (mod 8), so every derived discriminant is
	// ≡ 1 (mod 8).
	wheel = 120120
	// sieveSpan is the number of wheel steps sieved per block.
	sieveSpan = 1 << 16
	// maxBlocks bounds the search; 64 blocks cover far more candidates
	// than the prime gaps at any supported bit length require.
	maxBlocks = 64
)

type deriveConfig struct {
	newHash func() hash.Hash
}

// DeriveOption customizes DeriveDiscriminant.
type DeriveOption func(*deriveConfig)

// WithDigest replaces the SHA-256 digest used to expand the seed. Callers
// that change the digest derive a different, but equally deterministic,
// discriminant for the same seed.
func WithDigest(newHash func() hash.Hash) DeriveOption {
	return func(c *deriveConfig) { c.newHash = newHash }
}

// WithBlake2b selects BLAKE2b-256 as the seed expansion digest.
func WithBlake2b() DeriveOption {
	return WithDigest(func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	})
}

var (
	wheelOnce     sync.Once
	wheelResidues []int64
	sievePairs    []sievePair
	bigWheel      = big.NewInt(wheel)
	blockStride   = new(big.Int).Lsh(big.NewInt(wheel), 16)
)

// sievePair carries an odd prime p outside the wheel and q = wheel⁻¹ mod p,
// so the first sieve index hit by p is a single mulmod away.
type sievePair struct {
	p, q uint64
}

func wheelTables() ([]int64, []sievePair) {
	wheelOnce.Do(func() {
		for x := int64(7); x < wheel; x += 8 {
			if x%3 != 0 && x%5 != 0 && x%7 != 0 && x%11 != 0 && x%13 != 0 {
				wheelResidues = append(wheelResidues, x)
			}
		}
		m := big.NewInt(wheel)
		pBig := new(big.Int)
		for _, p := range arith.PrimesBelow(sieveSpan) {
			if p <= 13 {
				continue
			}
			q, err := arith.ModInverse(m, pBig.SetUint64(p))
			if err != nil {
				continue
			}
			sievePairs = append(sievePairs, sievePair{p: p, q: q.Uint64()})
		}
	})
	return wheelResidues, sievePairs
}

// expandSeed stretches seed to n bytes by concatenating digests of
// seed || counter for a big-endian 16-bit counter starting at zero.
func expandSeed(newHash func() hash.Hash, seed []byte, n int) []byte {
	out := make([]byte, 0, n+32)
	var counter [2]byte
	for i := uint16(0); len(out) < n; i++ {
		binary.BigEndian.PutUint16(counter[:], i)
		h := newHash()
		h.Write(seed)
		h.Write(counter[:])
		out = h.Sum(out)
	}
	return out[:n]
}

// DeriveDiscriminant maps seed deterministically to a negative discriminant
// of exactly bits bits: -p for a probable prime p ≡ 7 (mod 8) with the top
// bit of p set, so the result is ≡ 1 (mod 8). bits must be at least 16.
//
// The candidate start point comes from a digest expansion of the seed,
// snapped onto a residue of the 8·3·5·7·11·13 wheel chosen by the
// expansion's trailing bytes; a sieve by all remaining primes below 2^16
// then filters each block of wheel steps before any Miller-Rabin work.
func DeriveDiscriminant(seed []byte, bits int, opts ...DeriveOption) (*big.Int, error) {
	if bits < 16 {
		return nil, fmt.Errorf("discriminant size %d below 16 bits: %w", bits, ErrInvalidArgument)
	}
	cfg := deriveConfig{newHash: sha256.New}
	for _, opt := range opts {
		opt(&cfg)
	}
	residues, pairs := wheelTables()

	extra := bits & 7
	byteCount := ((bits + 7) >> 3) + 2
	entropy := expandSeed(cfg.newHash, seed, byteCount)

	n := new(big.Int).SetBytes(entropy[:byteCount-2])
	n.Rsh(n, uint((8-extra)&7))
	n.SetBit(n, bits-1, 1)
	pick := int(binary.BigEndian.Uint16(entropy[byteCount-2:])) % len(residues)
	n.Sub(n, new(big.Int).Mod(n, bigWheel))
	n.Add(n, big.NewInt(residues[pick]))

	log := logger.Logger()
	pBig := new(big.Int)
	rem := new(big.Int)
	t := new(big.Int)
	mi := new(big.Int)
	for block := 0; block < maxBlocks; block++ {
		composite := bitset.New(sieveSpan)
		for _, pr := range pairs {
			r := rem.Mod(n, pBig.SetUint64(pr.p)).Uint64()
			// least i >= 0 with n + wheel*i ≡ 0 (mod p)
			i := (pr.p - r) % pr.p * pr.q % pr.p
			for ; i < sieveSpan; i += pr.p {
				composite.Set(uint(i))
			}
		}
		for i := uint(0); i < sieveSpan; i++ {
			if composite.Test(i) {
				continue
			}
			t.Mul(bigWheel, mi.SetUint64(uint64(i)))
			t.Add(t, n)
			if t.ProbablyPrime(20) {
				log.Debug().Int("bits", bits).Int("block", block).Uint("offset", i).
					Msg("derived discriminant")
				return new(big.Int).Neg(t), nil
			}
		}
		log.Debug().Int("bits", bits).Int("block", block).Msg("sieve block exhausted")
		n.Add(n, blockStride)
	}
	return nil, fmt.Errorf("no prime in %d sieve blocks: %w", maxBlocks, ErrDerivationExhausted)
}
