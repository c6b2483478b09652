package group

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/cloudflare/circl/xof"
	"github.com/ing-bank/zkrp/util/byteconversion"

	"github.com/3for/classygroup/arith"
)

const (
	// hashToFormAttempts bounds the rejection sampling; each attempt
	// succeeds with probability near 1/(2 ln a), so the bound is never
	// reached in practice.
	hashToFormAttempts = 1 << 16
	// hashPrimeBits is the size of primes produced by HashToPrime, the
	// standard challenge size for class group proofs of exponentiation.
	hashPrimeBits = 128
)

// HashToForm maps msg deterministically to a group element whose discrete
// relation to any other element is unknown. It rejection-samples a prime
// a ≡ 3 (mod 4) of about half the discriminant's bits with (D/a) = 1, lifts
// the square root of D mod a to an odd b, and reduces (a, b, (b²-D)/(4a)).
func (g *ClassGroup) HashToForm(msg []byte) (*Form, error) {
	aBits := (g.discriminant.BitLen() + 1) / 2
	if aBits < 16 {
		aBits = 16
	}
	aBytes := (aBits + 7) / 8
	buf := make([]byte, aBytes)
	var counter [4]byte

	for i := 0; i < hashToFormAttempts; i++ {
		binary.BigEndian.PutUint32(counter[:], uint32(i))
		h := xof.SHAKE256.New()
		h.Write(msg)
		h.Write(counter[:])
		h.Read(buf)

		a := new(big.Int).SetBytes(buf)
		a.Rsh(a, uint(8*aBytes-aBits))
		a.SetBit(a, aBits-1, 1)
		a.SetBit(a, 0, 1)
		a.SetBit(a, 1, 1)
		if !a.ProbablyPrime(20) {
			continue
		}
		dModA := new(big.Int).Mod(g.discriminant, a)
		if sym, err := arith.Jacobi(dModA, a); err != nil || sym != 1 {
			continue
		}
		b, err := arith.SqrtModPrime(dModA, a)
		if err != nil {
			return nil, fmt.Errorf("square root for residue mod %s: %w", a.String(), ErrInternal)
		}
		if b.Bit(0) == 0 {
			b.Sub(a, b)
		}
		c, err := g.completeC(a, b)
		if err != nil {
			return nil, err
		}
		f := &Form{a: a, b: b, c: c, g: g}
		return f.reduced(), nil
	}
	return nil, fmt.Errorf("no candidate prime in %d attempts: %w", hashToFormAttempts, ErrDerivationExhausted)
}

// HashToPrime maps msg deterministically to a 128-bit probable prime, the
// Fiat-Shamir challenge for Wesolowski proofs over this group.
func HashToPrime(msg []byte) (*big.Int, error) {
	var counter [2]byte
	for i := 0; i < hashToFormAttempts; i++ {
		binary.BigEndian.PutUint16(counter[:], uint16(i))
		digest := sha256.New()
		digest.Write(msg)
		digest.Write(counter[:])
		output := digest.Sum(nil)

		t, err := byteconversion.FromByteArray(output[:hashPrimeBits/8])
		if err != nil {
			return nil, fmt.Errorf("challenge digest conversion: %w", ErrInternal)
		}
		t.SetBit(t, hashPrimeBits-1, 1)
		t.SetBit(t, 0, 1)
		if t.ProbablyPrime(20) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no challenge prime in %d attempts: %w", hashToFormAttempts, ErrDerivationExhausted)
}
