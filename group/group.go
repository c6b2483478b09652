// Package group implements the class group of primitive binary quadratic
// forms of a fixed negative discriminant: a group of unknown order used as
// the algebraic substrate for verifiable delay functions and trustless
// accumulators.
//
// A ClassGroup owns one discriminant D < 0, D ≡ 1 (mod 4). Its elements are
// reduced primitive forms (a, b, c) with b²-4ac = D, represented by the
// immutable Form type: every operation returns a freshly reduced form and
// never mutates its operands, so all arithmetic may be called concurrently
// without synchronization. The only shared mutable state in the package is
// the explicit PowCache.
package group

import (
	"fmt"
	"math/big"
)

// ClassGroup is a class group instance for one fixed discriminant.
type ClassGroup struct {
	discriminant *big.Int
	// partialBound is ⌊|D/4|^(1/4)⌋, the early-stop threshold handed to the
	// partial extended gcd inside NUCOMP and NUDUPL.
	partialBound *big.Int
}

// NewClassGroup returns the class group of the given discriminant, which
// must be negative and ≡ 1 (mod 4).
func NewClassGroup(discriminant *big.Int) (*ClassGroup, error) {
	if discriminant == nil || discriminant.Sign() >= 0 {
		return nil, fmt.Errorf("discriminant must be negative: %w", ErrInvalidDiscriminant)
	}
	if new(big.Int).Mod(discriminant, four).Cmp(one) != 0 {
		return nil, fmt.Errorf("discriminant must be 1 mod 4: %w", ErrInvalidDiscriminant)
	}

	bound := new(big.Int).Neg(discriminant)
	bound.Rsh(bound, 2)
	bound.Sqrt(bound.Sqrt(bound))
	if bound.Sign() == 0 {
		bound.SetInt64(1)
	}

	return &ClassGroup{
		discriminant: new(big.Int).Set(discriminant),
		partialBound: bound,
	}, nil
}

// NewClassGroupFromSeed derives a discriminant of the requested bit length
// from seed and returns the group together with its seed-derived generator
// form.
func NewClassGroupFromSeed(seed []byte, bits int, opts ...DeriveOption) (*ClassGroup, *Form, error) {
	d, err := DeriveDiscriminant(seed, bits, opts...)
	if err != nil {
		return nil, nil, err
	}
	g, err := NewClassGroup(d)
	if err != nil {
		return nil, nil, err
	}
	gen, err := g.HashToForm(seed)
	if err != nil {
		return nil, nil, err
	}
	return g, gen, nil
}

// Discriminant returns a copy of the group's discriminant.
func (g *ClassGroup) Discriminant() *big.Int {
	return new(big.Int).Set(g.discriminant)
}

// Equal reports whether h is a class group of the same discriminant.
func (g *ClassGroup) Equal(h *ClassGroup) bool {
	if g == h {
		return true
	}
	if h == nil {
		return false
	}
	return g.discriminant.Cmp(h.discriminant) == 0
}

// Identity returns the principal form (1, 1, (1-D)/4), the neutral element.
func (g *ClassGroup) Identity() *Form {
	c := new(big.Int).Sub(one, g.discriminant)
	c.Rsh(c, 2)
	return &Form{
		a: big.NewInt(1),
		b: big.NewInt(1),
		c: c,
		g: g,
	}
}

// Generator returns the conventional base point (2, 1, (1-D)/8). It exists
// only for discriminants ≡ 1 (mod 8), which includes every discriminant
// produced by DeriveDiscriminant. Callers wanting a base point with an
// unknown relation to other elements should prefer HashToForm.
func (g *ClassGroup) Generator() (*Form, error) {
	c := new(big.Int).Sub(one, g.discriminant)
	if c.TrailingZeroBits() < 3 {
		return nil, fmt.Errorf("no (2, 1) form for discriminant %s mod 8: %w",
			new(big.Int).Mod(g.discriminant, eight).String(), ErrInvalidDiscriminant)
	}
	c.Rsh(c, 3)
	f := &Form{a: big.NewInt(2), b: big.NewInt(1), c: c, g: g}
	return f.reduced(), nil
}

// check validates that f belongs to this group.
func (g *ClassGroup) check(f *Form) error {
	if f == nil || f.g == nil {
		return fmt.Errorf("nil form: %w", ErrInvalidArgument)
	}
	if !g.Equal(f.g) {
		return fmt.Errorf("form of discriminant %s used under %s: %w",
			f.g.discriminant.String(), g.discriminant.String(), ErrDiscriminantMismatch)
	}
	return nil
}

var (
	one   = big.NewInt(1)
	four  = big.NewInt(4)
	eight = big.NewInt(8)
)
