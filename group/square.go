package group

import (
	"fmt"
	"math/big"

	"github.com/3for/classygroup/arith"
)

// Square returns the reduced square x*x via NUDUPL, the squaring
// specialization of NUCOMP. The partial extended gcd stops near |D|^(1/4),
// so the form fed to reduction already has coefficients close to reduced
// size instead of |D|-sized ones.
func (g *ClassGroup) Square(x *Form) (*Form, error) {
	if err := g.check(x); err != nil {
		return nil, err
	}

	// y*b ≡ gg (mod a) with gg = gcd(a, b).
	gg, y, _ := arith.ExtendedGCD(x.b, x.a)
	capA := new(big.Int).Quo(x.a, gg)
	k := new(big.Int).Mul(y, x.c)
	k.Mod(k, capA)

	if capA.Cmp(g.partialBound) <= 0 {
		// Small leading coefficient: the direct duplication formulas
		// are already cheap.
		a3 := new(big.Int).Mul(capA, capA)
		b3 := new(big.Int).Mul(capA, k)
		b3.Lsh(b3, 1)
		b3.Sub(x.b, b3)
		c3 := new(big.Int).Quo(x.b, gg)
		c3.Mul(c3, k)
		c3.Sub(c3, x.c)
		c3, r := c3.QuoRem(c3, capA, new(big.Int))
		if r.Sign() != 0 {
			return nil, fmt.Errorf("nudupl direct c not integral: %w", ErrInternal)
		}
		c3.Mul(c3, gg)
		c3.Sub(new(big.Int).Mul(k, k), c3)
		f := &Form{a: a3, b: b3, c: c3, g: g}
		return f.reduced(), nil
	}

	r2, r1, co2, co1, sign, err := arith.PartialExtendedGCD(capA, k, g.partialBound)
	if err != nil {
		return nil, fmt.Errorf("nudupl partial gcd: %w", ErrInternal)
	}

	gc := new(big.Int).Mul(gg, x.c)
	w1 := new(big.Int).Mul(x.b, r1)
	w1.Add(w1, new(big.Int).Mul(gc, co1))
	w1, rem := w1.QuoRem(w1, capA, new(big.Int))
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("nudupl w1 not integral: %w", ErrInternal)
	}
	w2 := new(big.Int).Mul(x.b, r2)
	w2.Add(w2, new(big.Int).Mul(gc, co2))
	w2, rem = w2.QuoRem(w2, capA, rem)
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("nudupl w2 not integral: %w", ErrInternal)
	}

	a3 := new(big.Int).Mul(r1, r1)
	a3.Add(a3, new(big.Int).Mul(co1, w1))
	if a3.Sign() <= 0 {
		return nil, fmt.Errorf("nudupl produced non-positive a: %w", ErrInternal)
	}
	b3 := new(big.Int).Mul(r1, r2)
	b3.Lsh(b3, 1)
	b3.Add(b3, new(big.Int).Mul(co1, w2))
	b3.Add(b3, new(big.Int).Mul(co2, w1))
	if sign > 0 {
		b3.Neg(b3)
	}
	c3, err := g.completeC(a3, b3)
	if err != nil {
		return nil, err
	}
	f := &Form{a: a3, b: b3, c: c3, g: g}
	return f.reduced(), nil
}
