package group

import (
	"fmt"
	"math/big"

	"github.com/3for/classygroup/arith"
)

// Compose returns the reduced composition x*y. Equal operands are routed to
// Square. When gcd(a1, a2) = 1, which is the common case for forms produced
// by HashToForm and repeated composition, the NUCOMP path of Jacobson and
// van der Poorten keeps intermediates near |D|^(3/4); otherwise composition
// falls back to the textbook Gauss formulas.
func (g *ClassGroup) Compose(x, y *Form) (*Form, error) {
	if err := g.check(x); err != nil {
		return nil, err
	}
	if err := g.check(y); err != nil {
		return nil, err
	}
	if x.Equal(y) {
		return g.Square(x)
	}
	f1, f2 := x, y
	if f1.a.Cmp(f2.a) > 0 {
		f1, f2 = f2, f1
	}
	if arith.GCD(f1.a, f2.a).Cmp(one) != 0 {
		return g.composeGauss(f1, f2)
	}
	return g.nucomp(f1, f2)
}

// nucomp composes f1 and f2 with a1 <= a2 and gcd(a1, a2) = 1.
func (g *ClassGroup) nucomp(f1, f2 *Form) (*Form, error) {
	// ss = (b1+b2)/2, m = (b1-b2)/2; both halves are exact since b1, b2
	// are odd for an odd discriminant.
	ss := new(big.Int).Add(f1.b, f2.b)
	ss.Rsh(ss, 1)
	m := new(big.Int).Sub(f1.b, f2.b)
	m.Rsh(m, 1)

	// k solves a2*k ≡ m (mod a1).
	v, err := arith.ModInverse(new(big.Int).Mod(f2.a, f1.a), f1.a)
	if err != nil {
		return nil, fmt.Errorf("nucomp inverse with coprime operands failed: %w", ErrInternal)
	}
	k := v.Mul(v, m)
	k.Mod(k, f1.a)

	if f1.a.Cmp(g.partialBound) <= 0 {
		// Operands are already tiny relative to |D|^(1/4): compose
		// directly, reduction stays cheap.
		a3 := new(big.Int).Mul(f1.a, f2.a)
		b3 := new(big.Int).Mul(f2.a, k)
		b3.Lsh(b3, 1)
		b3.Add(b3, f2.b)
		c3 := new(big.Int).Mul(f2.a, k)
		c3.Add(c3, f2.b)
		c3.Mul(c3, k)
		c3.Add(c3, f2.c)
		c3, r := c3.QuoRem(c3, f1.a, new(big.Int))
		if r.Sign() != 0 {
			return nil, fmt.Errorf("nucomp direct c not integral: %w", ErrInternal)
		}
		f := &Form{a: a3, b: b3, c: c3, g: g}
		return f.reduced(), nil
	}

	r2, r1, co2, co1, sign, err := arith.PartialExtendedGCD(f1.a, k, g.partialBound)
	if err != nil {
		return nil, fmt.Errorf("nucomp partial gcd: %w", ErrInternal)
	}

	m1 := new(big.Int).Mul(f2.a, r1)
	m1.Add(m1, new(big.Int).Mul(m, co1))
	m1, rem := m1.QuoRem(m1, f1.a, new(big.Int))
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("nucomp m1 not integral: %w", ErrInternal)
	}
	m2 := new(big.Int).Mul(ss, r1)
	m2.Sub(m2, new(big.Int).Mul(f2.c, co1))
	m2, rem = m2.QuoRem(m2, f1.a, rem)
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("nucomp m2 not integral: %w", ErrInternal)
	}

	a3 := new(big.Int).Mul(r1, m1)
	a3.Sub(a3, new(big.Int).Mul(co1, m2))
	if a3.Sign() <= 0 {
		return nil, fmt.Errorf("nucomp produced non-positive a: %w", ErrInternal)
	}
	b3 := new(big.Int).Mul(r2, m1)
	b3.Sub(b3, new(big.Int).Mul(co2, m2))
	b3.Lsh(b3, 1)
	if sign < 0 {
		b3.Add(b3, f1.b)
		b3.Neg(b3)
	} else {
		b3.Sub(b3, f1.b)
	}
	c3, err := g.completeC(a3, b3)
	if err != nil {
		return nil, err
	}
	f := &Form{a: a3, b: b3, c: c3, g: g}
	return f.reduced(), nil
}

// composeGauss is the general composition law, valid for any pair of forms
// of the discriminant, used when the leading coefficients share a factor.
func (g *ClassGroup) composeGauss(f1, f2 *Form) (*Form, error) {
	gg := new(big.Int).Add(f1.b, f2.b)
	gg.Rsh(gg, 1)
	h := new(big.Int).Sub(f2.b, f1.b)
	h.Rsh(h, 1)
	w := arith.GCD(arith.GCD(f1.a, f2.a), gg)

	j := new(big.Int).Set(w)
	s := new(big.Int).Quo(f1.a, w)
	t := new(big.Int).Quo(f2.a, w)
	u := new(big.Int).Quo(gg, w)

	// k is the least non-negative solution of
	//   t*u*k ≡ h*u + s*c1 (mod s*t)
	// refined modulo s through a second congruence on the step.
	st := new(big.Int).Mul(s, t)
	rhs := new(big.Int).Mul(h, u)
	rhs.Add(rhs, new(big.Int).Mul(s, f1.c))
	k0, cf, err := arith.SolveCongruence(new(big.Int).Mul(t, u), rhs, st)
	if err != nil {
		return nil, fmt.Errorf("composition congruence unsolvable: %w", ErrInternal)
	}
	rhs2 := new(big.Int).Sub(h, new(big.Int).Mul(t, k0))
	n0, _, err := arith.SolveCongruence(new(big.Int).Mul(t, cf), rhs2, s)
	if err != nil {
		return nil, fmt.Errorf("composition refinement unsolvable: %w", ErrInternal)
	}
	// k is determined mod s*t; reduce before use, otherwise b3 comes out
	// quadratic in the operand size and reduction pays for it.
	k := new(big.Int).Mul(cf, n0)
	k.Add(k, k0)
	k.Mod(k, st)

	l := new(big.Int).Mul(t, k)
	l.Sub(l, h)
	l, rem := l.QuoRem(l, s, new(big.Int))
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("composition l not integral: %w", ErrInternal)
	}
	m := new(big.Int).Mul(t, u)
	m.Mul(m, k)
	m.Sub(m, new(big.Int).Mul(h, u))
	m.Sub(m, new(big.Int).Mul(s, f1.c))
	m, rem = m.QuoRem(m, st, rem)
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("composition m not integral: %w", ErrInternal)
	}

	a3 := st
	b3 := new(big.Int).Mul(j, u)
	b3.Sub(b3, new(big.Int).Mul(k, t))
	b3.Sub(b3, new(big.Int).Mul(l, s))
	c3 := new(big.Int).Mul(k, l)
	c3.Sub(c3, new(big.Int).Mul(j, m))
	f := &Form{a: a3, b: b3, c: c3, g: g}
	return f.reduced(), nil
}

// completeC returns (b²-D)/(4a), the unique c putting (a, b, c) on the
// discriminant.
func (g *ClassGroup) completeC(a, b *big.Int) (*big.Int, error) {
	c := new(big.Int).Mul(b, b)
	c.Sub(c, g.discriminant)
	den := new(big.Int).Lsh(a, 2)
	c, rem := c.QuoRem(c, den, new(big.Int))
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("b^2-D not divisible by 4a: %w", ErrInternal)
	}
	return c, nil
}
