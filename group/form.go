package group

import (
	"fmt"
	"math/big"

	"github.com/3for/classygroup/arith"
)

// Form is a reduced primitive binary quadratic form (a, b, c) under its
// group's discriminant. Forms are immutable: operations return new values.
type Form struct {
	a, b, c *big.Int
	g       *ClassGroup
}

// NewForm validates (a, b, c) against the group's discriminant and returns
// the reduced representative of its class. It fails with
// ErrInvalidDiscriminant when b²-4ac != D and with ErrMalformedForm when the
// form is not primitive or not positive definite.
func (g *ClassGroup) NewForm(a, b, c *big.Int) (*Form, error) {
	d := new(big.Int).Mul(b, b)
	d.Sub(d, new(big.Int).Mul(four, new(big.Int).Mul(a, c)))
	if d.Cmp(g.discriminant) != 0 {
		return nil, fmt.Errorf("b^2-4ac = %s, want %s: %w", d.String(), g.discriminant.String(), ErrInvalidDiscriminant)
	}
	if a.Sign() <= 0 {
		return nil, fmt.Errorf("form not positive definite: %w", ErrMalformedForm)
	}
	if arith.GCD(arith.GCD(a, b), c).Cmp(one) != 0 {
		return nil, fmt.Errorf("form not primitive: %w", ErrMalformedForm)
	}
	f := &Form{
		a: new(big.Int).Set(a),
		b: new(big.Int).Set(b),
		c: new(big.Int).Set(c),
		g: g,
	}
	return f.reduced(), nil
}

// A returns a copy of the leading coefficient.
func (f *Form) A() *big.Int { return new(big.Int).Set(f.a) }

// B returns a copy of the middle coefficient.
func (f *Form) B() *big.Int { return new(big.Int).Set(f.b) }

// C returns a copy of the trailing coefficient.
func (f *Form) C() *big.Int { return new(big.Int).Set(f.c) }

// Discriminant returns a copy of the discriminant the form lives under.
func (f *Form) Discriminant() *big.Int { return new(big.Int).Set(f.g.discriminant) }

// Equal reports whether x represents the same group element. Reduced
// representatives are unique, so this is coefficient equality plus a
// discriminant check.
func (f *Form) Equal(x *Form) bool {
	if x == nil {
		return false
	}
	return f.g.Equal(x.g) && f.a.Cmp(x.a) == 0 && f.b.Cmp(x.b) == 0
}

// IsIdentity reports whether f is the principal form.
func (f *Form) IsIdentity() bool {
	return f.a.Cmp(one) == 0
}

// IsReduced reports whether the canonical inequalities -a < b <= a <= c
// hold, with b >= 0 when a == c.
func (f *Form) IsReduced() bool {
	negA := new(big.Int).Neg(f.a)
	if f.b.Cmp(negA) <= 0 || f.b.Cmp(f.a) > 0 {
		return false
	}
	switch f.a.Cmp(f.c) {
	case 1:
		return false
	case 0:
		return f.b.Sign() >= 0
	}
	return true
}

// Inverse returns the group inverse, the reduction of (a, -b, c).
func (f *Form) Inverse() *Form {
	inv := &Form{
		a: new(big.Int).Set(f.a),
		b: new(big.Int).Neg(f.b),
		c: new(big.Int).Set(f.c),
		g: f.g,
	}
	return inv.reduced()
}

func (f *Form) String() string {
	return fmt.Sprintf("(%s, %s, %s)", f.a.String(), f.b.String(), f.c.String())
}

// normalize translates b into (-a, a]. The whole translation is applied in
// one closed-form step, (a, b, c) -> (a, b+2ra, ar²+br+c) with
// r = ⌊(a-b)/2a⌋, so the cost tracks the bit length of b, not its value:
// general composition can hand reduction a b far larger than a.
func (f *Form) normalize() {
	negA := new(big.Int).Neg(f.a)
	if f.b.Cmp(negA) > 0 && f.b.Cmp(f.a) <= 0 {
		return
	}
	twoA := new(big.Int).Lsh(f.a, 1)
	r := new(big.Int).Sub(f.a, f.b)
	r.Div(r, twoA) // floor division, twoA > 0

	// c += r*(b + a*r) before b moves
	t := new(big.Int).Mul(f.a, r)
	t.Add(t, f.b)
	t.Mul(t, r)
	f.c.Add(f.c, t)
	f.b.Add(f.b, r.Mul(twoA, r))
}

// reduced returns the canonical representative of f's equivalence class.
// The receiver is consumed: callers own f and its coefficients.
func (f *Form) reduced() *Form {
	f.normalize()
	for f.a.Cmp(f.c) > 0 || (f.a.Cmp(f.c) == 0 && f.b.Sign() < 0) {
		// The involution (a, b, c) -> (c, -b, a), then re-normalize.
		f.a, f.c = f.c, f.a
		f.b.Neg(f.b)
		f.normalize()
	}
	return f
}

// discriminantOf recomputes b²-4ac, used by internal consistency checks.
func discriminantOf(a, b, c *big.Int) *big.Int {
	d := new(big.Int).Mul(b, b)
	return d.Sub(d, new(big.Int).Mul(four, new(big.Int).Mul(a, c)))
}
