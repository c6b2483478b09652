// Package arith provides the big-integer primitives underlying class group
// arithmetic: gcd variants, modular inverses, the Jacobi symbol and modular
// square roots. All functions are pure and never mutate their arguments;
// costs scale with the bit length of the inputs.
package arith

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrNotInvertible is returned when a modular inverse is requested for
	// an element that is not a unit.
	ErrNotInvertible = errors.New("arith: not invertible")
	// ErrInvalidArgument is returned for out-of-domain arguments, such as a
	// negative partial-gcd bound or an even Jacobi modulus.
	ErrInvalidArgument = errors.New("arith: invalid argument")
)

// GCD returns the non-negative greatest common divisor of x and y.
// GCD(0, 0) is 0.
func GCD(x, y *big.Int) *big.Int {
	if x.Sign() == 0 {
		return new(big.Int).Abs(y)
	}
	if y.Sign() == 0 {
		return new(big.Int).Abs(x)
	}
	return new(big.Int).GCD(nil, nil, new(big.Int).Abs(x), new(big.Int).Abs(y))
}

// ExtendedGCD returns g = gcd(x, y) together with Bézout coefficients u, v
// such that u*x + v*y = g, with g >= 0.
func ExtendedGCD(x, y *big.Int) (g, u, v *big.Int) {
	r0, r1 := new(big.Int).Set(x), new(big.Int).Set(y)
	s0, s1 := big.NewInt(1), big.NewInt(0)
	t0, t1 := big.NewInt(0), big.NewInt(1)

	for r1.Sign() != 0 {
		q := new(big.Int).Quo(r0, r1)
		r0, r1 = r1, new(big.Int).Sub(r0, new(big.Int).Mul(q, r1))
		s0, s1 = s1, new(big.Int).Sub(s0, new(big.Int).Mul(q, s1))
		t0, t1 = t1, new(big.Int).Sub(t0, new(big.Int).Mul(q, t1))
	}
	if r0.Sign() < 0 {
		r0 = new(big.Int).Neg(r0)
		s0 = new(big.Int).Neg(s0)
		t0 = new(big.Int).Neg(t0)
	}
	return r0, s0, t0
}

// PartialExtendedGCD runs the Euclidean algorithm on (x, y), 0 <= y <= x,
// but stops as soon as the running remainder drops to bound or below. It
// returns the last two remainders r2 > r1 with their cofactors co2, co1 and
// the orientation sign, satisfying
//
//	r_i ≡ -co_i * y (mod x)   and   r2*co1 - r1*co2 = sign*x, sign = ±1.
//
// With bound = 0 this is a full extended gcd. The bounded stop is what keeps
// NUCOMP and NUDUPL intermediates near |D|^(3/4): callers pass a bound of
// roughly |D|^(1/4) instead of reducing operands of magnitude |D| to zero.
func PartialExtendedGCD(x, y, bound *big.Int) (r2, r1, co2, co1 *big.Int, sign int, err error) {
	if bound == nil || bound.Sign() < 0 {
		return nil, nil, nil, nil, 0, fmt.Errorf("partial gcd bound must be non-negative: %w", ErrInvalidArgument)
	}
	if x.Sign() < 0 || y.Sign() < 0 || x.Cmp(y) < 0 {
		return nil, nil, nil, nil, 0, fmt.Errorf("partial gcd needs 0 <= y <= x: %w", ErrInvalidArgument)
	}
	r2, r1 = new(big.Int).Set(x), new(big.Int).Set(y)
	co2, co1 = big.NewInt(0), big.NewInt(-1)
	sign = -1

	q, t := new(big.Int), new(big.Int)
	for r1.Sign() != 0 && r1.Cmp(bound) > 0 {
		q.Quo(r2, r1)
		r2.Sub(r2, t.Mul(q, r1))
		co2.Sub(co2, t.Mul(q, co1))
		r2, r1 = r1, r2
		co2, co1 = co1, co2
		sign = -sign
	}
	return r2, r1, co2, co1, sign, nil
}

// ModInverse returns i in [0, m) with x*i ≡ 1 (mod m). It fails with
// ErrNotInvertible when gcd(x, m) != 1.
func ModInverse(x, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, fmt.Errorf("modulus must be positive: %w", ErrInvalidArgument)
	}
	g, u, _ := ExtendedGCD(x, m)
	if g.Cmp(one) != 0 {
		return nil, fmt.Errorf("gcd(%s, m) != 1: %w", x.String(), ErrNotInvertible)
	}
	return u.Mod(u, m), nil
}

// SolveCongruence solves a*x ≡ b (mod m) for x, returning the least
// non-negative solution x0 and the step between consecutive solutions
// (every solution is x0 + k*step). It fails with ErrNotInvertible when
// gcd(a, m) does not divide b.
func SolveCongruence(a, b, m *big.Int) (x0, step *big.Int, err error) {
	if m.Sign() <= 0 {
		return nil, nil, fmt.Errorf("modulus must be positive: %w", ErrInvalidArgument)
	}
	g, u, _ := ExtendedGCD(a, m)
	q, r := new(big.Int).QuoRem(b, g, new(big.Int))
	if r.Sign() != 0 {
		return nil, nil, fmt.Errorf("congruence %s*x = %s has no solution mod %s: %w",
			a.String(), b.String(), m.String(), ErrNotInvertible)
	}
	step = new(big.Int).Quo(m, g)
	x0 = q.Mul(q, u)
	x0.Mod(x0, step)
	return x0, step, nil
}

// Decompose returns the length least-significant digits of x in base 2^width,
// least significant first. Exponent scanners use it to turn a scalar into
// fixed-width windows.
func Decompose(x *big.Int, width uint, length int) []uint64 {
	digits := make([]uint64, length)
	mask := new(big.Int).Lsh(one, width)
	mask.Sub(mask, one)
	rest := new(big.Int).Set(x)
	digit := new(big.Int)
	for i := 0; i < length; i++ {
		digits[i] = digit.And(rest, mask).Uint64()
		rest.Rsh(rest, width)
	}
	return digits
}

var one = big.NewInt(1)
