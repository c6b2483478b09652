package arith

import (
	"fmt"
	"math/big"
)

// Jacobi returns the Jacobi symbol (x/n) in {-1, 0, 1}, computed by binary
// quadratic reciprocity. n must be positive and odd.
func Jacobi(x, n *big.Int) (int, error) {
	if n.Sign() <= 0 || n.Bit(0) == 0 {
		return 0, fmt.Errorf("jacobi modulus must be positive and odd: %w", ErrInvalidArgument)
	}
	a := new(big.Int).Mod(x, n)
	m := new(big.Int).Set(n)
	j := 1
	for a.Sign() != 0 {
		for a.Bit(0) == 0 {
			a.Rsh(a, 1)
			switch m.Bits()[0] & 7 {
			case 3, 5:
				j = -j
			}
		}
		a, m = m, a
		if a.Bits()[0]&3 == 3 && m.Bits()[0]&3 == 3 {
			j = -j
		}
		a.Mod(a, m)
	}
	if m.Cmp(one) == 0 {
		return j, nil
	}
	return 0, nil
}

// SqrtModPrime returns a square root of x modulo the odd prime p, in [0, p).
// The p ≡ 3 (mod 4) case is a single exponentiation; otherwise Tonelli-Shanks
// runs with the smallest non-residue as generator, so the result is
// deterministic. It fails with ErrInvalidArgument when x is a non-residue.
func SqrtModPrime(x, p *big.Int) (*big.Int, error) {
	a := new(big.Int).Mod(x, p)
	if a.Sign() == 0 {
		return a, nil
	}
	if sym, err := Jacobi(a, p); err != nil {
		return nil, err
	} else if sym != 1 {
		return nil, fmt.Errorf("%s is not a quadratic residue mod %s: %w", x.String(), p.String(), ErrInvalidArgument)
	}

	if p.Bits()[0]&3 == 3 {
		e := new(big.Int).Add(p, one)
		e.Rsh(e, 2)
		return new(big.Int).Exp(a, e, p), nil
	}

	// Tonelli-Shanks: p-1 = q * 2^s with q odd.
	q := new(big.Int).Sub(p, one)
	s := 0
	for q.Bit(0) == 0 {
		q.Rsh(q, 1)
		s++
	}
	z := big.NewInt(2)
	for {
		if sym, _ := Jacobi(z, p); sym == -1 {
			break
		}
		z.Add(z, one)
	}
	c := new(big.Int).Exp(z, q, p)
	t := new(big.Int).Exp(a, q, p)
	r := new(big.Int).Exp(a, new(big.Int).Rsh(new(big.Int).Add(q, one), 1), p)

	m := s
	tt := new(big.Int)
	for t.Cmp(one) != 0 {
		i := 0
		tt.Set(t)
		for tt.Cmp(one) != 0 {
			tt.Mul(tt, tt).Mod(tt, p)
			i++
		}
		b := new(big.Int).Set(c)
		for j := 0; j < m-i-1; j++ {
			b.Mul(b, b).Mod(b, p)
		}
		m = i
		c.Mul(b, b).Mod(c, p)
		t.Mul(t, c).Mod(t, p)
		r.Mul(r, b).Mod(r, p)
	}
	return r, nil
}
