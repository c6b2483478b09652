package arith

import (
	"math/big"
	"testing"

	"github.com/ing-bank/zkrp/util/bn"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCD(t *testing.T) {
	cases := []struct{ x, y, want int64 }{
		{0, 0, 0},
		{0, 12, 12},
		{12, 0, 12},
		{-12, 18, 6},
		{12, -18, 6},
		{-12, -18, 6},
		{1, 999, 1},
		{120120, 65536, 8},
	}
	for _, tc := range cases {
		got := GCD(big.NewInt(tc.x), big.NewInt(tc.y))
		assert.Equal(t, tc.want, got.Int64(), "gcd(%d, %d)", tc.x, tc.y)
	}
}

func TestGCDMatchesStdlib(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("GCD agrees with big.Int.GCD on positives", prop.ForAll(
		func(x, y int64) bool {
			bx, by := big.NewInt(x), big.NewInt(y)
			want := new(big.Int).GCD(nil, nil, bx, by)
			return GCD(bx, by).Cmp(want) == 0
		},
		gen.Int64Range(1, 1<<62),
		gen.Int64Range(1, 1<<62),
	))
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestExtendedGCDBezout(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("u*x + v*y = g >= 0", prop.ForAll(
		func(x, y int64) bool {
			bx, by := big.NewInt(x), big.NewInt(y)
			g, u, v := ExtendedGCD(bx, by)
			lhs := new(big.Int).Mul(u, bx)
			lhs.Add(lhs, new(big.Int).Mul(v, by))
			return g.Sign() >= 0 && lhs.Cmp(g) == 0 && g.Cmp(GCD(bx, by)) == 0
		},
		gen.Int64Range(-1<<62, 1<<62),
		gen.Int64Range(-1<<62, 1<<62),
	))
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPartialExtendedGCDInvariants(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("remainders and cofactors stay coupled to the inputs", prop.ForAll(
		func(xs, ys, bs int64) bool {
			x := big.NewInt(xs)
			y := big.NewInt(ys % (xs + 1))
			bound := big.NewInt(bs)
			r2, r1, co2, co1, sign, err := PartialExtendedGCD(x, y, bound)
			if err != nil {
				return false
			}
			if sign != 1 && sign != -1 {
				return false
			}
			// r1 stops at or below the bound unless it never moved.
			if r1.Cmp(bound) > 0 && r1.Cmp(y) != 0 {
				return false
			}
			// r_i ≡ -co_i * y (mod x)
			for _, pair := range [][2]*big.Int{{r2, co2}, {r1, co1}} {
				lhs := new(big.Int).Mod(pair[0], x)
				rhs := new(big.Int).Neg(pair[1])
				rhs.Mul(rhs, y)
				rhs.Mod(rhs, x)
				if lhs.Cmp(rhs) != 0 {
					return false
				}
			}
			// r2*co1 - r1*co2 = sign*x
			det := new(big.Int).Mul(r2, co1)
			det.Sub(det, new(big.Int).Mul(r1, co2))
			want := new(big.Int).SetInt64(int64(sign))
			want.Mul(want, x)
			return det.Cmp(want) == 0
		},
		gen.Int64Range(1, 1<<31),
		gen.Int64Range(0, 1<<31),
		gen.Int64Range(0, 1<<16),
	))
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPartialExtendedGCDFull(t *testing.T) {
	// bound 0 degrades to a full gcd run.
	x, y := big.NewInt(240), big.NewInt(46)
	r2, r1, _, _, _, err := PartialExtendedGCD(x, y, big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), r2.Int64())
	assert.Equal(t, int64(0), r1.Int64())
}

func TestPartialExtendedGCDRejects(t *testing.T) {
	_, _, _, _, _, err := PartialExtendedGCD(big.NewInt(3), big.NewInt(5), big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, _, _, _, _, err = PartialExtendedGCD(big.NewInt(5), big.NewInt(3), big.NewInt(-1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, _, _, _, _, err = PartialExtendedGCD(big.NewInt(5), big.NewInt(-3), big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestModInverse(t *testing.T) {
	m := big.NewInt(1000003)
	for _, x := range []int64{1, 2, 17, 999999, 1000002} {
		bx := big.NewInt(x)
		inv, err := ModInverse(bx, m)
		require.NoError(t, err)
		// cross-check against an independent implementation
		want := bn.ModInverse(bx, m)
		want = bn.Mod(want, m)
		assert.Equal(t, 0, inv.Cmp(want), "inverse of %d", x)
		prod := bn.Mod(bn.Multiply(inv, bx), m)
		assert.Equal(t, int64(1), prod.Int64())
	}
}

func TestModInverseNotInvertible(t *testing.T) {
	_, err := ModInverse(big.NewInt(6), big.NewInt(15))
	assert.ErrorIs(t, err, ErrNotInvertible)
	_, err = ModInverse(big.NewInt(2), big.NewInt(-5))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSolveCongruence(t *testing.T) {
	cases := []struct {
		a, b, m  int64
		x0, step int64
	}{
		{3, 6, 7, 2, 7},
		{15, 60, 25, 4, 5},
		{4, 2, 6, 2, 3},
		{0, 0, 5, 0, 1},
	}
	for _, tc := range cases {
		x0, step, err := SolveCongruence(big.NewInt(tc.a), big.NewInt(tc.b), big.NewInt(tc.m))
		require.NoError(t, err, "a=%d b=%d m=%d", tc.a, tc.b, tc.m)
		assert.Equal(t, tc.x0, x0.Int64())
		assert.Equal(t, tc.step, step.Int64())
		check := new(big.Int).Mul(big.NewInt(tc.a), x0)
		check.Sub(check, big.NewInt(tc.b))
		check.Mod(check, big.NewInt(tc.m))
		assert.Equal(t, int64(0), check.Int64())
	}

	_, _, err := SolveCongruence(big.NewInt(4), big.NewInt(3), big.NewInt(6))
	assert.ErrorIs(t, err, ErrNotInvertible)
}

func TestDecompose(t *testing.T) {
	x := big.NewInt(0xBEEF)
	digits := Decompose(x, 4, 4)
	assert.Equal(t, []uint64{0xF, 0xE, 0xE, 0xB}, digits)

	// reassembling the digits most-significant first restores the value
	re := new(big.Int)
	for i := len(digits) - 1; i >= 0; i-- {
		re.Lsh(re, 4)
		re.Or(re, new(big.Int).SetUint64(digits[i]))
	}
	assert.Equal(t, 0, re.Cmp(x))
}
