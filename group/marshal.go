package group

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/3for/classygroup/arith"
)

// encodedWidth is the fixed per-coefficient width in bytes: enough for any
// reduced coefficient of the discriminant, so every element of one group
// serializes to the same length.
func (g *ClassGroup) encodedWidth() int {
	return (g.discriminant.BitLen() + 7) / 8
}

// Bytes returns the canonical encoding of f: a then b, each in
// encodedWidth big-endian bytes, b in two's complement. c is omitted since
// it is determined by the discriminant.
func (f *Form) Bytes() []byte {
	w := f.g.encodedWidth()
	out := make([]byte, 2*w)
	f.a.FillBytes(out[:w])
	if f.b.Sign() >= 0 {
		f.b.FillBytes(out[w:])
	} else {
		t := new(big.Int).Lsh(one, uint(8*w))
		t.Add(t, f.b)
		t.FillBytes(out[w:])
	}
	return out
}

// FormFromBytes decodes the canonical encoding produced by Bytes. Encodings
// of the wrong length, or of a form that is not a reduced primitive form of
// the group's discriminant, fail with ErrMalformedForm.
func (g *ClassGroup) FormFromBytes(data []byte) (*Form, error) {
	w := g.encodedWidth()
	if len(data) != 2*w {
		return nil, fmt.Errorf("encoded form is %d bytes, want %d: %w", len(data), 2*w, ErrMalformedForm)
	}
	a := new(big.Int).SetBytes(data[:w])
	b := new(big.Int).SetBytes(data[w:])
	if b.Bit(8*w-1) == 1 {
		b.Sub(b, new(big.Int).Lsh(one, uint(8*w)))
	}
	return g.formFromAB(a, b)
}

// formFromAB rebuilds c from (a, b) and admits only reduced primitive forms.
func (g *ClassGroup) formFromAB(a, b *big.Int) (*Form, error) {
	if a.Sign() <= 0 {
		return nil, fmt.Errorf("non-positive leading coefficient: %w", ErrMalformedForm)
	}
	c := new(big.Int).Mul(b, b)
	c.Sub(c, g.discriminant)
	den := new(big.Int).Lsh(a, 2)
	c, rem := c.QuoRem(c, den, new(big.Int))
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("b^2-D not divisible by 4a: %w", ErrMalformedForm)
	}
	f := &Form{a: a, b: b, c: c, g: g}
	if !f.IsReduced() {
		return nil, fmt.Errorf("form %s is not reduced: %w", f.String(), ErrMalformedForm)
	}
	if arith.GCD(arith.GCD(a, b), c).Cmp(one) != 0 {
		return nil, fmt.Errorf("form %s is not primitive: %w", f.String(), ErrMalformedForm)
	}
	return f, nil
}

type formJSON struct {
	A *big.Int `json:"a"`
	B *big.Int `json:"b"`
}

// MarshalJSON encodes the (a, b) pair as decimal strings.
func (f *Form) MarshalJSON() ([]byte, error) {
	return json.Marshal(formJSON{A: f.a, B: f.b})
}

// FormFromJSON decodes a form serialized by MarshalJSON, applying the same
// validation as FormFromBytes.
func (g *ClassGroup) FormFromJSON(data []byte) (*Form, error) {
	enc := formJSON{}
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrMalformedForm)
	}
	if enc.A == nil || enc.B == nil {
		return nil, fmt.Errorf("missing coefficient: %w", ErrMalformedForm)
	}
	return g.formFromAB(enc.A, enc.B)
}
