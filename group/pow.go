package group

import (
	"fmt"
	"math/big"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/3for/classygroup/arith"
)

// Pow returns x^n by left-to-right binary square-and-multiply. n must be
// non-negative; raise to the inverse explicitly for negative exponents.
func (g *ClassGroup) Pow(x *Form, n *big.Int) (*Form, error) {
	if err := g.check(x); err != nil {
		return nil, err
	}
	if n == nil || n.Sign() < 0 {
		return nil, fmt.Errorf("exponent must be non-negative: %w", ErrInvalidArgument)
	}
	r := g.Identity()
	var err error
	for i := n.BitLen() - 1; i >= 0; i-- {
		if r, err = g.Square(r); err != nil {
			return nil, err
		}
		if n.Bit(i) == 1 {
			if r, err = g.Compose(r, x); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// RepeatedSquare returns x^(2^n): n sequential squarings with no shortcut,
// the delay primitive of class group VDFs.
func (g *ClassGroup) RepeatedSquare(x *Form, n uint64) (*Form, error) {
	if err := g.check(x); err != nil {
		return nil, err
	}
	r := x
	var err error
	for i := uint64(0); i < n; i++ {
		if r, err = g.Square(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// defaultPowWindow keeps per-base tables at 16 forms while saving roughly
// 3 of every 4 compositions on random exponents.
const defaultPowWindow = 4

// PowCache amortizes repeated exponentiations of the same few bases by
// keeping a per-base table of the powers x^0 .. x^(2^w-1). It is the only
// shared mutable state in the package and is safe for concurrent use;
// concurrent first requests for one base build its table once.
type PowCache struct {
	mu     sync.RWMutex
	window uint
	tables map[string][]*Form
	sf     singleflight.Group
}

// PowCacheOption configures NewPowCache.
type PowCacheOption func(*PowCache)

// WithWindow sets the scan width in bits. Tables grow as 2^w forms per
// base; widths outside [1, 8] are clamped.
func WithWindow(w uint) PowCacheOption {
	return func(c *PowCache) {
		if w < 1 {
			w = 1
		}
		if w > 8 {
			w = 8
		}
		c.window = w
	}
}

// NewPowCache returns an empty cache.
func NewPowCache(opts ...PowCacheOption) *PowCache {
	c := &PowCache{window: defaultPowWindow, tables: make(map[string][]*Form)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pow returns base^n under g, building or reusing the cached table for
// base. The result is identical to g.Pow(base, n).
func (c *PowCache) Pow(g *ClassGroup, base *Form, n *big.Int) (*Form, error) {
	if err := g.check(base); err != nil {
		return nil, err
	}
	if n == nil || n.Sign() < 0 {
		return nil, fmt.Errorf("exponent must be non-negative: %w", ErrInvalidArgument)
	}
	table, err := c.table(g, base)
	if err != nil {
		return nil, err
	}

	w := int(c.window)
	length := (n.BitLen() + w - 1) / w
	digits := arith.Decompose(n, c.window, length)
	r := g.Identity()
	for i := length - 1; i >= 0; i-- {
		for j := 0; j < w; j++ {
			if r, err = g.Square(r); err != nil {
				return nil, err
			}
		}
		if d := digits[i]; d != 0 {
			if r, err = g.Compose(r, table[d]); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Len reports the number of cached base tables.
func (c *PowCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

func (c *PowCache) table(g *ClassGroup, base *Form) ([]*Form, error) {
	key := string(base.Bytes()) + "|" + g.discriminant.String()
	c.mu.RLock()
	table, ok := c.tables[key]
	c.mu.RUnlock()
	if ok {
		return table, nil
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		table, ok := c.tables[key]
		c.mu.RUnlock()
		if ok {
			return table, nil
		}
		table = make([]*Form, 1<<c.window)
		table[0] = g.Identity()
		table[1] = base
		var err error
		for i := 2; i < len(table); i++ {
			if table[i], err = g.Compose(table[i-1], base); err != nil {
				return nil, err
			}
		}
		c.mu.Lock()
		c.tables[key] = table
		c.mu.Unlock()
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Form), nil
}
