package group

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return n
}

func TestExpandSeed(t *testing.T) {
	out := expandSeed(sha256.New, []byte{0xaa}, 7)
	assert.Equal(t, "9f9d2ae5e73ccb", hex.EncodeToString(out))

	// expansion is a prefix-stable stream
	long := expandSeed(sha256.New, []byte{0xaa}, 64)
	assert.Equal(t, out, long[:7])
}

func TestDeriveDiscriminant40(t *testing.T) {
	d, err := DeriveDiscriminant([]byte{0xaa}, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(-685537176559), d.Int64())
}

func TestDeriveDiscriminant1024(t *testing.T) {
	want := mustBig(t,
		"-112084717443890964296630631725167420667316836131914185144761"+
			"7438378168250988242739496385274308134767869324152361453294226"+
			"8295868231081182819214054220080323345750407342623884342617809"+
			"8794592117225058677336074005099949757067786815439982423354682"+
			"0386024058617141397148586038290164093146862666602485017735298"+
			"03183")
	d, err := DeriveDiscriminant([]byte{0xaa}, 1024)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Cmp(want))
}

func TestDeriveDiscriminant2048(t *testing.T) {
	if testing.Short() {
		t.Skip("2048-bit derivation")
	}
	want := mustBig(t,
		"-201493927071865251625903550712920535753645598483515670853547009"+
			"878440933309489362800393797428711071833308081461824159206915864"+
			"150805748296170245037221957772328044276705571745811271212292422"+
			"075849739248257870371300001313586036515879618764093772248760562"+
			"386804073478433157526816295216137723803793411828867470089409596"+
			"238958950007370719325959579892866588928887249912429688364409867"+
			"895510817680171869190054122881274299350947669820596157115994418"+
			"034091728887584373727555384075665624624856766441009974642693066"+
			"751400054217209981490667208950669417773785631693879782993019167"+
			"69407006303085854796535778826115224633447713584423")
	d, err := DeriveDiscriminant([]byte{0xaa}, 2048)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Cmp(want))
}

func TestDeriveDiscriminantShape(t *testing.T) {
	for _, bits := range []int{40, 128, 256} {
		d, err := DeriveDiscriminant([]byte("shape-seed"), bits)
		require.NoError(t, err, "bits=%d", bits)
		require.Equal(t, -1, d.Sign())

		p := new(big.Int).Neg(d)
		// exact lengths are pinned by the fixed vectors above; here only
		// the floor matters, a candidate may step past a power of two
		assert.GreaterOrEqual(t, p.BitLen(), bits, "bits=%d", bits)
		assert.True(t, p.ProbablyPrime(20))
		// |D| ≡ 7 (mod 8), so D ≡ 1 (mod 8)
		assert.Equal(t, int64(7), new(big.Int).Mod(p, eight).Int64())
		assert.Equal(t, int64(1), new(big.Int).Mod(d, eight).Int64())
	}
}

func TestDeriveDiscriminantDeterministic(t *testing.T) {
	a, err := DeriveDiscriminant([]byte("seed"), 128)
	require.NoError(t, err)
	b, err := DeriveDiscriminant([]byte("seed"), 128)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Cmp(b))

	c, err := DeriveDiscriminant([]byte("seed2"), 128)
	require.NoError(t, err)
	assert.NotEqual(t, 0, a.Cmp(c))
}

func TestDeriveDiscriminantBlake2b(t *testing.T) {
	a, err := DeriveDiscriminant([]byte("seed"), 128, WithBlake2b())
	require.NoError(t, err)
	b, err := DeriveDiscriminant([]byte("seed"), 128, WithBlake2b())
	require.NoError(t, err)
	assert.Equal(t, 0, a.Cmp(b))

	sha, err := DeriveDiscriminant([]byte("seed"), 128)
	require.NoError(t, err)
	assert.NotEqual(t, 0, a.Cmp(sha), "digest choice must change the derivation")

	p := new(big.Int).Neg(a)
	assert.GreaterOrEqual(t, p.BitLen(), 128)
	assert.Equal(t, int64(7), new(big.Int).Mod(p, eight).Int64())
}

func TestDeriveDiscriminantRejectsTinySizes(t *testing.T) {
	for _, bits := range []int{-1, 0, 8, 15} {
		_, err := DeriveDiscriminant([]byte("x"), bits)
		assert.ErrorIs(t, err, ErrInvalidArgument, "bits=%d", bits)
	}
}

func TestWheelTables(t *testing.T) {
	residues, pairs := wheelTables()
	// φ(3·5·7·11·13) residue classes on the 8k+7 track
	assert.Len(t, residues, 5760)
	for _, r := range residues[:32] {
		assert.Equal(t, int64(7), r%8)
	}
	for _, pr := range pairs[:32] {
		assert.True(t, pr.p > 13)
		assert.Equal(t, uint64(1), wheel*pr.q%pr.p)
	}
}
