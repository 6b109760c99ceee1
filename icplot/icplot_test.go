package icplot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram(t *testing.T) {
	vals := make([]float64, 200)
	for i := range vals {
		vals[i] = 1.5 + 0.1*math.Sin(float64(i))
	}
	name := filepath.Join(t.TempDir(), "bonds.png")
	require.NoError(t, Histogram(vals, 20, "Bond lengths", "r (A)", name))
	st, err := os.Stat(name)
	require.NoError(t, err)
	assert.Positive(t, st.Size())

	assert.Error(t, Histogram(nil, 20, "", "", name), "empty data must fail")
}

func TestDihedralMap(t *testing.T) {
	n := 150
	phi := make([]float64, n)
	psi := make([]float64, n)
	for i := range phi {
		phi[i] = -1.2 + 0.3*math.Sin(float64(i))
		psi[i] = 2.4 + 0.3*math.Cos(float64(i))
	}
	name := filepath.Join(t.TempDir(), "rama.png")
	require.NoError(t, DihedralMap(phi, psi, "Ramachandran", name))
	st, err := os.Stat(name)
	require.NoError(t, err)
	assert.Positive(t, st.Size())

	assert.Error(t, DihedralMap(phi, psi[:10], "", name), "unequal series must fail")
	assert.Error(t, DihedralMap(nil, nil, "", name), "missing series must fail")
}
