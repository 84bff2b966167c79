package shaper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogContents(t *testing.T) {
	cat := Catalog()
	require.Len(t, cat, 6)

	names := make([]string, len(cat))
	for i, cfg := range cat {
		names[i] = cfg.Name
	}
	assert.Equal(t, []string{"zv", "mzv", "zvd", "ei", "2hump_ei", "3hump_ei"}, names)
}

func TestByName(t *testing.T) {
	cfg := ByName("mzv")
	require.NotNil(t, cfg)
	assert.Equal(t, "mzv", cfg.Name)
	assert.Equal(t, 23.0, cfg.MinFreq)

	assert.Nil(t, ByName("nope"))
}

func TestImpulseTrains(t *testing.T) {
	for _, cfg := range Catalog() {
		A, T := cfg.Init(50.0, DefaultDampingRatio)

		require.Equal(t, len(A), len(T), cfg.Name)
		require.NotEmpty(t, A, cfg.Name)

		// Amplitudes are positive and times start at zero, ascending.
		assert.Zero(t, T[0], cfg.Name)
		for i := range A {
			assert.Greater(t, A[i], 0.0, cfg.Name)
			if i > 0 {
				assert.Greater(t, T[i], T[i-1], cfg.Name)
			}
		}
	}
}

func TestImpulseCountGrowsWithHumps(t *testing.T) {
	zvA, _ := ByName("zv").Init(50.0, DefaultDampingRatio)
	eiA, _ := ByName("ei").Init(50.0, DefaultDampingRatio)
	twoA, _ := ByName("2hump_ei").Init(50.0, DefaultDampingRatio)
	threeA, _ := ByName("3hump_ei").Init(50.0, DefaultDampingRatio)

	assert.Len(t, zvA, 2)
	assert.Len(t, eiA, 3)
	assert.Len(t, twoA, 4)
	assert.Len(t, threeA, 5)
}
