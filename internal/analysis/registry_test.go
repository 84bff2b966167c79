package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuildsEveryType(t *testing.T) {
	for _, typ := range Types() {
		comp, err := New(typ, Request{})
		require.NoError(t, err, typ)
		assert.NotNil(t, comp, typ)
	}
}

func TestRegistryConcreteTypes(t *testing.T) {
	comp, err := New(TypeBelts, Request{Kinematics: "corexy"})
	require.NoError(t, err)
	assert.IsType(t, &BeltsComputation{}, comp)

	comp, err = New(TypeInputShaper, Request{})
	require.NoError(t, err)
	assert.IsType(t, &ShaperComputation{}, comp)

	comp, err = New(TypeAxesMap, Request{})
	require.NoError(t, err)
	assert.IsType(t, &AxesMapComputation{}, comp)
}

func TestRegistryUnknownType(t *testing.T) {
	_, err := New(Type("thermal"), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thermal")
}

func TestRegistryTypesSorted(t *testing.T) {
	types := Types()
	require.Len(t, types, 5)
	for i := 1; i < len(types); i++ {
		assert.Less(t, string(types[i-1]), string(types[i]))
	}
}
