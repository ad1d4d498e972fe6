package unionfind_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zontasticality/egraph-vis/internal/unionfind"
)

func makeN(t *testing.T, n int) *unionfind.UnionFind {
	t.Helper()
	uf := unionfind.New()
	for i := 0; i < n; i++ {
		uf.MakeSet(i)
	}
	return uf
}

func TestFindOnFreshSetIsSelf(t *testing.T) {
	uf := makeN(t, 3)
	for i := 0; i < 3; i++ {
		r, err := uf.Find(i)
		require.NoError(t, err)
		assert.Equal(t, i, r)
	}
}

func TestUnionMakesEquivalent(t *testing.T) {
	uf := makeN(t, 4)
	_, err := uf.Union(0, 1)
	require.NoError(t, err)

	eq, err := uf.Equiv(0, 1)
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = uf.Equiv(0, 2)
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestUnionIsIdempotent(t *testing.T) {
	uf := makeN(t, 2)
	r1, err := uf.Union(0, 1)
	require.NoError(t, err)
	r2, err := uf.Union(0, 1)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestFindUnknownIDFails(t *testing.T) {
	uf := makeN(t, 1)
	_, err := uf.Find(5)
	require.Error(t, err)

	_, err = uf.Find(-1)
	require.Error(t, err)
}

func TestFindIsIdempotentAcrossUnions(t *testing.T) {
	uf := makeN(t, 10)
	for i := 1; i < 10; i++ {
		_, err := uf.Union(0, i)
		require.NoError(t, err)
	}
	for i := 0; i < 10; i++ {
		r1, err := uf.Find(i)
		require.NoError(t, err)
		r2, err := uf.Find(r1)
		require.NoError(t, err)
		assert.Equal(t, r1, r2)
	}
}

func TestMakeSetRequiresDenseIDs(t *testing.T) {
	uf := unionfind.New()
	assert.Panics(t, func() {
		uf.MakeSet(1)
	})
}
