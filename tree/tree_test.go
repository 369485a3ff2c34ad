package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArenaMem_CreateReserveRelease(t *testing.T) {
	arena := ArenaMem{}
	tr := arena.Create(true)
	rc, ok := tr.(Refcounter)
	assert.True(t, ok)
	assert.EqualValues(t, 1, rc.Refcount())

	tr.Reserve()
	assert.EqualValues(t, 2, rc.Refcount())

	tr.Release()
	tr.Release()
	assert.EqualValues(t, 0, rc.Refcount())
}

func TestArenaMem_ResumeCarriesSize(t *testing.T) {
	arena := ArenaMem{}
	tr := arena.Resume(true, Roots{Size: 42})
	assert.EqualValues(t, 42, tr.Size())
}

func TestRootStore(t *testing.T) {
	rs := NewRootStore()
	_, ok := rs.Get(3)
	assert.False(t, ok)

	rs.Put(3, Roots{Size: 10})
	r, ok := rs.Get(3)
	assert.True(t, ok)
	assert.EqualValues(t, 10, r.Size)
	assert.Equal(t, 1, rs.Len())

	seen := map[int]uint64{}
	rs.ForEach(func(pid int, roots Roots) {
		seen[pid] = roots.Size
	})
	assert.Equal(t, map[int]uint64{3: 10}, seen)

	rs.Remove(3)
	assert.Equal(t, 0, rs.Len())
}
