package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion_IsNull(t *testing.T) {
	assert.True(t, Null.IsNull())
	assert.False(t, NewModern(7).IsNull())
	assert.False(t, NewLegacy(1, 2, 3).IsNull())
}

func TestVersion_String(t *testing.T) {
	assert.Equal(t, "null", Null.String(Modern))
	assert.Equal(t, "null", Null.String(Legacy))
	assert.Equal(t, "1f", NewModern(31).String(Modern))
	assert.Equal(t, "1-2-3", NewLegacy(1, 2, 3).String(Legacy))
}

func TestLegacyState_Char(t *testing.T) {
	cases := map[LegacyState]byte{
		Undef:  'U',
		Sync:   'S',
		Desync: 'D',
		Zombie: 'Z',
		Absent: 'A',
	}
	for s, want := range cases {
		assert.Equal(t, want, s.Char())
	}
	assert.Equal(t, byte('?'), LegacyState(99).Char())
}
