package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoreError_Error(t *testing.T) {
	cause := errors.New("lock busy")
	err := Wrap(Timeout, "could not acquire partition lock", cause)
	assert.Equal(t, "could not acquire partition lock: lock busy", err.Error())

	bare := New(NotOwner, "wrong node")
	assert.Equal(t, "wrong node", bare.Error())
}

func TestCoreError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(NoData, "no version", cause)
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestIs(t *testing.T) {
	err := New(AlreadyReleased, "double release")
	assert.True(t, Is(err, AlreadyReleased))
	assert.False(t, Is(err, Timeout))
	assert.False(t, Is(errors.New("plain"), Timeout))
}

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		NotOwner:        "not_owner",
		Timeout:         "timeout",
		NoData:          "no_data",
		AlreadyReleased: "already_released",
		InvalidConfig:   "invalid_config",
		Unknown:         "unknown",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}
