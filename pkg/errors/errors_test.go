package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrSessionRunning, "display :1 busy")
	assert.Equal(t, ErrSessionRunning, err.Code)
	assert.Equal(t, "[SESSION_RUNNING] display :1 busy", err.Error())
}

func TestWrapPreservesChain(t *testing.T) {
	inner := fmt.Errorf("permission denied")
	err := Wrap(inner, ErrSpawn, "failed to start server")

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "SPAWN")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrSpawn, "should not happen"))
	assert.Nil(t, Wrapf(nil, ErrSpawn, "should not happen %d", 1))
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", New(ErrPidfile, "stale"), ErrPidfile, true},
		{"different code", New(ErrPidfile, "stale"), ErrSpawn, false},
		{"wrapped coded error", fmt.Errorf("ctx: %w", New(ErrStop, "x")), ErrStop, true},
		{"plain error", errors.New("plain"), ErrStop, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrConfigValid, GetErrorCode(New(ErrConfigValid, "bad depth")))
	assert.Equal(t, ErrUnknown, GetErrorCode(errors.New("untyped")))
}

func TestErrorsIsComparesCodes(t *testing.T) {
	a := New(ErrSessionRunning, "display :1 busy")
	b := New(ErrSessionRunning, "other message")
	assert.True(t, errors.Is(a, b))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrSpawn, "exec failed").
		WithDetail("binary", "/usr/bin/vncserver").
		WithDetail("display", ":1")

	assert.Equal(t, "/usr/bin/vncserver", err.Details["binary"])
	assert.Equal(t, ":1", err.Details["display"])
}
