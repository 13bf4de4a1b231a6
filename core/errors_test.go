package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	err := Error(EFONTPARSE, "cannot parse font %s", "Antic")
	assert.Equal(t, EFONTPARSE, Code(err))
	assert.Equal(t, "cannot parse font Antic", UserMessage(err))
	assert.True(t, Is(err, EFONTPARSE))
	assert.False(t, Is(err, EBACKEND))
}

func TestWrapKeepsCause(t *testing.T) {
	err := WrapError(context.DeadlineExceeded, ETIMEOUT, "font %q not loaded in time", "weilai")
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "cause must stay reachable")
	assert.Equal(t, ETIMEOUT, Code(err))
	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, ETIMEOUT, Code(wrapped))
	assert.Equal(t, `font "weilai" not loaded in time`, UserMessage(wrapped))
}

func TestCodeOfPlainErrors(t *testing.T) {
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, "", UserMessage(nil))
	plain := errors.New("boom")
	assert.Equal(t, EINTERNAL, Code(plain))
	assert.Equal(t, "internal error", UserMessage(plain))
}

func TestErrorWithCodeOnNil(t *testing.T) {
	err := ErrorWithCode(nil, EFONTUNAVAILABLE)
	assert.Error(t, err)
	assert.Equal(t, EFONTUNAVAILABLE, Code(err))
	assert.Equal(t, "[122] font unavailable", err.Error())
}
