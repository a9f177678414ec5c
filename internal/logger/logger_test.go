// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	l := NewLogger("test-role")
	require.NotNil(t, l)
	l.Debug().Msg("smoke")
}

func TestNop_DiscardsOutput(t *testing.T) {
	l := Nop()
	require.NotNil(t, l)
	l.Error().Msg("should go nowhere")
}

func TestGetChildLogger(t *testing.T) {
	parent := Nop()
	child := parent.GetChildLogger()
	require.NotNil(t, child)
	assert.NotSame(t, parent, child)
}

func TestFromContext_NeverNil(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
}

func TestFromContext_ReturnsAttachedLogger(t *testing.T) {
	base := Nop()
	ctx := base.WithContext(context.Background())

	got := FromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, base.GetLevel(), got.GetLevel())
}

func TestFromRequest(t *testing.T) {
	base := Nop()
	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(base.WithContext(req.Context()))

	got := FromRequest(req)
	require.NotNil(t, got)
}
