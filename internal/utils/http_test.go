package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("WritesBodyHeaderAndStatus", func(t *testing.T) {
		rec := httptest.NewRecorder()

		n, err := WriteJSON(rec, map[string]string{"status": "ok"}, 201)
		require.NoError(t, err)
		assert.Positive(t, n)
		assert.Equal(t, 201, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("NilPayload", func(t *testing.T) {
		rec := httptest.NewRecorder()

		_, err := WriteJSON(rec, nil, 200)
		require.NoError(t, err)
		assert.Equal(t, "null", rec.Body.String())
	})

	t.Run("UnmarshalablePayload", func(t *testing.T) {
		rec := httptest.NewRecorder()

		_, err := WriteJSON(rec, func() {}, 200)
		require.Error(t, err)
		assert.Equal(t, 500, rec.Code)
	})
}
