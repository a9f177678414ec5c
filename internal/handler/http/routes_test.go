package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ykarpov/go-vault-sync/internal/mock"
	"github.com/ykarpov/go-vault-sync/internal/service"
)

func TestHandler_Init_Routing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAppInfo := mock.NewMockAppInfoService(ctrl)
	mockAppInfo.EXPECT().GetAppVersion(gomock.Any()).Return("1.2.3").AnyTimes()

	h := newTestHandler(&service.Services{
		AuthService:    mock.NewMockAuthService(ctrl),
		VaultService:   mock.NewMockVaultService(ctrl),
		AppInfoService: mockAppInfo,
	})
	router := h.Init()

	t.Run("version is public", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/version", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "1.2.3", rr.Body.String())
	})

	t.Run("vault requires a token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/vault", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong method looks like a missing route", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/version", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("metrics endpoint is exposed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
