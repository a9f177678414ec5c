package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ykarpov/go-vault-sync/internal/ledger"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/mock"
	"github.com/ykarpov/go-vault-sync/models"
)

func newTestVaultServiceServer(t *testing.T, ctrl *gomock.Controller) (VaultService, *ledger.MemoryLedger, *mock.MockUserRepository) {
	t.Helper()

	vaultLedger := ledger.NewMemoryLedger()
	mockUsers := mock.NewMockUserRepository(ctrl)
	svc := NewVaultService(vaultLedger, mockUsers, "1.2.3", logger.Nop())
	return svc, vaultLedger, mockUsers
}

func TestVaultService_Status_NoVaultYet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, mockUsers := newTestVaultServiceServer(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().FindUserByID(ctx, int64(1)).
		Return(models.User{UserID: 1, SRPSalt: "0102"}, nil)

	status, err := svc.Status(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, status.VaultRevision, "a virgin vault reports revision zero, not an error")
	assert.Equal(t, "1.2.3", status.ServerVersion)
	assert.Equal(t, "0102", status.SRPSalt)
	assert.True(t, status.ClientVersionSupported)
}

func TestVaultService_SaveAndStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, mockUsers := newTestVaultServiceServer(t, ctrl)
	ctx := context.Background()

	resp, err := svc.Save(ctx, 1, models.SaveVaultRequest{CurrentRevisionNumber: 0, Blob: []byte("blob-v1")})
	require.NoError(t, err)
	assert.Equal(t, models.SaveStatusOk, resp.Status)
	assert.Equal(t, int64(1), resp.NewRevisionNumber)

	mockUsers.EXPECT().FindUserByID(ctx, int64(1)).Return(models.User{UserID: 1}, nil)
	status, err := svc.Status(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.VaultRevision)
}

func TestVaultService_Save_OutdatedIsAResponseNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestVaultServiceServer(t, ctrl)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, models.SaveVaultRequest{CurrentRevisionNumber: 0, Blob: []byte("v1")})
	require.NoError(t, err)
	_, err = svc.Save(ctx, 1, models.SaveVaultRequest{CurrentRevisionNumber: 1, Blob: []byte("v2")})
	require.NoError(t, err)

	// A second client still claiming revision 1 loses the CAS.
	resp, err := svc.Save(ctx, 1, models.SaveVaultRequest{CurrentRevisionNumber: 1, Blob: []byte("stale")})
	require.NoError(t, err)
	assert.Equal(t, models.SaveStatusOutdated, resp.Status)
	assert.Equal(t, int64(2), resp.NewRevisionNumber, "rejection carries the actual revision")

	download, err := svc.Download(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), download.Blob, "the losing blob was never stored")
}

func TestVaultService_Save_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestVaultServiceServer(t, ctrl)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, models.SaveVaultRequest{CurrentRevisionNumber: 0})
	assert.ErrorIs(t, err, ErrInvalidDataProvided, "empty blob")

	_, err = svc.Save(ctx, 1, models.SaveVaultRequest{CurrentRevisionNumber: -1, Blob: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidDataProvided, "negative claimed revision")
}

func TestVaultService_Download_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestVaultServiceServer(t, ctrl)

	_, err := svc.Download(context.Background(), 1)
	assert.ErrorIs(t, err, ledger.ErrVaultNotFound)
}

func TestVaultService_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestVaultServiceServer(t, ctrl)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, models.SaveVaultRequest{CurrentRevisionNumber: 0, Blob: []byte("v1")})
	require.NoError(t, err)
	_, err = svc.Save(ctx, 1, models.SaveVaultRequest{CurrentRevisionNumber: 1, Blob: []byte("v2")})
	require.NoError(t, err)

	history, err := svc.History(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, history.Length)
	assert.Equal(t, int64(2), history.Entries[0].Revision, "newest first")
	assert.Equal(t, int64(1), history.Entries[1].Revision)
}
