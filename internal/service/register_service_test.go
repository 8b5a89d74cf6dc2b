package service

import (
	"context"
	"testing"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRegister(t *testing.T) {
	repo := newStubRegisterRepo()
	svc := NewRegisterService(repo)
	operatorID := uuid.New()

	resp, err := svc.Open(context.Background(), operatorID, dto.OpenRegisterRequest{
		OpeningAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, "open", resp.Status)
	assert.Equal(t, "1000", resp.OpeningAmount.String())
	assert.Nil(t, resp.ClosingAmount)
}

func TestOpenRegister_DuplicateOpen(t *testing.T) {
	repo := newStubRegisterRepo()
	svc := NewRegisterService(repo)
	operatorID := uuid.New()
	seedOpenSession(repo, operatorID, 500)

	_, err := svc.Open(context.Background(), operatorID, dto.OpenRegisterRequest{
		OpeningAmount: decimal.NewFromInt(200),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestOpenRegister_OtherOperatorUnaffected(t *testing.T) {
	repo := newStubRegisterRepo()
	svc := NewRegisterService(repo)
	seedOpenSession(repo, uuid.New(), 500)

	_, err := svc.Open(context.Background(), uuid.New(), dto.OpenRegisterRequest{
		OpeningAmount: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
}

func TestOpenRegister_NegativeAmount(t *testing.T) {
	repo := newStubRegisterRepo()
	svc := NewRegisterService(repo)

	_, err := svc.Open(context.Background(), uuid.New(), dto.OpenRegisterRequest{
		OpeningAmount: decimal.NewFromInt(-10),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestCloseRegister(t *testing.T) {
	repo := newStubRegisterRepo()
	svc := NewRegisterService(repo)
	session := seedOpenSession(repo, uuid.New(), 1000)

	resp, err := svc.Close(context.Background(), session.ID, dto.CloseRegisterRequest{
		ClosingAmount: decimal.NewFromInt(1450),
	})
	require.NoError(t, err)
	assert.Equal(t, "closed", resp.Status)
	require.NotNil(t, resp.ClosingAmount)
	assert.Equal(t, "1450", resp.ClosingAmount.String())
	require.NotNil(t, resp.ClosedAt)
}

func TestCloseRegister_AlreadyClosed(t *testing.T) {
	repo := newStubRegisterRepo()
	svc := NewRegisterService(repo)
	session := seedOpenSession(repo, uuid.New(), 1000)

	_, err := svc.Close(context.Background(), session.ID, dto.CloseRegisterRequest{
		ClosingAmount: decimal.NewFromInt(900),
	})
	require.NoError(t, err)

	// Closing is terminal: the second attempt conflicts.
	_, err = svc.Close(context.Background(), session.ID, dto.CloseRegisterRequest{
		ClosingAmount: decimal.NewFromInt(901),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestCloseRegister_NotFound(t *testing.T) {
	repo := newStubRegisterRepo()
	svc := NewRegisterService(repo)

	_, err := svc.Close(context.Background(), uuid.New(), dto.CloseRegisterRequest{
		ClosingAmount: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestCurrentSession(t *testing.T) {
	repo := newStubRegisterRepo()
	svc := NewRegisterService(repo)
	operatorID := uuid.New()
	session := seedOpenSession(repo, operatorID, 750)

	resp, err := svc.Current(context.Background(), operatorID)
	require.NoError(t, err)
	assert.Equal(t, session.ID.String(), resp.ID)

	_, err = svc.Current(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}
