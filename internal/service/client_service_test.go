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

func TestCreateClient(t *testing.T) {
	svc := NewClientService(newStubClientRepo())

	email := "maria@example.com"
	resp, err := svc.Create(context.Background(), dto.CreateClientRequest{
		Name:  "Maria Gonzalez",
		Email: &email,
		Type:  "client",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Gonzalez", resp.Name)
	assert.Equal(t, "client", resp.Type)
	assert.True(t, resp.Balance.IsZero())
	assert.True(t, resp.Active)
}

func TestAdjustClientBalance(t *testing.T) {
	repo := newStubClientRepo()
	svc := NewClientService(repo)

	created, err := svc.Create(context.Background(), dto.CreateClientRequest{
		Name: "Corner Kiosk",
		Type: "client",
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	resp, err := svc.AdjustBalance(context.Background(), id, dto.AdjustBalanceRequest{
		Delta:  decimal.NewFromInt(1500),
		Reason: "credit sale on account",
	})
	require.NoError(t, err)
	assert.Equal(t, "1500", resp.Balance.String())

	// Negative deltas pay the balance down; it may go negative (store owes).
	resp, err = svc.AdjustBalance(context.Background(), id, dto.AdjustBalanceRequest{
		Delta:  decimal.NewFromInt(-2000),
		Reason: "payment received",
	})
	require.NoError(t, err)
	assert.Equal(t, "-500", resp.Balance.String())
}

func TestAdjustClientBalance_NotFound(t *testing.T) {
	svc := NewClientService(newStubClientRepo())

	_, err := svc.AdjustBalance(context.Background(), uuid.New(), dto.AdjustBalanceRequest{
		Delta:  decimal.NewFromInt(100),
		Reason: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestUpdateClient_PartialFields(t *testing.T) {
	repo := newStubClientRepo()
	svc := NewClientService(repo)

	created, err := svc.Create(context.Background(), dto.CreateClientRequest{
		Name: "Distribuidora Sur",
		Type: "supplier",
	})
	require.NoError(t, err)

	phone := "+54 11 4000 0000"
	resp, err := svc.Update(context.Background(), uuid.MustParse(created.ID), dto.UpdateClientRequest{
		Phone: &phone,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Phone)
	assert.Equal(t, phone, *resp.Phone)
	// Untouched fields stay put
	assert.Equal(t, "Distribuidora Sur", resp.Name)
	assert.Equal(t, "supplier", resp.Type)
}

func TestDeactivateClient(t *testing.T) {
	repo := newStubClientRepo()
	svc := NewClientService(repo)

	created, err := svc.Create(context.Background(), dto.CreateClientRequest{
		Name: "One-off Buyer",
		Type: "client",
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, svc.Deactivate(context.Background(), id))
	assert.False(t, repo.clients[id].Active)

	list, err := svc.List(context.Background(), dto.ClientFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Data)
}
