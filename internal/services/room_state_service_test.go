package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
)

func TestMarkAndCancelExpiringRoundTrip(t *testing.T) {
	rooms := newFakeRoomStore(&models.Room{ID: 1, Number: "101", Status: models.RoomRented})
	contracts := newFakeContractStore(
		&models.Contract{ID: 10, RoomID: 1, Status: models.ContractActive},
	)
	svc := NewRoomStateService(rooms, contracts)

	result, err := svc.MarkExpiring(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoomExpiring, rooms.rooms[1].Status)
	assert.Equal(t, models.ContractExpiring, contracts.contracts[10].Status)
	assert.Equal(t, 1, result.ContractsExpected)
	assert.Equal(t, 1, result.ContractsUpdated)

	result, err = svc.CancelExpiring(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoomRented, rooms.rooms[1].Status)
	assert.Equal(t, models.ContractActive, contracts.contracts[10].Status)
	assert.Equal(t, 1, result.ContractsUpdated)
}

func TestMarkExpiringIsIdempotent(t *testing.T) {
	rooms := newFakeRoomStore(&models.Room{ID: 1, Number: "101", Status: models.RoomRented})
	contracts := newFakeContractStore(
		&models.Contract{ID: 10, RoomID: 1, Status: models.ContractActive},
	)
	svc := NewRoomStateService(rooms, contracts)

	_, err := svc.MarkExpiring(context.Background(), 1)
	require.NoError(t, err)

	// The second call finds everything already transitioned.
	result, err := svc.MarkExpiring(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ContractsExpected)
	assert.Equal(t, 0, result.ContractsUpdated)
	assert.Equal(t, models.RoomExpiring, rooms.rooms[1].Status)
}

func TestMarkExpiringLeavesForeignStatusesAlone(t *testing.T) {
	rooms := newFakeRoomStore(&models.Room{ID: 1, Number: "101", Status: models.RoomRented})
	contracts := newFakeContractStore(
		&models.Contract{ID: 10, RoomID: 1, Status: models.ContractActive},
		&models.Contract{ID: 11, RoomID: 1, Status: models.ContractTerminated},
		&models.Contract{ID: 12, RoomID: 2, Status: models.ContractActive},
	)
	svc := NewRoomStateService(rooms, contracts)

	result, err := svc.MarkExpiring(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ContractsExpected)
	assert.Equal(t, models.ContractTerminated, contracts.contracts[11].Status)
	assert.Equal(t, models.ContractActive, contracts.contracts[12].Status)
}

func TestMarkExpiringReportsPartialFanOut(t *testing.T) {
	rooms := newFakeRoomStore(&models.Room{ID: 1, Number: "101", Status: models.RoomRented})
	contracts := newFakeContractStore(
		&models.Contract{ID: 10, RoomID: 1, Status: models.ContractActive},
		&models.Contract{ID: 11, RoomID: 1, Status: models.ContractActive},
	)
	contracts.failStatusForID = 11
	contracts.updateStatusErrFor = errors.New("row locked")
	svc := NewRoomStateService(rooms, contracts)

	result, err := svc.MarkExpiring(context.Background(), 1)
	require.NoError(t, err)

	// The room transition and the successful contract stay applied.
	assert.Equal(t, models.RoomExpiring, rooms.rooms[1].Status)
	assert.Equal(t, models.ContractExpiring, contracts.contracts[10].Status)
	assert.Equal(t, models.ContractActive, contracts.contracts[11].Status)
	assert.Equal(t, 2, result.ContractsExpected)
	assert.Equal(t, 1, result.ContractsUpdated)
}

func TestExpiringTransitionsRejectUndefinedEdges(t *testing.T) {
	cases := []struct {
		name       string
		roomStatus string
		call       func(*RoomStateService) (*SyncResult, error)
	}{
		{"mark expiring on available", models.RoomAvailable, func(s *RoomStateService) (*SyncResult, error) {
			return s.MarkExpiring(context.Background(), 1)
		}},
		{"mark expiring on reserved", models.RoomReserved, func(s *RoomStateService) (*SyncResult, error) {
			return s.MarkExpiring(context.Background(), 1)
		}},
		{"cancel expiring on available", models.RoomAvailable, func(s *RoomStateService) (*SyncResult, error) {
			return s.CancelExpiring(context.Background(), 1)
		}},
		{"cancel expiring on reserved", models.RoomReserved, func(s *RoomStateService) (*SyncResult, error) {
			return s.CancelExpiring(context.Background(), 1)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rooms := newFakeRoomStore(&models.Room{ID: 1, Number: "101", Status: tc.roomStatus})
			contracts := newFakeContractStore(
				&models.Contract{ID: 10, RoomID: 1, Status: models.ContractActive},
			)
			svc := NewRoomStateService(rooms, contracts)

			_, err := tc.call(svc)
			assert.True(t, apperrors.IsStateConflict(err), "want state conflict, got %v", err)

			// Neither store is touched on a rejected edge.
			assert.Equal(t, tc.roomStatus, rooms.rooms[1].Status)
			assert.Equal(t, models.ContractActive, contracts.contracts[10].Status)
		})
	}
}

func TestCancelExpiringOnRentedRoomIsNoOp(t *testing.T) {
	rooms := newFakeRoomStore(&models.Room{ID: 1, Number: "101", Status: models.RoomRented})
	contracts := newFakeContractStore(
		&models.Contract{ID: 10, RoomID: 1, Status: models.ContractActive},
	)
	svc := NewRoomStateService(rooms, contracts)

	result, err := svc.CancelExpiring(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoomRented, rooms.rooms[1].Status)
	assert.Equal(t, 0, result.ContractsExpected)
}

func TestMarkExpiringUnknownRoom(t *testing.T) {
	svc := NewRoomStateService(newFakeRoomStore(), newFakeContractStore())

	_, err := svc.MarkExpiring(context.Background(), 42)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMarkExpiringRoomUpdateFailureAborts(t *testing.T) {
	rooms := newFakeRoomStore(&models.Room{ID: 1, Number: "101", Status: models.RoomRented})
	rooms.updateStatusErr = errors.New("connection reset")
	contracts := newFakeContractStore(
		&models.Contract{ID: 10, RoomID: 1, Status: models.ContractActive},
	)
	svc := NewRoomStateService(rooms, contracts)

	_, err := svc.MarkExpiring(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, models.ContractActive, contracts.contracts[10].Status)
}
