package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
)

func validTerms() models.LeaseTerms {
	return models.LeaseTerms{
		StartDate:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		MonthlyRent:     4000000,
		Deposit:         4000000,
		ElectricPrice:   3500,
		WaterPrice:      25000,
		WaterChargeType: models.WaterChargeFixed,
		ServicePrice:    150000,
	}
}

func newAgreementRequest() *models.RentalAgreementRequest {
	return &models.RentalAgreementRequest{
		Mode:   models.AgreementModeNew,
		RoomID: 1,
		Tenants: []models.TenantInput{
			{FullName: "Nguyen Van An", Phone: "0912345678", IDNumber: "012345678901"},
		},
		Terms: validTerms(),
	}
}

type testStores struct {
	tenants   *fakeTenantStore
	rooms     *fakeRoomStore
	contracts *fakeContractStore
	deposits  *fakeDepositStore
}

func newTestStores() *testStores {
	return &testStores{
		tenants:   newFakeTenantStore(),
		rooms:     newFakeRoomStore(&models.Room{ID: 1, Number: "101", Status: models.RoomReserved}),
		contracts: newFakeContractStore(),
		deposits: newFakeDepositStore(&models.DepositContract{
			ID: 7, RoomID: 1, TenantName: "Nguyen Van An", Status: models.DepositActive,
		}),
	}
}

func (ts *testStores) service() *RentalService {
	return NewRentalService(ts.tenants, ts.rooms, ts.contracts, ts.deposits, nil)
}

func TestCommitNewAgreement(t *testing.T) {
	ts := newTestStores()
	svc := ts.service()

	result, err := svc.CommitRentalAgreement(context.Background(), newAgreementRequest())
	require.NoError(t, err)
	require.NotNil(t, result.Contract)
	require.Len(t, result.Tenants, 1)

	// Exactly one new active tenant, linked back to the contract.
	tenant := ts.tenants.tenants[result.Tenants[0].ID]
	assert.Equal(t, models.TenantActive, tenant.Status)
	assert.False(t, tenant.IsArchived)
	require.NotNil(t, tenant.ContractID)
	assert.Equal(t, result.Contract.ID, *tenant.ContractID)

	// Room moved to rented and carries the lease dates.
	room := ts.rooms.rooms[1]
	assert.Equal(t, models.RoomRented, room.Status)
	require.NotNil(t, room.LeaseStart)
	assert.Equal(t, validTerms().StartDate, *room.LeaseStart)

	// The matching deposit contract is fulfilled.
	assert.Equal(t, models.DepositFulfilled, ts.deposits.deposits[7].Status)

	// The persisted contract references the tenant.
	contract := ts.contracts.contracts[result.Contract.ID]
	assert.Equal(t, []int{tenant.ID}, contract.TenantIDs)
	assert.Equal(t, models.ContractActive, contract.Status)
}

func TestCommitValidationRejectsBeforeSideEffects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.RentalAgreementRequest)
	}{
		{"bad mode", func(r *models.RentalAgreementRequest) { r.Mode = "replace" }},
		{"no tenants", func(r *models.RentalAgreementRequest) { r.Tenants = nil }},
		{"empty name", func(r *models.RentalAgreementRequest) { r.Tenants[0].FullName = "" }},
		{"short phone", func(r *models.RentalAgreementRequest) { r.Tenants[0].Phone = "12345" }},
		{"alpha phone", func(r *models.RentalAgreementRequest) { r.Tenants[0].Phone = "09123456ab" }},
		{"missing id number", func(r *models.RentalAgreementRequest) { r.Tenants[0].IDNumber = "" }},
		{"end before start", func(r *models.RentalAgreementRequest) { r.Terms.EndDate = r.Terms.StartDate.AddDate(0, -1, 0) }},
		{"zero deposit", func(r *models.RentalAgreementRequest) { r.Terms.Deposit = 0 }},
		{"zero rent", func(r *models.RentalAgreementRequest) { r.Terms.MonthlyRent = 0 }},
		{"negative electric price", func(r *models.RentalAgreementRequest) { r.Terms.ElectricPrice = -1 }},
		{"negative meter baseline", func(r *models.RentalAgreementRequest) {
			bad := -5.0
			r.Terms.CurrentElectricIndex = &bad
		}},
		{"vehicle owner out of range", func(r *models.RentalAgreementRequest) {
			r.Vehicles = []models.VehicleInput{{OwnerIndex: 3, LicensePlate: "59A-123.45", VehicleType: "motorbike"}}
		}},
		{"edit without contract id", func(r *models.RentalAgreementRequest) { r.Mode = models.AgreementModeEdit }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestStores()
			req := newAgreementRequest()
			tc.mutate(req)

			_, err := ts.service().CommitRentalAgreement(context.Background(), req)
			assert.True(t, apperrors.IsValidation(err), "want validation error, got %v", err)

			// Rejected input never reaches a store.
			assert.Equal(t, 0, ts.tenants.createCalls)
			assert.Empty(t, ts.contracts.contracts)
			assert.Equal(t, models.RoomReserved, ts.rooms.rooms[1].Status)
		})
	}
}

func TestCommitRefusesRoomWithLiveContract(t *testing.T) {
	for _, status := range []string{models.RoomRented, models.RoomExpiring} {
		t.Run(status, func(t *testing.T) {
			ts := newTestStores()
			ts.rooms = newFakeRoomStore(&models.Room{ID: 1, Number: "101", Status: status})

			_, err := ts.service().CommitRentalAgreement(context.Background(), newAgreementRequest())
			assert.True(t, apperrors.IsStateConflict(err), "want state conflict, got %v", err)
			assert.Equal(t, 0, ts.tenants.createCalls)
			assert.Empty(t, ts.contracts.contracts)
		})
	}
}

func TestContractWriteFailureCompensates(t *testing.T) {
	ts := newTestStores()
	ts.contracts.createErr = errors.New("contract insert failed")

	_, err := ts.service().CommitRentalAgreement(context.Background(), newAgreementRequest())
	require.Error(t, err)

	var extErr *apperrors.ExternalCallError
	assert.ErrorAs(t, err, &extErr)
	assert.False(t, apperrors.IsRollback(err))

	// Room and deposit contract are back to their pre-operation state.
	assert.Equal(t, models.RoomReserved, ts.rooms.rooms[1].Status)
	assert.Equal(t, models.DepositActive, ts.deposits.deposits[7].Status)

	// The tenant created in phase 1 is archived, not deleted.
	require.Len(t, ts.tenants.tenants, 1)
	for _, tenant := range ts.tenants.tenants {
		assert.Equal(t, models.TenantEnded, tenant.Status)
		assert.True(t, tenant.IsArchived)
	}
	assert.Empty(t, ts.contracts.contracts)
}

func TestEveryFailurePointFullyReverts(t *testing.T) {
	cases := []struct {
		name string
		arm  func(*testStores)
	}{
		{"contract write", func(ts *testStores) { ts.contracts.createErr = errors.New("boom") }},
		{"tenant contract link", func(ts *testStores) { ts.tenants.setContractErr = errors.New("boom") }},
		{"room transition", func(ts *testStores) { ts.rooms.updateStatusErr = errors.New("boom") }},
		{"deposit closure", func(ts *testStores) { ts.deposits.setStatusErr = errors.New("boom") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestStores()
			tc.arm(ts)

			_, err := ts.service().CommitRentalAgreement(context.Background(), newAgreementRequest())
			require.Error(t, err)

			assert.Equal(t, models.RoomReserved, ts.rooms.rooms[1].Status)
			assert.Nil(t, ts.rooms.rooms[1].LeaseStart)
			assert.Equal(t, models.DepositActive, ts.deposits.deposits[7].Status)
			assert.Empty(t, ts.contracts.contracts)
			for _, tenant := range ts.tenants.tenants {
				assert.True(t, tenant.IsArchived)
			}
		})
	}
}

func TestRoomTransitionFailureRestoresLeaseFields(t *testing.T) {
	// A room that already carried lease fields gets them back on revert.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := newTestStores()
	ts.rooms = newFakeRoomStore(&models.Room{ID: 1, Number: "101", Status: models.RoomReserved, LeaseStart: &start})
	ts.deposits.setStatusErr = errors.New("deposit store down")

	_, err := ts.service().CommitRentalAgreement(context.Background(), newAgreementRequest())
	require.Error(t, err)

	room := ts.rooms.rooms[1]
	assert.Equal(t, models.RoomReserved, room.Status)
	require.NotNil(t, room.LeaseStart)
	assert.Equal(t, start, *room.LeaseStart)
}

func TestTenantPhaseFailureSkipsCompensation(t *testing.T) {
	ts := newTestStores()
	ts.tenants.createErr = errors.New("tenant insert failed")
	ts.tenants.failCreateOnCall = 2

	req := newAgreementRequest()
	req.Tenants = append(req.Tenants, models.TenantInput{
		FullName: "Tran Thi Binh", Phone: "0987654321", IDNumber: "098765432109",
	})

	_, err := ts.service().CommitRentalAgreement(context.Background(), req)
	require.Error(t, err)

	// Phase 1 failures are returned as-is; the tenant created before
	// the failure is not archived.
	require.Len(t, ts.tenants.tenants, 1)
	for _, tenant := range ts.tenants.tenants {
		assert.False(t, tenant.IsArchived)
	}
	assert.Empty(t, ts.contracts.contracts)
	assert.Equal(t, models.RoomReserved, ts.rooms.rooms[1].Status)
}

func TestRollbackFailureSurfacedDistinctly(t *testing.T) {
	ts := newTestStores()
	ts.deposits.setStatusErr = errors.New("deposit store down")
	ts.tenants.archiveErr = errors.New("archive rejected")

	_, err := ts.service().CommitRentalAgreement(context.Background(), newAgreementRequest())

	var rbErr *apperrors.RollbackError
	require.ErrorAs(t, err, &rbErr)
	assert.NotEmpty(t, rbErr.FailedSteps)
	// The original failure stays attached as the cause.
	var extErr *apperrors.ExternalCallError
	assert.ErrorAs(t, rbErr.Cause, &extErr)
}

func TestImageFailureIsNonCritical(t *testing.T) {
	ts := newTestStores()
	images := &fakeImageStore{uploadErr: errors.New("bucket unreachable")}
	svc := NewRentalService(ts.tenants, ts.rooms, ts.contracts, ts.deposits, images)

	req := newAgreementRequest()
	req.Tenants[0].PendingImages = []models.PendingImage{
		{Filename: "id-card.jpg", ContentType: "image/jpeg", Content: []byte("fake")},
	}

	result, err := svc.CommitRentalAgreement(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.RoomRented, ts.rooms.rooms[1].Status)
	assert.Empty(t, result.Tenants[0].Images)
}

func TestImageUploadAttachesURLs(t *testing.T) {
	ts := newTestStores()
	images := &fakeImageStore{}
	svc := NewRentalService(ts.tenants, ts.rooms, ts.contracts, ts.deposits, images)

	req := newAgreementRequest()
	req.Tenants[0].PendingImages = []models.PendingImage{
		{Filename: "id-card.jpg", ContentType: "image/jpeg", Content: []byte("fake")},
		{Filename: "portrait.jpg", ContentType: "image/jpeg", Content: []byte("fake")},
	}

	result, err := svc.CommitRentalAgreement(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, images.uploaded, 2)
	assert.Len(t, ts.tenants.tenants[result.Tenants[0].ID].Images, 2)
}

func TestCommitEditAgreement(t *testing.T) {
	ts := newTestStores()

	// Seed the existing lease: two tenants on one contract.
	keep := &models.Tenant{FullName: "Nguyen Van An", Phone: "0912345678", IDNumber: "012345678901", Status: models.TenantActive}
	removed := &models.Tenant{FullName: "Tran Thi Binh", Phone: "0987654321", IDNumber: "098765432109", Status: models.TenantActive}
	require.NoError(t, ts.tenants.Create(context.Background(), keep))
	require.NoError(t, ts.tenants.Create(context.Background(), removed))

	contractID := 10
	ts.contracts = newFakeContractStore(&models.Contract{
		ID: contractID, RoomID: 1, TenantID: keep.ID, TenantIDs: []int{keep.ID, removed.ID},
		Status: models.ContractActive, MonthlyRent: 3500000,
	})

	req := newAgreementRequest()
	req.Mode = models.AgreementModeEdit
	req.ContractID = &contractID
	req.Tenants = []models.TenantInput{
		{ID: &keep.ID, FullName: "Nguyen Van An", Phone: "0912345678", IDNumber: "012345678901"},
	}
	req.Vehicles = []models.VehicleInput{
		{OwnerIndex: 0, LicensePlate: "59A-123.45", VehicleType: "motorbike"},
	}

	result, err := ts.service().CommitRentalAgreement(context.Background(), req)
	require.NoError(t, err)

	// Removed tenant had the lease ended, not deleted.
	assert.Equal(t, models.TenantEnded, ts.tenants.tenants[removed.ID].Status)
	assert.False(t, ts.tenants.tenants[removed.ID].IsArchived)

	// Kept tenant got the regrouped vehicle.
	require.Len(t, ts.tenants.tenants[keep.ID].Vehicles, 1)
	assert.Equal(t, "59A-123.45", ts.tenants.tenants[keep.ID].Vehicles[0].LicensePlate)

	// Contract updated in place with the new tenant list and rent.
	contract := ts.contracts.contracts[contractID]
	assert.Equal(t, []int{keep.ID}, contract.TenantIDs)
	assert.Equal(t, 4000000.0, contract.MonthlyRent)
	assert.Equal(t, result.Contract.ID, contractID)

	// Edit mode never touches the room or the deposit contract.
	assert.Equal(t, models.RoomReserved, ts.rooms.rooms[1].Status)
	assert.Equal(t, models.DepositActive, ts.deposits.deposits[7].Status)
}

func TestEditLeaseEndIsIdempotent(t *testing.T) {
	ts := newTestStores()

	keep := &models.Tenant{FullName: "Nguyen Van An", Phone: "0912345678", IDNumber: "012345678901", Status: models.TenantActive}
	gone := &models.Tenant{FullName: "Tran Thi Binh", Phone: "0987654321", IDNumber: "098765432109", Status: models.TenantEnded}
	require.NoError(t, ts.tenants.Create(context.Background(), keep))
	require.NoError(t, ts.tenants.Create(context.Background(), gone))
	ended := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ts.tenants.tenants[gone.ID].Status = models.TenantEnded
	ts.tenants.tenants[gone.ID].LeaseEnd = &ended

	contractID := 11
	ts.contracts = newFakeContractStore(&models.Contract{
		ID: contractID, RoomID: 1, TenantID: keep.ID, TenantIDs: []int{keep.ID, gone.ID},
		Status: models.ContractActive,
	})

	req := newAgreementRequest()
	req.Mode = models.AgreementModeEdit
	req.ContractID = &contractID
	req.Tenants = []models.TenantInput{
		{ID: &keep.ID, FullName: "Nguyen Van An", Phone: "0912345678", IDNumber: "012345678901"},
	}

	_, err := ts.service().CommitRentalAgreement(context.Background(), req)
	require.NoError(t, err)

	// No duplicate end-lease mutation for the already-ended tenant.
	assert.Equal(t, 0, ts.tenants.endLeaseCalls)
	assert.Equal(t, ended, *ts.tenants.tenants[gone.ID].LeaseEnd)
}

func TestEditContractWriteFailureLeavesPreviousPayload(t *testing.T) {
	ts := newTestStores()

	keep := &models.Tenant{FullName: "Nguyen Van An", Phone: "0912345678", IDNumber: "012345678901", Status: models.TenantActive}
	require.NoError(t, ts.tenants.Create(context.Background(), keep))

	contractID := 12
	ts.contracts = newFakeContractStore(&models.Contract{
		ID: contractID, RoomID: 1, TenantID: keep.ID, TenantIDs: []int{keep.ID},
		Status: models.ContractActive, MonthlyRent: 3500000,
	})
	// The write itself is rejected, so the stored contract must keep
	// its previous payload untouched.
	ts.contracts.updateErr = errors.New("update rejected")

	req := newAgreementRequest()
	req.Mode = models.AgreementModeEdit
	req.ContractID = &contractID
	req.Tenants = []models.TenantInput{
		{ID: &keep.ID, FullName: "Nguyen Van An", Phone: "0912345678", IDNumber: "012345678901"},
	}

	_, err := ts.service().CommitRentalAgreement(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 3500000.0, ts.contracts.contracts[contractID].MonthlyRent)
}

func TestCommitWithoutDepositContract(t *testing.T) {
	ts := newTestStores()
	ts.deposits = newFakeDepositStore() // no reservation on the room

	result, err := ts.service().CommitRentalAgreement(context.Background(), newAgreementRequest())
	require.NoError(t, err)
	assert.Equal(t, models.RoomRented, ts.rooms.rooms[1].Status)
	assert.NotNil(t, result.Contract)
}

func TestCommitUnknownRoom(t *testing.T) {
	ts := newTestStores()
	req := newAgreementRequest()
	req.RoomID = 99

	_, err := ts.service().CommitRentalAgreement(context.Background(), req)
	assert.True(t, apperrors.IsNotFound(err))
}
