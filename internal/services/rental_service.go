package services

import (
	"context"
	"fmt"
	"log"
	"regexp"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/saga"
	"rental-backend/internal/timeutil"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// RentalService coordinates the tenant, room, contract and deposit
// stores to commit a rental agreement as one logical operation. The
// stores share no transaction, so every applied side effect is recorded
// in a compensation ledger and unwound in reverse when a later phase
// fails.
type RentalService struct {
	tenants   TenantStore
	rooms     RoomStore
	contracts ContractStore
	deposits  DepositContractStore
	images    ImageStore // optional, nil disables image attachment
}

func NewRentalService(tenants TenantStore, rooms RoomStore, contracts ContractStore, deposits DepositContractStore, images ImageStore) *RentalService {
	return &RentalService{
		tenants:   tenants,
		rooms:     rooms,
		contracts: contracts,
		deposits:  deposits,
		images:    images,
	}
}

// agreementState carries the working set of one commit through its
// phases.
type agreementState struct {
	req          *models.RentalAgreementRequest
	room         *models.Room     // pre-operation snapshot, new mode
	prevContract *models.Contract // pre-operation snapshot, edit mode
	tenants      []*models.Tenant // reconciled, in input order
	createdIDs   []int
	contract     *models.Contract
	ledger       *saga.Ledger
}

// phase is one ordered step of the commit. Non-critical phases log
// their failures and never abort the run.
type phase struct {
	name     string
	critical bool
	run      func(ctx context.Context, st *agreementState) error
}

// newModePhases starts a lease: it also transitions the room and closes
// any matching deposit contract.
func (s *RentalService) newModePhases() []phase {
	return []phase{
		{name: "tenant reconciliation", critical: true, run: s.reconcileTenants},
		{name: "image attachment", critical: false, run: s.attachTenantImages},
		{name: "contract write", critical: true, run: s.writeContract},
		{name: "tenant contract link", critical: true, run: s.linkTenantsToContract},
		{name: "room transition", critical: true, run: s.transitionRoom},
		{name: "deposit closure", critical: true, run: s.closeDepositContract},
	}
}

// editModePhases amends a lease: removed occupants get their lease
// ended and vehicles are regrouped, but the room and deposit contract
// are never touched.
func (s *RentalService) editModePhases() []phase {
	return []phase{
		{name: "tenant reconciliation", critical: true, run: s.reconcileTenants},
		{name: "image attachment", critical: false, run: s.attachTenantImages},
		{name: "removed tenant lease end", critical: true, run: s.endRemovedTenants},
		{name: "vehicle reconciliation", critical: true, run: s.reconcileVehicles},
		{name: "contract write", critical: true, run: s.writeContract},
	}
}

// CommitRentalAgreement validates the request, then runs the mode's
// phase list in order. Input problems are rejected before any side
// effect. A critical phase failure after tenant reconciliation unwinds
// the ledger in reverse; a failed undo surfaces as a RollbackError
// carrying the original cause.
func (s *RentalService) CommitRentalAgreement(ctx context.Context, req *models.RentalAgreementRequest) (*models.AgreementResult, error) {
	if err := validateAgreement(req); err != nil {
		return nil, err
	}

	st := &agreementState{req: req, ledger: saga.New()}

	if err := s.loadSnapshots(ctx, st); err != nil {
		metrics.AgreementCommitsTotal.WithLabelValues(req.Mode, "error").Inc()
		return nil, err
	}

	phases := s.newModePhases()
	if req.Mode == models.AgreementModeEdit {
		phases = s.editModePhases()
	}

	for i, p := range phases {
		err := p.run(ctx, st)
		if err == nil {
			continue
		}
		if !p.critical {
			log.Printf("[Rental] non-critical phase %q: %v", p.name, err)
			continue
		}

		log.Printf("[Rental] phase %q failed, compensating %d step(s): %v", p.name, st.ledger.Len(), err)
		metrics.AgreementCommitsTotal.WithLabelValues(req.Mode, "failed").Inc()

		// The first phase needs no compensation: nothing before it
		// has applied any effect worth keeping the ledger for.
		if i == 0 {
			return nil, err
		}
		unwound := st.ledger.Unwind(ctx, err)
		if apperrors.IsRollback(unwound) {
			metrics.CompensationRunsTotal.WithLabelValues("partial").Inc()
		} else {
			metrics.CompensationRunsTotal.WithLabelValues("reverted").Inc()
		}
		return nil, unwound
	}

	st.ledger.Discard()
	metrics.AgreementCommitsTotal.WithLabelValues(req.Mode, "committed").Inc()

	return &models.AgreementResult{Contract: st.contract, Tenants: st.tenants}, nil
}

// loadSnapshots fetches the pre-operation state the phases and their
// compensations need.
func (s *RentalService) loadSnapshots(ctx context.Context, st *agreementState) error {
	if st.req.Mode == models.AgreementModeEdit {
		prev, err := s.contracts.Get(ctx, *st.req.ContractID)
		if err != nil {
			return apperrors.NewExternalCall("contract store: get", err)
		}
		if prev == nil {
			return apperrors.NewNotFound("contract", fmt.Sprint(*st.req.ContractID))
		}
		st.prevContract = prev
		return nil
	}

	room, err := s.rooms.Get(ctx, st.req.RoomID)
	if err != nil {
		return apperrors.NewExternalCall("room store: get", err)
	}
	if room == nil {
		return apperrors.NewNotFound("room", fmt.Sprint(st.req.RoomID))
	}
	// A room already rented (or winding down a lease) holds an active
	// contract; a second one is never stacked on top.
	if room.Status == models.RoomRented || room.Status == models.RoomExpiring {
		return &apperrors.StateConflictError{Resource: "room", From: room.Status, To: models.RoomRented}
	}
	st.room = room
	return nil
}

func (s *RentalService) reconcileTenants(ctx context.Context, st *agreementState) error {
	terms := st.req.Terms

	for i, input := range st.req.Tenants {
		vehicles := vehiclesForOwner(st.req.Vehicles, i)

		if input.ID != nil {
			patch := &models.TenantPatch{
				FullName:   strPtr(input.FullName),
				Phone:      strPtr(input.Phone),
				Email:      strPtr(input.Email),
				IDNumber:   strPtr(input.IDNumber),
				Address:    strPtr(input.Address),
				LeaseStart: &terms.StartDate,
				LeaseEnd:   &terms.EndDate,
				RentPrice:  &terms.MonthlyRent,
				Deposit:    &terms.Deposit,
				Vehicles:   vehicles,
			}
			updated, err := s.tenants.Update(ctx, *input.ID, patch)
			if err != nil {
				return apperrors.NewExternalCall("tenant store: update", err)
			}
			st.tenants = append(st.tenants, updated)
			// Updates are not reverted; only creations carry an undo.
			st.ledger.Record(fmt.Sprintf("update tenant %d", *input.ID), nil)
			continue
		}

		tenant := &models.Tenant{
			FullName:   input.FullName,
			Phone:      input.Phone,
			Email:      input.Email,
			IDNumber:   input.IDNumber,
			Address:    input.Address,
			RoomID:     &st.req.RoomID,
			LeaseStart: &terms.StartDate,
			LeaseEnd:   &terms.EndDate,
			RentPrice:  terms.MonthlyRent,
			Deposit:    terms.Deposit,
			Status:     models.TenantActive,
			Vehicles:   vehicles,
		}
		if err := s.tenants.Create(ctx, tenant); err != nil {
			return apperrors.NewExternalCall("tenant store: create", err)
		}
		st.tenants = append(st.tenants, tenant)
		st.createdIDs = append(st.createdIDs, tenant.ID)

		id := tenant.ID
		st.ledger.Record(fmt.Sprintf("create tenant %d", id), func(ctx context.Context) error {
			return s.tenants.Archive(ctx, id)
		})
	}
	return nil
}

// attachTenantImages uploads pending images and attaches the resulting
// URLs. This phase is best effort: a broken upload loses that image and
// nothing else.
func (s *RentalService) attachTenantImages(ctx context.Context, st *agreementState) error {
	if s.images == nil {
		return nil
	}

	for i, input := range st.req.Tenants {
		if len(input.PendingImages) == 0 {
			continue
		}
		tenant := st.tenants[i]

		var urls []string
		for _, img := range input.PendingImages {
			key := fmt.Sprintf("tenants/%d/%d_%s", tenant.ID, timeutil.Now().UnixNano(), img.Filename)
			url, err := s.images.Upload(ctx, key, img.ContentType, img.Content)
			if err != nil {
				log.Printf("[Rental] image upload for tenant %d failed: %v", tenant.ID, err)
				continue
			}
			urls = append(urls, url)
		}
		if len(urls) == 0 {
			continue
		}
		if err := s.tenants.AttachImages(ctx, tenant.ID, urls); err != nil {
			log.Printf("[Rental] image attach for tenant %d failed: %v", tenant.ID, err)
			continue
		}
		tenant.Images = append(tenant.Images, urls...)
		st.ledger.Record(fmt.Sprintf("attach images tenant %d", tenant.ID), nil)
	}
	return nil
}

// endRemovedTenants ends the lease of occupants present on the original
// contract but absent from the new input set. Already-ended tenants are
// left alone.
func (s *RentalService) endRemovedTenants(ctx context.Context, st *agreementState) error {
	keep := make(map[int]bool, len(st.req.Tenants))
	for _, input := range st.req.Tenants {
		if input.ID != nil {
			keep[*input.ID] = true
		}
	}

	now := timeutil.Now()
	for _, id := range st.prevContract.TenantIDs {
		if keep[id] {
			continue
		}
		tenant, err := s.tenants.Get(ctx, id)
		if err != nil {
			return apperrors.NewExternalCall("tenant store: get", err)
		}
		if tenant == nil || tenant.Status == models.TenantEnded {
			continue
		}
		if err := s.tenants.EndLease(ctx, id, now); err != nil {
			return apperrors.NewExternalCall("tenant store: end lease", err)
		}
		st.ledger.Record(fmt.Sprintf("end lease tenant %d", id), nil)
	}
	return nil
}

// reconcileVehicles regroups the vehicle list per owning tenant,
// independent of the tenant phase.
func (s *RentalService) reconcileVehicles(ctx context.Context, st *agreementState) error {
	for i := range st.req.Tenants {
		vehicles := vehiclesForOwner(st.req.Vehicles, i)
		tenant := st.tenants[i]
		patch := &models.TenantPatch{Vehicles: vehicles}
		if _, err := s.tenants.Update(ctx, tenant.ID, patch); err != nil {
			return apperrors.NewExternalCall("tenant store: update vehicles", err)
		}
		tenant.Vehicles = vehicles
		st.ledger.Record(fmt.Sprintf("update vehicles tenant %d", tenant.ID), nil)
	}
	return nil
}

func (s *RentalService) writeContract(ctx context.Context, st *agreementState) error {
	terms := st.req.Terms

	tenantIDs := make([]int, len(st.tenants))
	for i, t := range st.tenants {
		tenantIDs[i] = t.ID
	}
	var contractVehicles []models.ContractVehicle
	for _, v := range st.req.Vehicles {
		contractVehicles = append(contractVehicles, models.ContractVehicle{
			OwnerTenantID: st.tenants[v.OwnerIndex].ID,
			LicensePlate:  v.LicensePlate,
			VehicleType:   v.VehicleType,
		})
	}

	contract := &models.Contract{
		RoomID:              st.req.RoomID,
		TenantID:            tenantIDs[0],
		TenantIDs:           tenantIDs,
		StartDate:           terms.StartDate,
		EndDate:             terms.EndDate,
		MonthlyRent:         terms.MonthlyRent,
		Deposit:             terms.Deposit,
		ElectricPrice:       terms.ElectricPrice,
		WaterPrice:          terms.WaterPrice,
		WaterPricePerPerson: terms.WaterPricePerPerson,
		WaterChargeType:     terms.WaterChargeType,
		ServicePrice:        terms.ServicePrice,
		PaymentCycle:        terms.PaymentCycle,
		Status:              models.ContractActive,
		Vehicles:            contractVehicles,
		Notes:               terms.Notes,
	}
	if terms.CurrentElectricIndex != nil {
		contract.CurrentElectricIndex = *terms.CurrentElectricIndex
	}
	if terms.CurrentWaterIndex != nil {
		contract.CurrentWaterIndex = *terms.CurrentWaterIndex
	}
	if terms.WaterChargeType == "" {
		contract.WaterChargeType = models.WaterChargeFixed
	}
	if terms.PaymentCycle == "" {
		contract.PaymentCycle = models.CycleMonthly
	}

	if st.req.Mode == models.AgreementModeEdit {
		prev := st.prevContract
		contract.ID = prev.ID
		contract.RoomID = prev.RoomID
		contract.Status = prev.Status
		if err := s.contracts.Update(ctx, contract); err != nil {
			return apperrors.NewExternalCall("contract store: update", err)
		}
		st.ledger.Record(fmt.Sprintf("update contract %d", prev.ID), func(ctx context.Context) error {
			return s.contracts.Update(ctx, prev)
		})
	} else {
		if err := s.contracts.Create(ctx, contract); err != nil {
			return apperrors.NewExternalCall("contract store: create", err)
		}
		id := contract.ID
		st.ledger.Record(fmt.Sprintf("create contract %d", id), func(ctx context.Context) error {
			return s.contracts.Delete(ctx, id)
		})
	}

	st.contract = contract
	return nil
}

func (s *RentalService) linkTenantsToContract(ctx context.Context, st *agreementState) error {
	for _, tenant := range st.tenants {
		id := tenant.ID
		if err := s.tenants.SetContract(ctx, id, &st.contract.ID); err != nil {
			return apperrors.NewExternalCall("tenant store: set contract", err)
		}
		tenant.ContractID = &st.contract.ID
		st.ledger.Record(fmt.Sprintf("link tenant %d", id), func(ctx context.Context) error {
			return s.tenants.SetContract(ctx, id, nil)
		})
	}
	return nil
}

func (s *RentalService) transitionRoom(ctx context.Context, st *agreementState) error {
	prev := st.room
	terms := st.req.Terms

	if err := s.rooms.UpdateStatus(ctx, prev.ID, models.RoomRented, &terms.StartDate, &terms.EndDate); err != nil {
		return apperrors.NewExternalCall("room store: update status", err)
	}
	st.ledger.Record(fmt.Sprintf("room %d -> rented", prev.ID), func(ctx context.Context) error {
		return s.rooms.UpdateStatus(ctx, prev.ID, prev.Status, prev.LeaseStart, prev.LeaseEnd)
	})
	return nil
}

func (s *RentalService) closeDepositContract(ctx context.Context, st *agreementState) error {
	dep, err := s.deposits.FindActiveByRoom(ctx, st.req.RoomID)
	if err != nil {
		return apperrors.NewExternalCall("deposit store: find active", err)
	}
	if dep == nil {
		return nil
	}
	if err := s.deposits.SetStatus(ctx, dep.ID, models.DepositFulfilled); err != nil {
		return apperrors.NewExternalCall("deposit store: set status", err)
	}
	id := dep.ID
	st.ledger.Record(fmt.Sprintf("fulfil deposit %d", id), func(ctx context.Context) error {
		return s.deposits.SetStatus(ctx, id, models.DepositActive)
	})
	return nil
}

// validateAgreement rejects bad input before any side effect.
func validateAgreement(req *models.RentalAgreementRequest) error {
	switch req.Mode {
	case models.AgreementModeNew:
	case models.AgreementModeEdit:
		if req.ContractID == nil {
			return apperrors.NewValidation("contract_id", "edit mode requires a contract id")
		}
	default:
		return apperrors.NewValidation("mode", "mode must be new or edit")
	}

	if len(req.Tenants) == 0 {
		return apperrors.NewValidation("tenants", "at least one tenant is required")
	}
	for i, t := range req.Tenants {
		field := fmt.Sprintf("tenants[%d]", i)
		if t.FullName == "" {
			return apperrors.NewValidation(field+".full_name", "full name is required")
		}
		if !phonePattern.MatchString(t.Phone) {
			return apperrors.NewValidation(field+".phone", "phone must be 10 digits")
		}
		if t.IDNumber == "" {
			return apperrors.NewValidation(field+".id_number", "identification number is required")
		}
	}

	terms := req.Terms
	if terms.StartDate.IsZero() {
		return apperrors.NewValidation("start_date", "start date is required")
	}
	if terms.EndDate.IsZero() || !terms.EndDate.After(terms.StartDate) {
		return apperrors.NewValidation("end_date", "end date must be after the start date")
	}
	if terms.Deposit <= 0 {
		return apperrors.NewValidation("deposit", "deposit must be positive")
	}
	if terms.MonthlyRent <= 0 {
		return apperrors.NewValidation("monthly_rent", "monthly rent must be positive")
	}
	if terms.ElectricPrice < 0 {
		return apperrors.NewValidation("electric_price", "electricity price cannot be negative")
	}
	if terms.WaterChargeType == models.WaterChargePerPerson {
		if terms.WaterPricePerPerson < 0 {
			return apperrors.NewValidation("water_price_per_person", "water price cannot be negative")
		}
	} else if terms.WaterPrice < 0 {
		return apperrors.NewValidation("water_price", "water price cannot be negative")
	}
	if terms.ServicePrice < 0 {
		return apperrors.NewValidation("service_price", "service price cannot be negative")
	}
	if terms.CurrentElectricIndex != nil && *terms.CurrentElectricIndex < 0 {
		return apperrors.NewValidation("current_electric_index", "meter baseline cannot be negative")
	}
	if terms.CurrentWaterIndex != nil && *terms.CurrentWaterIndex < 0 {
		return apperrors.NewValidation("current_water_index", "meter baseline cannot be negative")
	}

	for i, v := range req.Vehicles {
		if v.OwnerIndex < 0 || v.OwnerIndex >= len(req.Tenants) {
			return apperrors.NewValidation(fmt.Sprintf("vehicles[%d].owner_index", i), "owner index does not reference a tenant")
		}
	}
	return nil
}

func vehiclesForOwner(inputs []models.VehicleInput, ownerIndex int) []models.Vehicle {
	var out []models.Vehicle
	for _, v := range inputs {
		if v.OwnerIndex == ownerIndex {
			out = append(out, models.Vehicle{LicensePlate: v.LicensePlate, VehicleType: v.VehicleType})
		}
	}
	return out
}

func strPtr(s string) *string { return &s }
