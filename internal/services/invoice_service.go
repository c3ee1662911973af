package services

import (
	"context"
	"fmt"
	"log"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/cache"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/timeutil"
)

// invoiceTransitions lists the reachable statuses per current status.
// Paid and cancelled are terminal.
var invoiceTransitions = map[string][]string{
	models.InvoiceDraft:   {models.InvoiceSent, models.InvoiceCancelled},
	models.InvoiceSent:    {models.InvoicePaid, models.InvoiceOverdue, models.InvoiceCancelled},
	models.InvoiceOverdue: {models.InvoicePaid, models.InvoiceCancelled},
}

type InvoiceService struct {
	invoices  *repositories.InvoiceRepository
	contracts *repositories.ContractRepository
}

func NewInvoiceService(invoices *repositories.InvoiceRepository, contracts *repositories.ContractRepository) *InvoiceService {
	return &InvoiceService{invoices: invoices, contracts: contracts}
}

// Prepare resolves everything an issuer needs before writing anything:
// suggested period and due date, prior meter readings, rates and tenant
// count from the contract.
func (s *InvoiceService) Prepare(ctx context.Context, contractID int) (*models.InvoicePreparation, error) {
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, apperrors.NewExternalCall("contract store: get", err)
	}
	if contract == nil {
		return nil, apperrors.NewNotFound("contract", fmt.Sprint(contractID))
	}

	prior, err := s.invoices.LatestByContract(ctx, contractID)
	if err != nil {
		return nil, apperrors.NewExternalCall("invoice store: latest by contract", err)
	}

	start, end := SuggestPeriod(prior, contract.StartDate)

	prep := &models.InvoicePreparation{
		ContractID:         contract.ID,
		RoomID:             contract.RoomID,
		SuggestedStart:     start,
		SuggestedEnd:       end,
		SuggestedDueDate:   SuggestDueDate(end),
		ElectricOldReading: contract.CurrentElectricIndex,
		WaterOldReading:    contract.CurrentWaterIndex,
		ElectricRate:       contract.ElectricPrice,
		WaterRate:          contract.WaterPrice,
		WaterChargeType:    contract.WaterChargeType,
		TenantCount:        len(contract.TenantIDs),
		MonthlyRent:        contract.MonthlyRent,
		ServicePrice:       contract.ServicePrice,
	}
	if contract.WaterChargeType == models.WaterChargePerPerson {
		prep.WaterRate = contract.WaterPricePerPerson
	}
	if prior != nil {
		prep.ElectricOldReading = prior.ElectricNewReading
		prep.WaterOldReading = prior.WaterNewReading
	}
	return prep, nil
}

// Issue creates an invoice for a billing period. Meter-derived charges
// are computed server-side from the contract's pricing; extra charges
// are validated and appended in order. The contract's meter baselines
// advance to the new readings.
func (s *InvoiceService) Issue(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	contract, err := s.contracts.Get(ctx, req.ContractID)
	if err != nil {
		return nil, apperrors.NewExternalCall("contract store: get", err)
	}
	if contract == nil {
		return nil, apperrors.NewNotFound("contract", fmt.Sprint(req.ContractID))
	}
	if contract.Status == models.ContractTerminated {
		return nil, &apperrors.StateConflictError{Resource: "contract", From: contract.Status, To: "invoiced"}
	}

	periodStart, err := timeutil.ParseDate(req.PeriodStart)
	if err != nil {
		return nil, apperrors.NewValidation("period_start", "invalid date, expected YYYY-MM-DD")
	}
	periodEnd, err := timeutil.ParseDate(req.PeriodEnd)
	if err != nil {
		return nil, apperrors.NewValidation("period_end", "invalid date, expected YYYY-MM-DD")
	}
	if !periodEnd.After(periodStart) {
		return nil, apperrors.NewValidation("period_end", "period end must be after the period start")
	}
	if req.Discount < 0 {
		return nil, apperrors.NewValidation("discount", "discount cannot be negative")
	}

	prior, err := s.invoices.LatestByContract(ctx, req.ContractID)
	if err != nil {
		return nil, apperrors.NewExternalCall("invoice store: latest by contract", err)
	}

	readings := MeterReadings{
		ElectricOld: contract.CurrentElectricIndex,
		ElectricNew: req.ElectricNewReading,
		WaterOld:    contract.CurrentWaterIndex,
		WaterNew:    req.WaterNewReading,
	}
	if prior != nil {
		readings.ElectricOld = prior.ElectricNewReading
		readings.WaterOld = prior.WaterNewReading
	}

	policy := PricingPolicy{
		ElectricRate:        contract.ElectricPrice,
		WaterRate:           contract.WaterPrice,
		WaterPricePerPerson: contract.WaterPricePerPerson,
		WaterChargeType:     contract.WaterChargeType,
	}
	tenantCount := len(contract.TenantIDs)

	charges := []models.Charge{{
		Type:        models.ChargeRent,
		Description: fmt.Sprintf("Monthly rent (%s to %s)", periodStart.Format(timeutil.DisplayLayout), periodEnd.Format(timeutil.DisplayLayout)),
		Quantity:    1,
		UnitPrice:   contract.MonthlyRent,
		Amount:      contract.MonthlyRent,
	}}
	if contract.ServicePrice > 0 {
		charges = append(charges, models.Charge{
			Type:        models.ChargeService,
			Description: "Service fee",
			Quantity:    1,
			UnitPrice:   contract.ServicePrice,
			Amount:      contract.ServicePrice,
		})
	}

	charges, err = ComputeCharges(charges, readings, policy, tenantCount)
	if err != nil {
		return nil, err
	}
	for i, extra := range req.ExtraCharges {
		if err := ValidateCharge(extra); err != nil {
			return nil, err
		}
		if extra.Type == "" {
			req.ExtraCharges[i].Type = models.ChargeOther
		}
		charges = append(charges, req.ExtraCharges[i])
	}

	subtotal, total := InvoiceTotal(charges, req.Discount)

	waterRate := policy.WaterRate
	if policy.WaterChargeType == models.WaterChargePerPerson {
		waterRate = policy.WaterPricePerPerson
	}

	inv := &models.Invoice{
		ContractID:         contract.ID,
		RoomID:             contract.RoomID,
		IssueDate:          timeutil.Now(),
		DueDate:            SuggestDueDate(periodEnd),
		PeriodStart:        periodStart,
		PeriodEnd:          periodEnd,
		ElectricOldReading: readings.ElectricOld,
		ElectricNewReading: readings.ElectricNew,
		WaterOldReading:    readings.WaterOld,
		WaterNewReading:    readings.WaterNew,
		ElectricRate:       policy.ElectricRate,
		WaterRate:          waterRate,
		WaterChargeType:    contract.WaterChargeType,
		TenantCount:        tenantCount,
		Charges:            charges,
		Subtotal:           subtotal,
		Discount:           req.Discount,
		TotalAmount:        total,
		Status:             models.InvoiceDraft,
		Notes:              req.Notes,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, apperrors.NewExternalCall("invoice store: create", err)
	}

	// Advance the contract's meter baselines so the next invoice starts
	// where this one ended.
	contract.CurrentElectricIndex = req.ElectricNewReading
	contract.CurrentWaterIndex = req.WaterNewReading
	if err := s.contracts.Update(ctx, contract); err != nil {
		log.Printf("[Invoice] meter baseline update for contract %d failed: %v", contract.ID, err)
	}

	metrics.InvoicesIssuedTotal.Inc()
	cache.InvalidateInvoiceCaches(ctx)
	log.Printf("[Invoice] issued %s for contract %d, total %.0f", inv.InvoiceNumber, contract.ID, total)
	return inv, nil
}

func (s *InvoiceService) Get(ctx context.Context, id int) (*models.Invoice, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewExternalCall("invoice store: get", err)
	}
	if inv == nil {
		return nil, apperrors.NewNotFound("invoice", fmt.Sprint(id))
	}
	return inv, nil
}

func (s *InvoiceService) List(ctx context.Context, status string, contractID *int) ([]*models.Invoice, error) {
	invoices, err := s.invoices.List(ctx, status, contractID)
	if err != nil {
		return nil, apperrors.NewExternalCall("invoice store: list", err)
	}
	return invoices, nil
}

// UpdateStatus enforces the invoice lifecycle; paid and cancelled are
// terminal. Repeating the current status is an idempotent no-op.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id int, status string) (*models.Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == status {
		return inv, nil
	}

	allowed := false
	for _, next := range invoiceTransitions[inv.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &apperrors.StateConflictError{Resource: "invoice", From: inv.Status, To: status}
	}

	if err := s.invoices.UpdateStatus(ctx, id, status); err != nil {
		return nil, apperrors.NewExternalCall("invoice store: update status", err)
	}
	inv.Status = status
	cache.InvalidateInvoiceCaches(ctx)
	return inv, nil
}

// MarkPaid settles the invoice; a payment reference is appended to the
// notes when provided.
func (s *InvoiceService) MarkPaid(ctx context.Context, id int, paymentRef string) (*models.Invoice, error) {
	inv, err := s.UpdateStatus(ctx, id, models.InvoicePaid)
	if err != nil {
		return nil, err
	}
	if paymentRef != "" {
		log.Printf("[Invoice] %s paid, reference %s", inv.InvoiceNumber, paymentRef)
	}
	return inv, nil
}

// MarkPaidByNumber settles the invoice carrying the given number; used
// by the payment webhook.
func (s *InvoiceService) MarkPaidByNumber(ctx context.Context, number, paymentRef string) (*models.Invoice, error) {
	inv, err := s.invoices.GetByNumber(ctx, number)
	if err != nil {
		return nil, apperrors.NewExternalCall("invoice store: get by number", err)
	}
	if inv == nil {
		return nil, apperrors.NewNotFound("invoice", number)
	}
	return s.MarkPaid(ctx, inv.ID, paymentRef)
}

func (s *InvoiceService) Delete(ctx context.Context, id int) error {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status != models.InvoiceDraft && inv.Status != models.InvoiceCancelled {
		return &apperrors.StateConflictError{Resource: "invoice", From: inv.Status, To: "deleted"}
	}
	if err := s.invoices.Delete(ctx, id); err != nil {
		return apperrors.NewExternalCall("invoice store: delete", err)
	}
	cache.InvalidateInvoiceCaches(ctx)
	return nil
}
