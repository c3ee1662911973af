package services

import (
	"fmt"
	"time"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
)

// DueDateGraceDays is how long after the period end an invoice stays
// payable before it is overdue.
const DueDateGraceDays = 5

// MeterReadings are the utility meter values an invoice covers.
type MeterReadings struct {
	ElectricOld float64
	ElectricNew float64
	WaterOld    float64
	WaterNew    float64
}

// PricingPolicy is the contract's utility pricing at invoice time.
type PricingPolicy struct {
	ElectricRate        float64
	WaterRate           float64
	WaterPricePerPerson float64
	WaterChargeType     string
}

// ComputeCharges derives the meter-based line items from readings and
// the contract's pricing policy, upserting into the prior charge list.
// Prior charges of other types pass through untouched in their original
// order. A consumption-based charge whose consumption recomputes to
// zero is removed rather than kept at zero amount.
func ComputeCharges(prior []models.Charge, readings MeterReadings, policy PricingPolicy, tenantCount int) ([]models.Charge, error) {
	electricUsed := readings.ElectricNew - readings.ElectricOld
	if electricUsed < 0 {
		return nil, apperrors.NewValidation("electric_new_reading", "new reading is below the old reading")
	}

	charges := make([]models.Charge, len(prior))
	copy(charges, prior)

	if electricUsed > 0 {
		charges = upsertCharge(charges, models.Charge{
			Type:        models.ChargeElectricity,
			Description: fmt.Sprintf("Electricity usage (%g kWh)", electricUsed),
			Quantity:    electricUsed,
			UnitPrice:   policy.ElectricRate,
			Amount:      electricUsed * policy.ElectricRate,
		})
	} else {
		charges = removeCharge(charges, models.ChargeElectricity)
	}

	switch policy.WaterChargeType {
	case models.WaterChargePerPerson:
		if tenantCount < 1 {
			return nil, apperrors.NewValidation("tenant_count", "per-person water billing needs at least one tenant")
		}
		qty := float64(tenantCount)
		charges = upsertCharge(charges, models.Charge{
			Type:        models.ChargeWater,
			Description: fmt.Sprintf("Water (%d person(s))", tenantCount),
			Quantity:    qty,
			UnitPrice:   policy.WaterPricePerPerson,
			Amount:      qty * policy.WaterPricePerPerson,
		})
	default:
		waterUsed := readings.WaterNew - readings.WaterOld
		if waterUsed < 0 {
			return nil, apperrors.NewValidation("water_new_reading", "new reading is below the old reading")
		}
		if waterUsed > 0 {
			charges = upsertCharge(charges, models.Charge{
				Type:        models.ChargeWater,
				Description: fmt.Sprintf("Water usage (%g m3)", waterUsed),
				Quantity:    waterUsed,
				UnitPrice:   policy.WaterRate,
				Amount:      waterUsed * policy.WaterRate,
			})
		} else {
			charges = removeCharge(charges, models.ChargeWater)
		}
	}

	return charges, nil
}

// ValidateCharge checks a caller-supplied line item before submission.
func ValidateCharge(c models.Charge) error {
	if c.Description == "" {
		return apperrors.NewValidation("description", "charge description is required")
	}
	if c.Amount <= 0 {
		return apperrors.NewValidation("amount", "charge amount must be positive")
	}
	return nil
}

// InvoiceTotal sums the charges and applies the discount, clamped so
// the total never goes negative.
func InvoiceTotal(charges []models.Charge, discount float64) (subtotal, total float64) {
	for _, c := range charges {
		subtotal += c.Amount
	}
	total = subtotal - discount
	if total < 0 {
		total = 0
	}
	return subtotal, total
}

// SuggestDueDate places the due date a fixed grace period after the
// billing period ends.
func SuggestDueDate(periodEnd time.Time) time.Time {
	return periodEnd.AddDate(0, 0, DueDateGraceDays)
}

// SuggestPeriod proposes the next billing period: it starts where the
// prior invoice ended (or at the contract start when there is none) and
// runs one month.
func SuggestPeriod(prior *models.Invoice, contractStart time.Time) (start, end time.Time) {
	if prior != nil {
		start = prior.PeriodEnd
	} else {
		start = contractStart
	}
	return start, start.AddDate(0, 1, 0)
}

func upsertCharge(charges []models.Charge, c models.Charge) []models.Charge {
	for i := range charges {
		if charges[i].Type == c.Type {
			charges[i] = c
			return charges
		}
	}
	return append(charges, c)
}

func removeCharge(charges []models.Charge, chargeType string) []models.Charge {
	out := charges[:0]
	for _, c := range charges {
		if c.Type != chargeType {
			out = append(out, c)
		}
	}
	return out
}
