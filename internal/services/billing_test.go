package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
)

func TestComputeChargesElectricity(t *testing.T) {
	charges, err := ComputeCharges(nil,
		MeterReadings{ElectricOld: 100, ElectricNew: 150},
		PricingPolicy{ElectricRate: 3500, WaterChargeType: models.WaterChargeFixed},
		1)

	require.NoError(t, err)
	require.Len(t, charges, 1)
	assert.Equal(t, models.ChargeElectricity, charges[0].Type)
	assert.Equal(t, 50.0, charges[0].Quantity)
	assert.Equal(t, 3500.0, charges[0].UnitPrice)
	assert.Equal(t, 175000.0, charges[0].Amount)
	assert.Contains(t, charges[0].Description, "50")
}

func TestComputeChargesRejectsDecreasingReading(t *testing.T) {
	cases := []struct {
		name     string
		readings MeterReadings
	}{
		{"electric", MeterReadings{ElectricOld: 200, ElectricNew: 150}},
		{"water", MeterReadings{WaterOld: 80, WaterNew: 60}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeCharges(nil, tc.readings,
				PricingPolicy{WaterChargeType: models.WaterChargeFixed}, 1)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestComputeChargesWaterFixed(t *testing.T) {
	charges, err := ComputeCharges(nil,
		MeterReadings{WaterOld: 30, WaterNew: 42},
		PricingPolicy{WaterRate: 25000, WaterChargeType: models.WaterChargeFixed},
		2)

	require.NoError(t, err)
	require.Len(t, charges, 1)
	assert.Equal(t, models.ChargeWater, charges[0].Type)
	assert.Equal(t, 12.0, charges[0].Quantity)
	assert.Equal(t, 300000.0, charges[0].Amount)
}

func TestComputeChargesWaterFixedZeroConsumption(t *testing.T) {
	// Fixed policy yields a water charge iff consumption > 0.
	prior := []models.Charge{
		{Type: models.ChargeWater, Description: "Water usage (5 m3)", Quantity: 5, UnitPrice: 25000, Amount: 125000},
	}
	charges, err := ComputeCharges(prior,
		MeterReadings{WaterOld: 42, WaterNew: 42},
		PricingPolicy{WaterRate: 25000, WaterChargeType: models.WaterChargeFixed},
		2)

	require.NoError(t, err)
	assert.Empty(t, charges)
}

func TestComputeChargesWaterPerPerson(t *testing.T) {
	charges, err := ComputeCharges(nil,
		MeterReadings{},
		PricingPolicy{WaterPricePerPerson: 50000, WaterChargeType: models.WaterChargePerPerson},
		3)

	require.NoError(t, err)
	require.Len(t, charges, 1)
	assert.Equal(t, models.ChargeWater, charges[0].Type)
	assert.Equal(t, 3.0, charges[0].Quantity)
	assert.Equal(t, 50000.0, charges[0].UnitPrice)
	assert.Equal(t, 150000.0, charges[0].Amount)
}

func TestComputeChargesWaterPerPersonNeedsTenants(t *testing.T) {
	_, err := ComputeCharges(nil, MeterReadings{},
		PricingPolicy{WaterPricePerPerson: 50000, WaterChargeType: models.WaterChargePerPerson},
		0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestComputeChargesUpsertsIntoPriorList(t *testing.T) {
	prior := []models.Charge{
		{Type: models.ChargeRent, Description: "Monthly rent", Quantity: 1, UnitPrice: 4000000, Amount: 4000000},
		{Type: models.ChargeElectricity, Description: "Electricity usage (10 kWh)", Quantity: 10, UnitPrice: 3500, Amount: 35000},
	}

	charges, err := ComputeCharges(prior,
		MeterReadings{ElectricOld: 100, ElectricNew: 120},
		PricingPolicy{ElectricRate: 3500, WaterChargeType: models.WaterChargeFixed},
		1)

	require.NoError(t, err)
	require.Len(t, charges, 2)
	// Rent stays first; the electricity charge is replaced in place.
	assert.Equal(t, models.ChargeRent, charges[0].Type)
	assert.Equal(t, models.ChargeElectricity, charges[1].Type)
	assert.Equal(t, 20.0, charges[1].Quantity)
	assert.Equal(t, 70000.0, charges[1].Amount)
}

func TestComputeChargesRemovesElectricityAtZero(t *testing.T) {
	prior := []models.Charge{
		{Type: models.ChargeElectricity, Description: "Electricity usage (10 kWh)", Quantity: 10, UnitPrice: 3500, Amount: 35000},
		{Type: models.ChargeService, Description: "Service fee", Quantity: 1, UnitPrice: 150000, Amount: 150000},
	}

	charges, err := ComputeCharges(prior,
		MeterReadings{ElectricOld: 120, ElectricNew: 120},
		PricingPolicy{ElectricRate: 3500, WaterChargeType: models.WaterChargeFixed},
		1)

	require.NoError(t, err)
	require.Len(t, charges, 1)
	assert.Equal(t, models.ChargeService, charges[0].Type)
}

func TestInvoiceTotalFloor(t *testing.T) {
	charges := []models.Charge{
		{Type: models.ChargeRent, Amount: 100000},
		{Type: models.ChargeWater, Amount: 50000},
	}

	subtotal, total := InvoiceTotal(charges, 30000)
	assert.Equal(t, 150000.0, subtotal)
	assert.Equal(t, 120000.0, total)

	// Discount larger than the subtotal clamps to zero.
	_, total = InvoiceTotal(charges, 900000)
	assert.Equal(t, 0.0, total)
}

func TestValidateCharge(t *testing.T) {
	assert.NoError(t, ValidateCharge(models.Charge{Description: "Cleaning", Amount: 20000}))
	assert.Error(t, ValidateCharge(models.Charge{Description: "", Amount: 20000}))
	assert.Error(t, ValidateCharge(models.Charge{Description: "Cleaning", Amount: 0}))
}

func TestSuggestDueDate(t *testing.T) {
	periodEnd := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), SuggestDueDate(periodEnd))
}

func TestSuggestPeriod(t *testing.T) {
	contractStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	start, end := SuggestPeriod(nil, contractStart)
	assert.Equal(t, contractStart, start)
	assert.Equal(t, contractStart.AddDate(0, 1, 0), end)

	prior := &models.Invoice{PeriodEnd: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	start, end = SuggestPeriod(prior, contractStart)
	assert.Equal(t, prior.PeriodEnd, start)
	assert.Equal(t, prior.PeriodEnd.AddDate(0, 1, 0), end)
}
