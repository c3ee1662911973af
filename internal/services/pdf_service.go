package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/timeutil"
)

// PDFService renders printable invoices.
type PDFService struct {
	invoices *repositories.InvoiceRepository
	rooms    *repositories.RoomRepository
}

func NewPDFService(invoices *repositories.InvoiceRepository, rooms *repositories.RoomRepository) *PDFService {
	return &PDFService{invoices: invoices, rooms: rooms}
}

// GenerateInvoicePDF renders an invoice as an A4 PDF.
func (s *PDFService) GenerateInvoicePDF(ctx context.Context, invoiceID int) ([]byte, error) {
	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, apperrors.NewExternalCall("invoice store: get", err)
	}
	if inv == nil {
		return nil, apperrors.NewNotFound("invoice", fmt.Sprint(invoiceID))
	}

	roomNumber := fmt.Sprintf("#%d", inv.RoomID)
	if room, err := s.rooms.Get(ctx, inv.RoomID); err == nil && room != nil {
		roomNumber = room.Number
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Rental Invoice", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Invoice Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Invoice Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Invoice: %s", inv.InvoiceNumber), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Room: %s", roomNumber), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Period: %s - %s",
		inv.PeriodStart.Format(timeutil.DisplayLayout), inv.PeriodEnd.Format(timeutil.DisplayLayout)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Due: %s", inv.DueDate.Format(timeutil.DisplayLayout)), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Meter readings
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Meter Readings", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Electricity: %g -> %g kWh", inv.ElectricOldReading, inv.ElectricNewReading), "LB", 0, "L", false, 0, "")
	if inv.WaterChargeType == models.WaterChargePerPerson {
		pdf.CellFormat(95, 7, fmt.Sprintf("Water: %d person(s)", inv.TenantCount), "RB", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(95, 7, fmt.Sprintf("Water: %g -> %g m3", inv.WaterOldReading, inv.WaterNewReading), "RB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Charges table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Charges", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(90, 7, "Description", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Unit Price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, c := range inv.Charges {
		desc := c.Description
		if len(desc) > 48 {
			desc = desc[:45] + "..."
		}
		pdf.CellFormat(90, 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%g", c.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.0f", c.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", c.Amount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// Totals
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(150, 7, "Subtotal", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, fmt.Sprintf("%.0f", inv.Subtotal), "1", 1, "R", false, 0, "")
	if inv.Discount > 0 {
		pdf.CellFormat(150, 7, "Discount", "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("-%.0f", inv.Discount), "1", 1, "R", false, 0, "")
	}

	if inv.Status == models.InvoicePaid {
		pdf.SetFillColor(200, 255, 200)
	} else {
		pdf.SetFillColor(255, 200, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	totalText := fmt.Sprintf("Total Due: %.0f", inv.TotalAmount)
	if inv.Status == models.InvoicePaid {
		totalText = fmt.Sprintf("PAID - Total: %.0f", inv.TotalAmount)
	}
	pdf.CellFormat(190, 10, totalText, "1", 1, "C", true, 0, "")

	if inv.Notes != "" {
		pdf.Ln(5)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(190, 5, "Notes: "+inv.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
