package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/models"
	"rental-backend/internal/notifications"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
	PDF     *services.PDFService
	Hub     *notifications.Hub
}

func NewInvoiceHandler(s *services.InvoiceService, pdf *services.PDFService, hub *notifications.Hub) *InvoiceHandler {
	return &InvoiceHandler{Service: s, PDF: pdf, Hub: hub}
}

// PrepareInvoice returns the pricing context and suggested period for
// the next invoice of a contract, without persisting anything.
func (h *InvoiceHandler) PrepareInvoice(w http.ResponseWriter, r *http.Request) {
	contractID, _ := strconv.Atoi(mux.Vars(r)["contractId"])

	prep, err := h.Service.Prepare(r.Context(), contractID)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, prep)
}

// CreateInvoice issues a new invoice for a contract
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req models.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	invoice, err := h.Service.Issue(r.Context(), &req)
	if err != nil {
		utils.Error(w, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(notifications.EventInvoiceIssued,
			fmt.Sprintf("Invoice %s issued", invoice.InvoiceNumber),
			map[string]interface{}{"invoice_id": invoice.ID, "total": invoice.TotalAmount})
	}

	utils.JSON(w, http.StatusCreated, invoice)
}

func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	invoice, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var contractID *int
	if v := q.Get("contract_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			contractID = &id
		}
	}

	invoices, err := h.Service.List(r.Context(), q.Get("status"), contractID)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, invoices)
}

// UpdateStatus moves an invoice through its lifecycle. A "paid" status
// notifies connected clients.
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req struct {
		Status     string `json:"status"`
		PaymentRef string `json:"payment_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var invoice *models.Invoice
	var err error
	if req.Status == models.InvoicePaid {
		invoice, err = h.Service.MarkPaid(r.Context(), id, req.PaymentRef)
	} else {
		invoice, err = h.Service.UpdateStatus(r.Context(), id, req.Status)
	}
	if err != nil {
		utils.Error(w, err)
		return
	}

	if h.Hub != nil && invoice.Status == models.InvoicePaid {
		h.Hub.Publish(notifications.EventInvoicePaid,
			fmt.Sprintf("Invoice %s paid", invoice.InvoiceNumber),
			map[string]interface{}{"invoice_id": invoice.ID, "total": invoice.TotalAmount})
	}

	utils.JSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Delete(r.Context(), id); err != nil {
		utils.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DownloadPDF streams the rendered invoice PDF
func (h *InvoiceHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	pdfBytes, err := h.PDF.GenerateInvoicePDF(r.Context(), id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%d.pdf", id))
	w.Write(pdfBytes)
}
