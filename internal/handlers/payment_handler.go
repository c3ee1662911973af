package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/models"
	"rental-backend/internal/notifications"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type PaymentHandler struct {
	Service *services.PaymentService
	Hub     *notifications.Hub
}

func NewPaymentHandler(service *services.PaymentService, hub *notifications.Hub) *PaymentHandler {
	return &PaymentHandler{Service: service, Hub: hub}
}

// CheckStatus returns whether online payments are enabled
// GET /api/payments/status
func (h *PaymentHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]bool{"enabled": h.Service.IsEnabled()})
}

// CreateOrder creates a gateway order for an invoice
// POST /api/payments/invoices/{id}/order
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if !h.Service.IsEnabled() {
		utils.ErrorMessage(w, http.StatusServiceUnavailable, "Online payments are not configured")
		return
	}

	invoiceID, _ := strconv.Atoi(mux.Vars(r)["id"])

	response, err := h.Service.CreateOrder(r.Context(), invoiceID)
	if err != nil {
		log.Printf("[Payment] CreateOrder error: %v", err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, response)
}

// VerifyPayment verifies the gateway's client-side callback
// POST /api/payments/verify
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		utils.ErrorMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	invoice, err := h.Service.VerifyPayment(r.Context(), &req)
	if err != nil {
		log.Printf("[Payment] VerifyPayment error: %v", err)
		utils.ErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	h.notifyPaid(invoice)

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Payment verified successfully",
		"invoice": invoice,
	})
}

// HandleWebhook processes gateway webhook events
// POST /api/payments/webhook
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[Payment] Failed to read webhook body: %v", err)
		utils.ErrorMessage(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if !h.Service.VerifyWebhookSignature(body, signature) {
		log.Printf("[Payment] Invalid webhook signature")
		utils.ErrorMessage(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[Payment] Failed to parse webhook: %v", err)
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	event, _ := payload["event"].(string)
	payloadData, _ := payload["payload"].(map[string]interface{})

	log.Printf("[Payment] Received webhook: %s", event)

	if err := h.Service.ProcessWebhook(r.Context(), event, payloadData); err != nil {
		log.Printf("[Payment] Webhook processing error: %v", err)
		// Return 200 anyway to prevent retries for known errors
	}

	// Always return 200 to acknowledge receipt
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PaymentHandler) notifyPaid(invoice *models.Invoice) {
	if h.Hub == nil || invoice == nil {
		return
	}
	h.Hub.Publish(notifications.EventInvoicePaid,
		"Invoice "+invoice.InvoiceNumber+" paid online",
		map[string]interface{}{"invoice_id": invoice.ID, "total": invoice.TotalAmount})
}
