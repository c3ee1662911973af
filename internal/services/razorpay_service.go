package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"

	razorpay "github.com/razorpay/razorpay-go"

	"rental-backend/internal/models"
)

// PaymentService takes invoices through the online payment gateway:
// order creation, client-side signature verification and the capture
// webhook all end with the invoice marked paid.
type PaymentService struct {
	keyID         string
	keySecret     string
	webhookSecret string
	invoices      *InvoiceService
}

func NewPaymentService(keyID, keySecret, webhookSecret string, invoices *InvoiceService) *PaymentService {
	return &PaymentService{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		invoices:      invoices,
	}
}

// IsEnabled reports whether gateway credentials are configured.
func (s *PaymentService) IsEnabled() bool {
	return s.keyID != "" && s.keySecret != ""
}

func (s *PaymentService) client() *razorpay.Client {
	if !s.IsEnabled() {
		return nil
	}
	return razorpay.NewClient(s.keyID, s.keySecret)
}

// CreateOrder opens a gateway order for an unpaid invoice. The amount
// is sent in the currency's smallest unit as the gateway requires.
func (s *PaymentService) CreateOrder(ctx context.Context, invoiceID int) (*models.CreateOrderResponse, error) {
	client := s.client()
	if client == nil {
		return nil, fmt.Errorf("payment gateway not configured")
	}

	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == models.InvoicePaid || inv.Status == models.InvoiceCancelled {
		return nil, fmt.Errorf("invoice %s is %s and cannot be paid", inv.InvoiceNumber, inv.Status)
	}

	amountSubunits := int(inv.TotalAmount * 100)
	orderData := map[string]interface{}{
		"amount":   amountSubunits,
		"currency": "INR",
		"receipt":  inv.InvoiceNumber,
		"notes": map[string]interface{}{
			"invoice_id":     inv.ID,
			"invoice_number": inv.InvoiceNumber,
			"contract_id":    inv.ContractID,
		},
	}
	order, err := client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}
	orderID, _ := order["id"].(string)

	return &models.CreateOrderResponse{
		OrderID:       orderID,
		Amount:        amountSubunits,
		Currency:      "INR",
		KeyID:         s.keyID,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
	}, nil
}

// VerifyPayment checks the client-side signature and settles the
// invoice the order was opened for.
func (s *PaymentService) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.Invoice, error) {
	if !s.verifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, fmt.Errorf("invalid payment signature")
	}

	client := s.client()
	if client == nil {
		return nil, fmt.Errorf("payment gateway not configured")
	}
	order, err := client.Order.Fetch(req.RazorpayOrderID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	receipt, _ := order["receipt"].(string)
	if receipt == "" {
		return nil, fmt.Errorf("order %s carries no invoice reference", req.RazorpayOrderID)
	}

	return s.invoices.MarkPaidByNumber(ctx, receipt, req.RazorpayPaymentID)
}

// verifySignature checks the HMAC the gateway computes over
// "order_id|payment_id".
func (s *PaymentService) verifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(s.keySecret))
	h.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature verifies the webhook body signature.
func (s *PaymentService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" {
		return true // Skip verification if not configured
	}
	h := hmac.New(sha256.New, []byte(s.webhookSecret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ProcessWebhook handles gateway webhook events. Only captures settle
// an invoice; everything else is logged and dropped.
func (s *PaymentService) ProcessWebhook(ctx context.Context, event string, payload map[string]interface{}) error {
	switch event {
	case "payment.captured":
		return s.handlePaymentCaptured(ctx, payload)
	case "payment.failed":
		entity := paymentEntity(payload)
		log.Printf("[Payment] payment failed for order %v: %v", entity["order_id"], entity["error_description"])
		return nil
	default:
		log.Printf("[Payment] unhandled webhook event: %s", event)
		return nil
	}
}

func (s *PaymentService) handlePaymentCaptured(ctx context.Context, payload map[string]interface{}) error {
	entity := paymentEntity(payload)

	paymentID, _ := entity["id"].(string)
	orderID, _ := entity["order_id"].(string)
	if orderID == "" {
		return fmt.Errorf("missing order_id in webhook")
	}

	client := s.client()
	if client == nil {
		return fmt.Errorf("payment gateway not configured")
	}
	order, err := client.Order.Fetch(orderID, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}
	receipt, _ := order["receipt"].(string)
	if receipt == "" {
		return fmt.Errorf("order %s carries no invoice reference", orderID)
	}

	inv, err := s.invoices.MarkPaidByNumber(ctx, receipt, paymentID)
	if err != nil {
		return err
	}
	log.Printf("[Payment] invoice %s settled via webhook, payment %s", inv.InvoiceNumber, paymentID)
	return nil
}

// paymentEntity digs the payment entity out of the webhook payload,
// tolerating both wrapped and flat shapes.
func paymentEntity(payload map[string]interface{}) map[string]interface{} {
	wrapped, ok := payload["payment"].(map[string]interface{})
	if !ok {
		wrapped = payload
	}
	entity, ok := wrapped["entity"].(map[string]interface{})
	if !ok {
		entity = wrapped
	}
	return entity
}
