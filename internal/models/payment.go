package models

// CreateOrderResponse is what the frontend needs to open the payment
// gateway checkout for an invoice. Amount is in the currency's smallest
// unit.
type CreateOrderResponse struct {
	OrderID       string `json:"order_id"`
	Amount        int    `json:"amount"`
	Currency      string `json:"currency"`
	KeyID         string `json:"key_id"`
	InvoiceID     int    `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
}

// VerifyPaymentRequest carries the gateway's client-side callback
// fields for signature verification.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}
