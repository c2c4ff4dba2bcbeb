package api

import "context"

// PayPalOrder is the provider-side order created for a PayPal payment.
type PayPalOrder struct {
	ID          string `json:"id"`
	ApprovalURL string `json:"approvalUrl"`
}

// CryptoPayment holds the transfer details for a crypto payment.
type CryptoPayment struct {
	WalletAddress string  `json:"walletAddress"`
	Currency      string  `json:"currency"`
	Amount        float64 `json:"amount"`
}

// CreatePayPalOrder opens a PayPal payment for an order.
func (c *Client) CreatePayPalOrder(ctx context.Context, orderID string) (PayPalOrder, error) {
	var out PayPalOrder
	err := c.gw.Post(ctx, "/payments/paypal/create", map[string]string{"orderId": orderID}, &out)
	return out, err
}

// CapturePayPalPayment captures an approved PayPal payment.
func (c *Client) CapturePayPalPayment(ctx context.Context, paypalOrderID string) error {
	return c.gw.Post(ctx, "/payments/paypal/capture", map[string]string{"paypalOrderId": paypalOrderID}, nil)
}

// InitiateCryptoPayment opens a crypto payment in the given currency.
func (c *Client) InitiateCryptoPayment(ctx context.Context, orderID, currency string) (CryptoPayment, error) {
	var out CryptoPayment
	err := c.gw.Post(ctx, "/payments/crypto/initiate",
		map[string]string{"orderId": orderID, "currency": currency}, &out)
	return out, err
}

// VerifyCryptoPayment confirms a submitted crypto transaction.
func (c *Client) VerifyCryptoPayment(ctx context.Context, txHash, orderID string) error {
	return c.gw.Post(ctx, "/payments/crypto/verify",
		map[string]string{"txHash": txHash, "orderId": orderID}, nil)
}
