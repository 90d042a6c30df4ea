package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Payment status values as reported by the backend
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentExpired = "expired"
	PaymentFailed  = "failed"
)

// PaymentStatus is the state of one payment transaction
type PaymentStatus struct {
	OrderID string     `json:"order_id"`
	Status  string     `json:"status"`
	Amount  int64      `json:"amount"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
}

// PaymentStatus fetches the current state of a transaction
func (c *Client) PaymentStatus(ctx context.Context, orderID string) (*PaymentStatus, error) {
	var status PaymentStatus
	path := fmt.Sprintf("/payments/%s/status", orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
