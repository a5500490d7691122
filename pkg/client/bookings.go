package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/turfbook/turfbook/pkg/domain"
)

// CreateBooking reserves a slot. Each call carries a fresh
// Idempotency-Key so a client-side retry of a timed-out request cannot
// double-book. On success the availability snapshot for the booking's
// (turf, date) pair is invalidated.
func (c *Client) CreateBooking(ctx context.Context, in domain.BookingInput) (*domain.Booking, error) {
	headers := map[string]string{
		"Idempotency-Key": uuid.NewString(),
	}
	var booking domain.Booking
	if _, _, err := c.doRequestWith(ctx, "POST", "/bookings", in, &booking, headers, false); err != nil {
		return nil, fmt.Errorf("client.CreateBooking: %w", err)
	}
	c.InvalidateAvailability(in.TurfID, in.Date)
	return &booking, nil
}

// MyBookings returns the authenticated user's bookings.
func (c *Client) MyBookings(ctx context.Context) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := c.get(ctx, "/bookings/my-bookings", &bookings); err != nil {
		return nil, fmt.Errorf("client.MyBookings: %w", err)
	}
	return bookings, nil
}

// InitPayment asks the gateway for a checkout URL for an existing
// booking. The caller hands the URL to the browser; nothing about the
// payment happens in-process.
func (c *Client) InitPayment(ctx context.Context, bookingID string) (string, error) {
	var data struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/payments/init/"+url.PathEscape(bookingID), nil, &data); err != nil {
		return "", fmt.Errorf("client.InitPayment: %w", err)
	}
	if data.URL == "" {
		return "", fmt.Errorf("client.InitPayment: no payment URL in response")
	}
	return data.URL, nil
}
