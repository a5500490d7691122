package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"

	"github.com/turfbook/turfbook/pkg/domain"
)

// ListTurfsOptions are the query params accepted by GET /turfs.
type ListTurfsOptions struct {
	Page   int    `url:"page,omitempty"`
	Limit  int    `url:"limit,omitempty"`
	Search string `url:"q,omitempty"`
}

// ListTurfs fetches a page of turfs, optionally filtered by a free-text
// search. Meta carries the pagination block.
func (c *Client) ListTurfs(ctx context.Context, opts ListTurfsOptions) ([]domain.Turf, *Meta, error) {
	params, err := query.Values(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("client.ListTurfs: encode params: %w", err)
	}
	path := "/turfs"
	if enc := params.Encode(); enc != "" {
		path += "?" + enc
	}

	var turfs []domain.Turf
	meta, _, err := c.doRequest(ctx, "GET", path, nil, &turfs)
	if err != nil {
		return nil, nil, fmt.Errorf("client.ListTurfs: %w", err)
	}
	return turfs, meta, nil
}

// GetTurf fetches a single turf by its URL slug.
func (c *Client) GetTurf(ctx context.Context, slug string) (*domain.Turf, error) {
	var turf domain.Turf
	if err := c.get(ctx, "/turfs/"+url.PathEscape(slug), &turf); err != nil {
		return nil, fmt.Errorf("client.GetTurf: %w", err)
	}
	return &turf, nil
}

type availabilityQuery struct {
	Date string `url:"date"`
}

func availabilityKey(turfID, date string) string {
	return turfID + "|" + date
}

// Availability returns the slot grid for a (turf, date) pair. Results
// are cached briefly; a successful booking against the same pair
// evicts the entry so the next view reflects the reduced availability.
func (c *Client) Availability(ctx context.Context, turfID, date string) (*domain.TurfAvailability, error) {
	key := availabilityKey(turfID, date)
	if hit, ok := c.avail.Get(key); ok {
		snapshot := hit.(domain.TurfAvailability)
		return &snapshot, nil
	}

	params, err := query.Values(availabilityQuery{Date: date})
	if err != nil {
		return nil, fmt.Errorf("client.Availability: encode params: %w", err)
	}
	path := "/turfs/" + url.PathEscape(turfID) + "/availability?" + params.Encode()

	var avail domain.TurfAvailability
	if err := c.get(ctx, path, &avail); err != nil {
		return nil, fmt.Errorf("client.Availability: %w", err)
	}
	c.avail.SetDefault(key, avail)
	return &avail, nil
}

// InvalidateAvailability drops the cached snapshot for a (turf, date)
// pair. CreateBooking calls it; exposed for views that force-refresh.
func (c *Client) InvalidateAvailability(turfID, date string) {
	c.avail.Delete(availabilityKey(turfID, date))
}
