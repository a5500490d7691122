package client

import (
	"context"
	"fmt"

	"github.com/turfbook/turfbook/pkg/domain"
)

// Me returns the authenticated user's profile. The app calls it on
// startup to validate a restored session.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/users/me", &u); err != nil {
		return nil, fmt.Errorf("client.Me: %w", err)
	}
	return &u, nil
}

// UpdateProfile patches the authenticated user's profile and returns
// the updated record.
func (c *Client) UpdateProfile(ctx context.Context, in domain.UpdateProfileInput) (*domain.User, error) {
	var u domain.User
	if err := c.patch(ctx, "/users/me", in, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateProfile: %w", err)
	}
	return &u, nil
}
