package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/turfbook/turfbook/pkg/domain"
)

// AuthResult is what the API returns from the endpoints that establish
// a session: login, verify-otp and reset-password.
type AuthResult struct {
	User         domain.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`

	// Message is the envelope's human-readable text, surfaced as the
	// success toast.
	Message string `json:"-"`
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, in domain.LoginInput) (*AuthResult, error) {
	res, err := c.authCall(ctx, "/auth/login", in)
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return res, nil
}

// Register creates an unverified account. The API emails an OTP; the
// returned email pre-fills the verification step.
func (c *Client) Register(ctx context.Context, in domain.RegisterInput) (email, message string, err error) {
	var data struct {
		Email string `json:"email"`
	}
	msg, err := c.postWithMessage(ctx, "/auth/register", in, &data)
	if err != nil {
		return "", "", fmt.Errorf("client.Register: %w", err)
	}
	return data.Email, msg, nil
}

// VerifyOTP confirms the account's email with the 6-digit code and,
// on success, establishes a session just like Login.
func (c *Client) VerifyOTP(ctx context.Context, in domain.VerifyOTPInput) (*AuthResult, error) {
	res, err := c.authCall(ctx, "/auth/verify-otp", in)
	if err != nil {
		return nil, fmt.Errorf("client.VerifyOTP: %w", err)
	}
	return res, nil
}

// ForgotPassword asks the API to send a reset link. Never
// authenticates.
func (c *Client) ForgotPassword(ctx context.Context, in domain.ForgotPasswordInput) (message string, err error) {
	msg, err := c.postWithMessage(ctx, "/auth/forgot-password", in, nil)
	if err != nil {
		return "", fmt.Errorf("client.ForgotPassword: %w", err)
	}
	return msg, nil
}

// ResetPassword sets a new password using the token from the reset
// link. The server treats a successful reset as an implicit login.
func (c *Client) ResetPassword(ctx context.Context, token string, in domain.ResetPasswordInput) (*AuthResult, error) {
	path := "/auth/reset-password/" + url.PathEscape(token)
	var res AuthResult
	msg, err := c.patchWithMessage(ctx, path, in, &res)
	if err != nil {
		return nil, fmt.Errorf("client.ResetPassword: %w", err)
	}
	res.Message = msg
	return &res, nil
}

// Logout invalidates the session server-side. Callers treat failures
// as non-fatal: local state is cleared regardless.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

func (c *Client) authCall(ctx context.Context, path string, body any) (*AuthResult, error) {
	var res AuthResult
	msg, err := c.postWithMessage(ctx, path, body, &res)
	if err != nil {
		return nil, err
	}
	res.Message = msg
	return &res, nil
}

// postWithMessage is post plus the envelope's message field, for flows
// whose UI echoes the server's own wording.
func (c *Client) postWithMessage(ctx context.Context, path string, body, out any) (string, error) {
	return c.callWithMessage(ctx, "POST", path, body, out)
}

func (c *Client) patchWithMessage(ctx context.Context, path string, body, out any) (string, error) {
	return c.callWithMessage(ctx, "PATCH", path, body, out)
}
