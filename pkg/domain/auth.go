package domain

// LoginInput is the credentials payload for /auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the payload for /auth/register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Phone    string `json:"phone" validate:"required,numeric,min=11,max=14"`
}

// VerifyOTPInput is the payload for /auth/verify-otp.
type VerifyOTPInput struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ForgotPasswordInput is the payload for /auth/forgot-password.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordInput is the body for /auth/reset-password/{token}.
// The token itself travels in the URL.
type ResetPasswordInput struct {
	Password string `json:"password" validate:"required,password"`
}

// UpdateProfileInput is the payload for PATCH /users/me. Empty fields
// are omitted from the request and left unchanged server-side.
type UpdateProfileInput struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,numeric,min=11,max=14"`
}

// BookingInput is the payload for POST /bookings. EndTime is always
// StartTime plus one hour; the gtfield check is defensive (lexical
// compare is correct for zero-padded "HH:MM").
type BookingInput struct {
	TurfID    string `json:"turf" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm,gtfield=StartTime"`
}
