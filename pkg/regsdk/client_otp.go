package regsdk

import (
	"context"
	"net/http"
)

// VerifyOTP submits the 4 digit code emailed to email.
func (c *SDKClient) VerifyOTP(ctx context.Context, email, otp string) (*VerifyOTPResponse, error) {
	var out VerifyOTPResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/verify-otp", VerifyOTPRequest{Email: email, OTP: otp}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendOTP asks for a fresh code. The previous code stops working. A 2xx
// reply without expires_at is malformed and reported as a *NetworkError.
func (c *SDKClient) ResendOTP(ctx context.Context, email string) (*ResendOTPResponse, error) {
	const path = "/api/resend-otp"

	var out ResendOTPResponse
	if err := c.doJSON(ctx, http.MethodPost, path, ResendOTPRequest{Email: email}, &out); err != nil {
		return nil, err
	}
	if out.ExpiresAt.IsZero() {
		return nil, &NetworkError{Op: "decode " + path, Err: ErrMissingExpiry}
	}
	return &out, nil
}
