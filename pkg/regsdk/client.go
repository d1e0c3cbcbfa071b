package regsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every call made through a client built by
// NewSDKClient.
const DefaultTimeout = 10 * time.Second

// VerificationClient is the surface the portal drives: register an
// applicant, verify the emailed code and ask for a new one.
type VerificationClient interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	VerifyOTP(ctx context.Context, email, otp string) (*VerifyOTPResponse, error)
	ResendOTP(ctx context.Context, email string) (*ResendOTPResponse, error)
}

var _ VerificationClient = (*SDKClient)(nil)

// SDKClient is a client for the hireflow registration API.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client against baseURL with DefaultTimeout.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}
