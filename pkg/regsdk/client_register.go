package regsdk

import (
	"context"
	"net/http"
)

// Register submits a registration draft. On success the response either
// completes registration or, when RequiresOTP reports true, opens a code
// challenge that expires at ExpiresAt.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
