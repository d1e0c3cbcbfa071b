package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/regapi/devotp"
	"github.com/aussiebroadwan/hireflow/pkg/httpx"
	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
)

// DevOTPResponse exposes the last code mailed to an address.
type DevOTPResponse struct {
	Email     string    `json:"email"`
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DevOTPHandler godoc
//
//	@Summary		Read Last Code (development only)
//	@Description	Returns the most recent code sent to an address. Only mounted when the dev mailbox is enabled.
//	@Tags			Development
//	@Produce		json
//	@Param			email	query		string			true	"Applicant email"
//	@Success		200		{object}	DevOTPResponse	"email, otp, expires_at"
//	@Failure		404		{object}	regsdk.ErrorResponse
//	@Router			/dev/otp [get]
func DevOTPHandler(mb *devotp.Mailbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := regsdk.NormalizeEmail(r.URL.Query().Get("email"))
		if email == "" {
			httpx.WriteMessage(w, http.StatusBadRequest, "email query parameter is required")
			return
		}

		code, expiresAt, ok := mb.Code(r.Context(), email)
		if !ok {
			httpx.WriteMessage(w, http.StatusNotFound, "No code has been sent to this email")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, DevOTPResponse{
			Email:     email,
			OTP:       code,
			ExpiresAt: expiresAt,
		})
	}
}
