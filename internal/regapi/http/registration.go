package http

import (
	"net/http"

	"github.com/aussiebroadwan/hireflow/internal/regapi/service"
	"github.com/aussiebroadwan/hireflow/pkg/httpx"
	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
)

// RegistrationHandler serves the register, verify and resend endpoints.
type RegistrationHandler struct {
	Service *service.RegistrationService
}

// HandleRegister godoc
//
//	@Summary		Register Applicant
//	@Description	Create a pending applicant account and email a four digit verification code.
//	@Description	When otp_required is true the client must verify the code before signing in.
//	@Tags			Registration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		regsdk.RegisterRequest	true	"Registration draft"
//	@Success		201		{object}	regsdk.RegisterResponse	"message, email, otp_required, expires_at"
//	@Failure		400		{object}	regsdk.ErrorResponse	"malformed body"
//	@Failure		422		{object}	regsdk.ErrorResponse	"message, per-field errors"
//	@Failure		429		{object}	regsdk.ErrorResponse	"resend cooldown still running"
//	@Failure		500		{object}	regsdk.ErrorResponse	"message"
//	@Router			/api/register [post]
func (h *RegistrationHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req regsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// HandleVerify godoc
//
//	@Summary		Verify Emailed Code
//	@Description	Check the four digit code sent at registration. Each wrong code spends one attempt
//	@Description	and the last one burns the challenge. Success returns an access token.
//	@Tags			Registration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		regsdk.VerifyOTPRequest		true	"email, otp"
//	@Success		200		{object}	regsdk.VerifyOTPResponse	"message, access_token, token_type, expires_in"
//	@Failure		400		{object}	regsdk.ErrorResponse		"wrong or unknown code, errors.otp set"
//	@Failure		410		{object}	regsdk.ErrorResponse		"code expired or attempts exhausted"
//	@Failure		422		{object}	regsdk.ErrorResponse		"message, per-field errors"
//	@Failure		500		{object}	regsdk.ErrorResponse		"message"
//	@Router			/api/verify-otp [post]
func (h *RegistrationHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req regsdk.VerifyOTPRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp, err := h.Service.VerifyOTP(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleResend godoc
//
//	@Summary		Resend Code
//	@Description	Email a fresh code for a pending registration. The previous code stops working
//	@Description	and the attempt budget resets. Limited to one send per cooldown window.
//	@Tags			Registration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		regsdk.ResendOTPRequest		true	"email"
//	@Success		200		{object}	regsdk.ResendOTPResponse	"message, expires_at"
//	@Failure		404		{object}	regsdk.ErrorResponse		"no pending registration"
//	@Failure		409		{object}	regsdk.ErrorResponse		"already verified"
//	@Failure		422		{object}	regsdk.ErrorResponse		"message, per-field errors"
//	@Failure		429		{object}	regsdk.ErrorResponse		"cooldown still running"
//	@Failure		500		{object}	regsdk.ErrorResponse		"message"
//	@Router			/api/resend-otp [post]
func (h *RegistrationHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	var req regsdk.ResendOTPRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp, err := h.Service.ResendOTP(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
