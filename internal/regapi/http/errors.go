package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/hireflow/internal/regapi/service"
	"github.com/aussiebroadwan/hireflow/pkg/httpx"
	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
	"github.com/aussiebroadwan/hireflow/pkg/slogx"
	"github.com/aussiebroadwan/hireflow/pkg/validatex"
)

const (
	msgBadBody         = "Invalid request body"
	msgFixFields       = "Please correct the highlighted fields"
	msgEmailTaken      = "An account with this email already exists"
	msgInvalidCode     = "Invalid or expired OTP"
	msgCodeExpired     = "OTP has expired. Please request a new one."
	msgTooManyAttempts = "Too many incorrect attempts. Please request a new OTP."
	msgNoPending       = "No pending registration found for this email"
	msgAlreadyVerified = "This email is already verified. Please sign in."
	msgInternal        = "Something went wrong. Please try again."
)

func fieldError(field, msg string) map[string]regsdk.Messages {
	return map[string]regsdk.Messages{field: {msg}}
}

// writeServiceError maps service errors onto the API error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fields   validatex.FieldErrors
		invalid  *service.InvalidCodeError
		cooldown *service.CooldownError
	)

	switch {
	case errors.Is(err, httpx.ErrBadJSON):
		httpx.WriteMessage(w, http.StatusBadRequest, msgBadBody)

	case errors.As(err, &fields):
		out := make(map[string]regsdk.Messages, len(fields))
		for k, v := range fields {
			out[k] = regsdk.Messages{v}
		}
		httpx.WriteJSON(w, http.StatusUnprocessableEntity, regsdk.ErrorResponse{
			Message: msgFixFields,
			Errors:  out,
		})

	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteJSON(w, http.StatusUnprocessableEntity, regsdk.ErrorResponse{
			Message: msgEmailTaken,
			Errors:  fieldError("email", msgEmailTaken),
		})

	case errors.As(err, &invalid):
		msg := "Invalid OTP. " + strconv.Itoa(invalid.Remaining) + " attempt(s) remaining."
		httpx.WriteJSON(w, http.StatusBadRequest, regsdk.ErrorResponse{
			Message: msg,
			Errors:  fieldError("otp", msg),
		})

	case errors.Is(err, service.ErrChallengeNotFound):
		httpx.WriteJSON(w, http.StatusBadRequest, regsdk.ErrorResponse{
			Message: msgInvalidCode,
			Errors:  fieldError("otp", msgInvalidCode),
		})

	case errors.Is(err, service.ErrCodeExpired):
		httpx.WriteMessage(w, http.StatusGone, msgCodeExpired)

	case errors.Is(err, service.ErrTooManyAttempts):
		httpx.WriteMessage(w, http.StatusGone, msgTooManyAttempts)

	case errors.As(err, &cooldown):
		w.Header().Set("Retry-After", strconv.Itoa(cooldown.Seconds()))
		httpx.WriteMessage(w, http.StatusTooManyRequests,
			"Please wait "+strconv.Itoa(cooldown.Seconds())+" seconds before requesting another OTP.")

	case errors.Is(err, service.ErrNoPendingRegistration):
		httpx.WriteMessage(w, http.StatusNotFound, msgNoPending)

	case errors.Is(err, service.ErrAlreadyVerified):
		httpx.WriteMessage(w, http.StatusConflict, msgAlreadyVerified)

	default:
		slogx.FromContext(r.Context()).ErrorContext(r.Context(), "request failed", "error", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, msgInternal)
	}
}
