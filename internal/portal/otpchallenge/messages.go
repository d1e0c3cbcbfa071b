package otpchallenge

import (
	"errors"

	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
)

// challengeMessage is the text shown under the cells for a rejected code.
func challengeMessage(err error) string {
	var (
		authErr *regsdk.AuthorizationError
		valErr  *regsdk.ValidationError
	)
	switch {
	case errors.As(err, &authErr) && authErr.Message != "":
		return authErr.Message
	case errors.As(err, &valErr):
		if msg := valErr.Fields["otp"]; msg != "" {
			return msg
		}
		if valErr.Message != "" {
			return valErr.Message
		}
	}
	return "Invalid code, please try again"
}

// generalMessage is the notification text for failures not tied to the code.
func generalMessage(err error) string {
	var (
		srvErr  *regsdk.ServerError
		authErr *regsdk.AuthorizationError
		valErr  *regsdk.ValidationError
	)
	switch {
	case errors.As(err, &srvErr) && srvErr.Message != "":
		return srvErr.Message
	case errors.As(err, &authErr) && authErr.Message != "":
		return authErr.Message
	case errors.As(err, &valErr) && valErr.Message != "":
		return valErr.Message
	case regsdk.Classify(err) == regsdk.KindNetwork:
		return "Could not reach the server, please try again"
	default:
		return "Something went wrong, please try again"
	}
}
