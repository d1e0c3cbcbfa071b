/*
Package regsdk is the client for the hireflow registration API.

# Flow

Registration is a three call protocol. The applicant's draft is posted to
/api/register. The API either completes registration outright or emails a
4 digit code and answers with the instant that code expires:

	client := regsdk.NewSDKClient("http://localhost:8080")

	resp, err := client.Register(ctx, regsdk.RegisterRequest{ ... })
	if err != nil {
		// see Errors below
	}
	if resp.RequiresOTP() {
		// show the challenge, counting down to *resp.ExpiresAt
	}

The code is confirmed with VerifyOTP. A new code (and a new expiry) is
requested with ResendOTP:

	_, err = client.VerifyOTP(ctx, resp.Email, "4821")

	again, err := client.ResendOTP(ctx, resp.Email)
	// again.ExpiresAt replaces the previous expiry

# Detecting a challenge

Older backends only say "OTP sent" in the message. Newer ones also send
otp_required. RequiresOTP prefers the explicit flag and falls back to a case
insensitive search for "otp" in the message.

# Errors

Every call returns one of four typed errors on failure, use errors.As or
Classify to tell them apart:

  - *ValidationError: the server rejected fields (422). Fields maps the
    request field name to a message.
  - *AuthorizationError: the code is wrong, expired or burned (400 on otp,
    401, 403, 410).
  - *NetworkError: the request never completed or the body was unreadable.
    Safe to retry.
  - *ServerError: anything else. Message carries the server's text verbatim.

For example:

	var verr *regsdk.ValidationError
	if errors.As(err, &verr) {
		for field, msg := range verr.Fields {
			form.SetError(field, msg)
		}
	}

# Timeouts

NewSDKClient applies DefaultTimeout (10s) to every call. Callers should also
pass a context they cancel when the result is no longer wanted; a cancelled
call surfaces as a *NetworkError wrapping context.Canceled.

# Health

GetLiveness and GetReadiness hit /livez and /readyz. The portal polls
GetLiveness at start up before showing the form.
*/
package regsdk
