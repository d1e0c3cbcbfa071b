package regsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *regsdk.SDKClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return regsdk.NewSDKClient(srv.URL + "/")
}

func reply(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func TestRegisterChallenge(t *testing.T) {
	t.Parallel()

	var got regsdk.RegisterRequest
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/register", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		reply(w, http.StatusCreated, `{"message":"OTP sent to your email","email":"ada@example.com","expires_at":"2026-01-02T03:04:05Z"}`)
	})

	resp, err := client.Register(context.Background(), regsdk.RegisterRequest{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Role:      regsdk.RoleCandidate,
	})
	require.NoError(t, err)

	require.Equal(t, "Ada", got.FirstName)
	require.True(t, resp.RequiresOTP())
	require.NotNil(t, resp.ExpiresAt)
	require.True(t, resp.ExpiresAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestRequiresOTP(t *testing.T) {
	t.Parallel()

	yes, no := true, false

	cases := []struct {
		name string
		resp regsdk.RegisterResponse
		want bool
	}{
		{"message mentions otp", regsdk.RegisterResponse{Message: "Please verify the OTP we sent"}, true},
		{"case insensitive", regsdk.RegisterResponse{Message: "otp required"}, true},
		{"plain success", regsdk.RegisterResponse{Message: "Registration complete"}, false},
		{"explicit true wins", regsdk.RegisterResponse{Message: "Check your inbox", OTPRequired: &yes}, true},
		{"explicit false wins", regsdk.RegisterResponse{Message: "no otp needed", OTPRequired: &no}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.resp.RequiresOTP())
		})
	}
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		kind   regsdk.FailureKind
		check  func(t *testing.T, err error)
	}{
		{
			name:   "422 field list",
			status: http.StatusUnprocessableEntity,
			body:   `{"message":"The given data was invalid.","errors":{"email":["Email already taken"],"mobile":"Mobile already taken"}}`,
			kind:   regsdk.KindValidation,
			check: func(t *testing.T, err error) {
				var verr *regsdk.ValidationError
				require.ErrorAs(t, err, &verr)
				require.Equal(t, "Email already taken", verr.Fields["email"])
				require.Equal(t, "Mobile already taken", verr.Fields["mobile"])
				require.Equal(t, "The given data was invalid.", verr.Message)
			},
		},
		{
			name:   "wrong otp",
			status: http.StatusBadRequest,
			body:   `{"errors":{"otp":"Invalid OTP"}}`,
			kind:   regsdk.KindAuthorization,
			check: func(t *testing.T, err error) {
				var aerr *regsdk.AuthorizationError
				require.ErrorAs(t, err, &aerr)
				require.Equal(t, "Invalid OTP", aerr.Message)
			},
		},
		{
			name:   "expired code",
			status: http.StatusGone,
			body:   `{"message":"OTP expired, request a new one"}`,
			kind:   regsdk.KindAuthorization,
		},
		{
			name:   "cooldown",
			status: http.StatusTooManyRequests,
			body:   `{"message":"Please wait before requesting another code"}`,
			kind:   regsdk.KindServer,
			check: func(t *testing.T, err error) {
				var serr *regsdk.ServerError
				require.ErrorAs(t, err, &serr)
				require.Equal(t, "Please wait before requesting another code", serr.Message)
			},
		},
		{
			name:   "html from a proxy",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			kind:   regsdk.KindServer,
			check: func(t *testing.T, err error) {
				var serr *regsdk.ServerError
				require.ErrorAs(t, err, &serr)
				require.Equal(t, "Bad Gateway", serr.Message)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				reply(w, tc.status, tc.body)
			})

			_, err := client.VerifyOTP(context.Background(), "ada@example.com", "0000")
			require.Error(t, err)
			require.Equal(t, tc.kind, regsdk.Classify(err))
			if tc.check != nil {
				tc.check(t, err)
			}
		})
	}
}

func TestMalformedSuccessBodyIsNetworkError(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"expires_at":`)
	})

	_, err := client.ResendOTP(context.Background(), "ada@example.com")
	require.Equal(t, regsdk.KindNetwork, regsdk.Classify(err))
}

func TestResendWithoutExpiryIsNetworkError(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"message":"sent"}`)
	})

	resp, err := client.ResendOTP(context.Background(), "ada@example.com")
	require.Nil(t, resp)
	require.ErrorIs(t, err, regsdk.ErrMissingExpiry)
	require.Equal(t, regsdk.KindNetwork, regsdk.Classify(err))
}

func TestUnreachableIsNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := regsdk.NewSDKClient(url).ResendOTP(context.Background(), "ada@example.com")

	var nerr *regsdk.NetworkError
	require.ErrorAs(t, err, &nerr)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.VerifyOTP(ctx, "ada@example.com", "1234")
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, regsdk.KindNetwork, regsdk.Classify(err))
}

func TestResendAndVerifyWireShape(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/api/resend-otp":
			require.Equal(t, map[string]string{"email": "ada@example.com"}, body)
			reply(w, http.StatusOK, `{"message":"OTP resent","expires_at":"2026-01-02T03:10:00Z"}`)
		case "/api/verify-otp":
			require.Equal(t, map[string]string{"email": "ada@example.com", "otp": "4821"}, body)
			reply(w, http.StatusOK, `{"message":"verified","access_token":"tok","token_type":"Bearer","expires_in":900}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	resend, err := client.ResendOTP(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, 2026, resend.ExpiresAt.Year())

	verified, err := client.VerifyOTP(context.Background(), "ada@example.com", "4821")
	require.NoError(t, err)
	require.Equal(t, "tok", verified.AccessToken)
}

func TestRegisterRequestValidate(t *testing.T) {
	t.Parallel()

	req := regsdk.RegisterRequest{
		FirstName:         "Ada",
		LastName:          "Lovelace",
		Email:             "ada@example.com",
		Mobile:            "+61412345678",
		Experience:        "4",
		JobTitle:          "Engineer",
		PreferredLocation: "Sydney",
		JobType:           "full-time",
		Password:          "analytical",
		Role:              regsdk.RoleCandidate,
	}
	require.Nil(t, req.Validate())

	req.Role = "admin"
	req.Password = "short"
	errs := req.Validate()
	require.Contains(t, errs, "role")
	require.Contains(t, errs, "password")
}

func TestRegisterRequestNormalized(t *testing.T) {
	t.Parallel()

	got := regsdk.RegisterRequest{
		FirstName: "  Ada ",
		Email:     " Ada@Example.COM ",
		Password:  "  keep spaces  ",
		Role:      " Recruiter",
	}.Normalized()

	require.Equal(t, "Ada", got.FirstName)
	require.Equal(t, "ada@example.com", got.Email)
	require.Equal(t, "  keep spaces  ", got.Password)
	require.Equal(t, regsdk.RoleRecruiter, got.Role)
}
