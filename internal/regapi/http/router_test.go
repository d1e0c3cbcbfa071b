package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/regapi/cooldown"
	"github.com/aussiebroadwan/hireflow/internal/regapi/devotp"
	regapihttp "github.com/aussiebroadwan/hireflow/internal/regapi/http"
	"github.com/aussiebroadwan/hireflow/internal/regapi/metrics"
	"github.com/aussiebroadwan/hireflow/internal/regapi/service"
	"github.com/aussiebroadwan/hireflow/internal/regapi/store/drivers/sqlite"
	"github.com/aussiebroadwan/hireflow/pkg/clock"
	"github.com/aussiebroadwan/hireflow/pkg/cryptox"
	"github.com/aussiebroadwan/hireflow/pkg/jwtx"
	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
	"github.com/aussiebroadwan/hireflow/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
)

const testIssuer = "hireflow-test"

type testServer struct {
	srv    *httptest.Server
	client *regsdk.SDKClient
	clock  *clock.Fake
	signer jwtx.Signer
}

func newTestServer(t *testing.T, dev bool) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "http.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewEd25519Signer("test-key", pemKey)
	require.NoError(t, err)

	clk := clock.NewFake(time.Now().UTC().Truncate(time.Second))
	gate := cooldown.NewMemoryGate(clk)
	mailbox := devotp.NewMailbox(clk)
	reg := prometheus.NewRegistry()

	router := regapihttp.NewRouter("test", st, gate, slogx.Discard())
	router.RegistrationService = &service.RegistrationService{
		Store:    st,
		Gate:     gate,
		Sender:   mailbox,
		Signer:   signer,
		Hasher:   cryptox.PasswordHasher{},
		Codes:    service.Codes{Issuer: testIssuer},
		Clock:    clk,
		Metrics:  metrics.New(reg),
		Issuer:   testIssuer,
		Audience: []string{"portal"},
		CodeTTL:  5 * time.Minute,
		Cooldown: time.Minute,
	}
	router.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	if dev {
		router.Mailbox = mailbox
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		srv:    srv,
		client: regsdk.NewSDKClient(srv.URL),
		clock:  clk,
		signer: signer,
	}
}

func registration(email string) regsdk.RegisterRequest {
	return regsdk.RegisterRequest{
		FirstName:         "Grace",
		LastName:          "Hopper",
		Email:             email,
		Mobile:            "+61498765432",
		Experience:        "12",
		JobTitle:          "Rear Admiral",
		PreferredLocation: "Melbourne",
		JobType:           "contract",
		Password:          "cobol-forever",
		Role:              regsdk.RoleRecruiter,
	}
}

func (ts *testServer) devCode(t *testing.T, email string) string {
	t.Helper()

	resp, err := http.Get(ts.srv.URL + "/dev/otp?email=" + email)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out regapihttp.DevOTPResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.OTP, int(service.CodeDigits))
	return out.OTP
}

func flip(code string) string {
	b := []byte(code)
	b[0] = '0' + (b[0]-'0'+1)%10
	return string(b)
}

func TestRegistrationFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, true)
	ctx := context.Background()
	email := "grace@example.com"

	reg, err := ts.client.Register(ctx, registration(" Grace@Example.com "))
	require.NoError(t, err)
	require.True(t, reg.RequiresOTP())
	require.Equal(t, email, reg.Email)
	require.NotNil(t, reg.ExpiresAt)
	require.Equal(t, ts.clock.Now().Add(5*time.Minute).Unix(), reg.ExpiresAt.Unix())

	code := ts.devCode(t, email)

	_, err = ts.client.VerifyOTP(ctx, email, flip(code))
	require.Error(t, err)
	require.Equal(t, regsdk.KindAuthorization, regsdk.Classify(err))
	require.Contains(t, err.Error(), "4 attempt(s) remaining")

	out, err := ts.client.VerifyOTP(ctx, email, code)
	require.NoError(t, err)
	require.Equal(t, service.MessageVerified, out.Message)
	require.Equal(t, "Bearer", out.TokenType)

	v := jwtx.NewEd25519Verifier(testIssuer, []string{"portal"}, ts.signer)
	claims, err := v.Verify(out.AccessToken)
	require.NoError(t, err)
	require.Equal(t, email, claims.Email)
	require.Equal(t, regsdk.RoleRecruiter, claims.Role)

	// a second registration of a verified address is a field error
	_, err = ts.client.Register(ctx, registration(email))
	var verr *regsdk.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, http.StatusUnprocessableEntity, verr.StatusCode)
	require.Contains(t, verr.Fields, "email")

	_, err = ts.client.ResendOTP(ctx, email)
	var serr *regsdk.ServerError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, http.StatusConflict, serr.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, false)

	req := registration("not-an-email")
	req.Password = "short"
	req.Role = "admin"

	_, err := ts.client.Register(context.Background(), req)
	var verr *regsdk.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Please correct the highlighted fields", verr.Message)
	require.Contains(t, verr.Fields, "email")
	require.Contains(t, verr.Fields, "password")
	require.Contains(t, verr.Fields, "role")
}

func TestResendCooldown(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, true)
	ctx := context.Background()
	email := "cool@example.com"

	_, err := ts.client.Register(ctx, registration(email))
	require.NoError(t, err)
	first := ts.devCode(t, email)

	t.Run("within cooldown", func(t *testing.T) {
		body := strings.NewReader(`{"email":"` + email + `"}`)
		resp, err := http.Post(ts.srv.URL+"/api/resend-otp", "application/json", body)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		require.Equal(t, "60", resp.Header.Get("Retry-After"))
	})

	t.Run("after cooldown", func(t *testing.T) {
		ts.clock.Advance(time.Minute)

		out, err := ts.client.ResendOTP(ctx, email)
		require.NoError(t, err)
		require.Equal(t, service.MessageResent, out.Message)
		require.Equal(t, ts.clock.Now().Add(5*time.Minute).Unix(), out.ExpiresAt.Unix())

		second := ts.devCode(t, email)
		require.NotEqual(t, first, second)

		_, err = ts.client.VerifyOTP(ctx, email, first)
		require.Equal(t, regsdk.KindAuthorization, regsdk.Classify(err))

		_, err = ts.client.VerifyOTP(ctx, email, second)
		require.NoError(t, err)
	})
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, true)
	ctx := context.Background()
	email := "late@example.com"

	_, err := ts.client.Register(ctx, registration(email))
	require.NoError(t, err)
	code := ts.devCode(t, email)

	ts.clock.Advance(5 * time.Minute)

	_, err = ts.client.VerifyOTP(ctx, email, code)
	var aerr *regsdk.AuthorizationError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, http.StatusGone, aerr.StatusCode)
}

func TestVerifyUnknownEmail(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, false)

	_, err := ts.client.VerifyOTP(context.Background(), "nobody@example.com", "1234")
	var aerr *regsdk.AuthorizationError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, http.StatusBadRequest, aerr.StatusCode)
}

func TestMalformedBody(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, false)

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{"truncated json", "application/json", `{"email":`, http.StatusBadRequest},
		{"trailing data", "application/json", `{"email":"a@b.co"} {}`, http.StatusBadRequest},
		{"wrong content type", "text/plain", `{"email":"a@b.co"}`, http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.srv.URL+"/api/resend-otp", tt.contentType, strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHealthAndSystemRoutes(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, false)
	ctx := context.Background()

	live, err := ts.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := ts.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Cooldown)

	_, err = ts.client.Register(ctx, registration("metrics@example.com"))
	require.NoError(t, err)

	resp, err := http.Get(ts.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// dev mailbox is off so the code endpoint is not mounted
	dev, err := http.Get(ts.srv.URL + "/dev/otp?email=metrics@example.com")
	require.NoError(t, err)
	defer dev.Body.Close()
	require.Equal(t, http.StatusNotFound, dev.StatusCode)
}

type downGate struct{ cooldown.Gate }

func (downGate) Ping(context.Context) error { return errors.New("connection refused") }

func TestReadyzDegraded(t *testing.T) {
	t.Parallel()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "ready.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	h := regapihttp.ReadyzHandler(time.Now(), "test", st, downGate{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var out regsdk.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Equal(t, "degraded", out.Status)
	require.Equal(t, "ok", out.Checks.Database)
	require.Equal(t, "error: connection refused", out.Checks.Cooldown)
}
