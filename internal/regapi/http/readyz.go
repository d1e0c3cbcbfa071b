package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/regapi/cooldown"
	"github.com/aussiebroadwan/hireflow/internal/regapi/store"
	"github.com/aussiebroadwan/hireflow/pkg/httpx"
	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Probe
//	@Description	Checks the database and the resend cooldown backend
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	regsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	regsdk.HealthResponse	"a dependency is down"
//	@Router			/readyz [get]
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	gate cooldown.Gate,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &regsdk.HealthChecks{
			Database: "ok",
			Cooldown: "ok",
		}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if err := gate.Ping(r.Context()); err != nil {
			checks.Cooldown = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, regsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
