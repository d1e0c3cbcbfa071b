package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/regapi/cooldown"
	"github.com/aussiebroadwan/hireflow/internal/regapi/devotp"
	"github.com/aussiebroadwan/hireflow/internal/regapi/service"
	"github.com/aussiebroadwan/hireflow/internal/regapi/store"
	"github.com/aussiebroadwan/hireflow/pkg/httpx"
	"github.com/aussiebroadwan/hireflow/pkg/slogx"

	_ "github.com/aussiebroadwan/hireflow/api/regapi" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	gate  cooldown.Gate

	RegistrationService *service.RegistrationService

	// Mailbox enables GET /dev/otp when set. Leave nil outside development.
	Mailbox *devotp.Mailbox

	// Metrics is served at GET /metrics when set.
	Metrics http.Handler
}

func NewRouter(
	buildVersion string,
	st store.Store,
	gate cooldown.Gate,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		gate:         gate,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerRegistration()
	r.registerSystem()
	r.registerDev()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Hireflow Registration API
//	@version		0.1.0
//	@description	Applicant registration with emailed one-time code verification.
//	@description
//	@description	Registration returns an expiry for the emailed code. Codes are four digits,
//	@description	a resend is allowed once per cooldown window and five wrong codes burn the challenge.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/hireflow
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerRegistration() {
	h := &RegistrationHandler{Service: r.RegistrationService}

	// POST /api/register - moderate limit by IP, it sends mail
	r.Mux.Handle("POST /api/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RequireJSON,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /api/verify-otp - strict limit by IP + email to slow code guessing
	r.Mux.Handle("POST /api/verify-otp",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RequireJSON,
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /api/resend-otp - moderate limit by IP; the per-email cooldown
	// is enforced by the service
	r.Mux.Handle("POST /api/resend-otp",
		httpx.Chain(http.HandlerFunc(h.HandleResend),
			httpx.RequireJSON,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.gate),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics)
	}
}

func (r *Router) registerDev() {
	if r.Mailbox == nil {
		return
	}
	r.logger.Warn("dev OTP endpoint enabled; codes are readable over HTTP")

	r.Mux.Handle("GET /dev/otp",
		httpx.Chain(DevOTPHandler(r.Mailbox),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
