package regsdk

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/aussiebroadwan/hireflow/pkg/validatex"
)

// Roles accepted at registration.
const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
)

// ============================================================================
// Error envelope
// ============================================================================

// Messages is one or more messages for a field. The API may send either a
// bare string or a list of strings, both decode here.
type Messages []string

func (m *Messages) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*m = Messages{one}
		return nil
	}

	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*m = many
	return nil
}

// First returns the first message or "".
func (m Messages) First() string {
	if len(m) == 0 {
		return ""
	}
	return m[0]
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	// Message is a human readable summary, shown verbatim to the user
	Message string `json:"message,omitempty"`

	// Errors holds per-field messages keyed by request field name
	Errors map[string]Messages `json:"errors,omitempty"`
}

// ============================================================================
// Registration
// ============================================================================

// RegisterRequest is the applicant's registration draft.
type RegisterRequest struct {
	FirstName         string `json:"first_name"         validate:"required,max=100"`
	LastName          string `json:"last_name"          validate:"required,max=100"`
	Email             string `json:"email"              validate:"required,email"`
	Mobile            string `json:"mobile"             validate:"required,mobile"`
	Experience        string `json:"experience"         validate:"required,experience"`
	JobTitle          string `json:"job_title"          validate:"required,max=200"`
	PreferredLocation string `json:"preferred_location" validate:"required,max=200"`
	JobType           string `json:"job_type"           validate:"required,max=50"`
	Password          string `json:"password"           validate:"required,password"`
	Role              string `json:"role"               validate:"required,oneof=candidate recruiter"`
}

// Validate checks the request locally. It returns nil when valid, otherwise a
// map of json field name to message.
func (r RegisterRequest) Validate() map[string]string {
	err := validatex.Default().Struct(r)
	if err == nil {
		return nil
	}
	if fe, ok := err.(validatex.FieldErrors); ok {
		return fe
	}
	return map[string]string{"": err.Error()}
}

// Normalized trims surrounding whitespace from every field except the
// password and lower cases email and role.
func (r RegisterRequest) Normalized() RegisterRequest {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = NormalizeEmail(r.Email)
	r.Mobile = strings.TrimSpace(r.Mobile)
	r.Experience = strings.TrimSpace(r.Experience)
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	r.PreferredLocation = strings.TrimSpace(r.PreferredLocation)
	r.JobType = strings.TrimSpace(r.JobType)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	return r
}

// NormalizeEmail is the canonical form an address is stored and looked up by.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterResponse is returned by POST /api/register.
type RegisterResponse struct {
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`

	// OTPRequired is the explicit discriminant; older backends omit it and
	// signal a challenge through Message alone.
	OTPRequired *bool `json:"otp_required,omitempty"`

	// ExpiresAt is when the emailed code stops being accepted
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// RequiresOTP reports whether the applicant must complete a code challenge.
// An explicit otp_required wins; otherwise the message is searched for "otp".
func (r *RegisterResponse) RequiresOTP() bool {
	if r.OTPRequired != nil {
		return *r.OTPRequired
	}
	return strings.Contains(strings.ToLower(r.Message), "otp")
}

// ============================================================================
// Verification
// ============================================================================

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,otp"`
}

// VerifyOTPResponse carries an access token for the now verified account.
type VerifyOTPResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResendOTPResponse struct {
	Message   string    `json:"message,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ============================================================================
// Health
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Cooldown string `json:"cooldown,omitempty"`
}
