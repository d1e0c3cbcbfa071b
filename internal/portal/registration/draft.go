package registration

import (
	"strings"

	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
	"github.com/samber/lo"
)

// Draft is the applicant's registration as typed so far.
type Draft regsdk.RegisterRequest

// Field names, matching the API's json keys.
const (
	FieldFirstName         = "first_name"
	FieldLastName          = "last_name"
	FieldEmail             = "email"
	FieldMobile            = "mobile"
	FieldExperience        = "experience"
	FieldJobTitle          = "job_title"
	FieldPreferredLocation = "preferred_location"
	FieldJobType           = "job_type"
	FieldPassword          = "password"
	FieldRole              = "role"
)

// FieldSpec describes one form field for rendering.
type FieldSpec struct {
	Name   string
	Label  string
	Secret bool
	Hint   string
}

// Fields lists the form in display order.
var Fields = []FieldSpec{
	{Name: FieldFirstName, Label: "First name"},
	{Name: FieldLastName, Label: "Last name"},
	{Name: FieldEmail, Label: "Email"},
	{Name: FieldMobile, Label: "Mobile", Hint: "10-15 digits, optional leading +"},
	{Name: FieldExperience, Label: "Experience (years)"},
	{Name: FieldJobTitle, Label: "Job title"},
	{Name: FieldPreferredLocation, Label: "Preferred location"},
	{Name: FieldJobType, Label: "Job type", Hint: "e.g. full-time, contract"},
	{Name: FieldPassword, Label: "Password", Secret: true, Hint: "at least 8 characters"},
	{Name: FieldRole, Label: "Role", Hint: regsdk.RoleCandidate + " or " + regsdk.RoleRecruiter},
}

var fieldNames = lo.Map(Fields, func(f FieldSpec, _ int) string { return f.Name })

// IsField reports whether name is a form field.
func IsField(name string) bool { return lo.Contains(fieldNames, name) }

func (d *Draft) ref(name string) *string {
	switch name {
	case FieldFirstName:
		return &d.FirstName
	case FieldLastName:
		return &d.LastName
	case FieldEmail:
		return &d.Email
	case FieldMobile:
		return &d.Mobile
	case FieldExperience:
		return &d.Experience
	case FieldJobTitle:
		return &d.JobTitle
	case FieldPreferredLocation:
		return &d.PreferredLocation
	case FieldJobType:
		return &d.JobType
	case FieldPassword:
		return &d.Password
	case FieldRole:
		return &d.Role
	default:
		return nil
	}
}

// Get returns the current value of a field, "" for unknown names.
func (d Draft) Get(name string) string {
	if p := d.ref(name); p != nil {
		return *p
	}
	return ""
}

// request is the draft as sent.
func (d Draft) request() regsdk.RegisterRequest {
	return regsdk.RegisterRequest(d).Normalized()
}

// fieldFor guesses which field a free text error is about.
func fieldFor(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "email"):
		return FieldEmail
	case strings.Contains(lower, "mobile"), strings.Contains(lower, "phone"):
		return FieldMobile
	case strings.Contains(lower, "password"):
		return FieldPassword
	default:
		return ""
	}
}
