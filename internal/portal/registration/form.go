// Package registration holds the registration form: the draft, local
// validation, submission and the hand off to the code challenge.
package registration

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/portal/notify"
	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
	"github.com/samber/lo"
)

var (
	ErrUnknownField   = errors.New("registration: unknown field")
	ErrInvalidDraft   = errors.New("registration: draft has invalid fields")
	ErrSubmitInFlight = errors.New("registration: submission already in flight")
)

// Registrar is the part of the registration API the form needs.
type Registrar interface {
	Register(ctx context.Context, req regsdk.RegisterRequest) (*regsdk.RegisterResponse, error)
}

type ResultKind int

const (
	// ResultChallenge means a code was emailed and must be verified.
	ResultChallenge ResultKind = iota + 1
	// ResultSignIn means registration finished, send the user to sign in.
	ResultSignIn
)

// Handoff is what the code challenge starts from.
type Handoff struct {
	Email     string
	ExpiresAt *time.Time
}

type Result struct {
	Kind      ResultKind
	Challenge Handoff
	Message   string
}

type Form struct {
	client   Registrar
	notifier notify.Notifier
	log      *slog.Logger

	mu         sync.Mutex
	draft      Draft
	errors     map[string]string
	submitting bool
}

func NewForm(client Registrar, notifier notify.Notifier, logger *slog.Logger) *Form {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Form{
		client:   client,
		notifier: notifier,
		log:      logger.With("component", "registration_form"),
		errors:   map[string]string{},
	}
}

// UpdateField sets a field and clears any error recorded against it.
func (f *Form) UpdateField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.draft.ref(name)
	if p == nil {
		return ErrUnknownField
	}
	*p = value
	delete(f.errors, name)
	return nil
}

func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Errors returns a copy of the per-field error messages.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errors)
}

func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Reset discards the draft and its errors.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = Draft{}
	f.errors = map[string]string{}
}

// Submit validates the draft locally and, if it passes, registers it with
// exactly one API call. Local failures return ErrInvalidDraft with Errors
// populated. API failures are attached to fields where they name one and
// raised as notifications otherwise; the API error is returned.
func (f *Form) Submit(ctx context.Context) (*Result, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	req := f.draft.request()
	if errs := req.Validate(); len(errs) > 0 {
		f.errors = errs
		f.mu.Unlock()
		f.log.Debug("draft rejected locally", "fields", lo.Keys(errs))
		return nil, ErrInvalidDraft
	}

	f.errors = map[string]string{}
	f.submitting = true
	f.mu.Unlock()

	resp, err := f.client.Register(ctx, req)

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		general := f.applyErrorLocked(err)
		f.mu.Unlock()

		f.log.Info("registration failed", "kind", regsdk.Classify(err).String(), "err", err)
		if general != "" {
			f.notifier.Notify(notify.Error, general)
		}
		return nil, err
	}

	if !resp.RequiresOTP() {
		f.draft = Draft{}
		f.mu.Unlock()

		f.log.Info("registration complete")
		f.notifier.Notify(notify.Info, lo.CoalesceOrEmpty(resp.Message, "Registration complete, please sign in"))
		return &Result{Kind: ResultSignIn, Message: resp.Message}, nil
	}
	f.mu.Unlock()

	h := Handoff{
		Email:     lo.CoalesceOrEmpty(resp.Email, req.Email),
		ExpiresAt: resp.ExpiresAt,
	}
	f.log.Info("registration needs verification", "has_expiry", h.ExpiresAt != nil)
	f.notifier.Notify(notify.Info, lo.CoalesceOrEmpty(resp.Message, "We sent a code to "+h.Email))
	return &Result{Kind: ResultChallenge, Challenge: h, Message: resp.Message}, nil
}

// applyErrorLocked records field errors for err and returns the general
// notification text, "" when everything landed on a field.
func (f *Form) applyErrorLocked(err error) string {
	var valErr *regsdk.ValidationError
	if errors.As(err, &valErr) {
		known := lo.PickBy(valErr.Fields, func(k, _ string) bool { return IsField(k) })
		maps.Copy(f.errors, known)

		if valErr.Message != "" {
			return valErr.Message
		}

		// Fields the form cannot show still need to reach the user.
		unknown := lo.OmitByKeys(valErr.Fields, lo.Keys(known))
		if len(unknown) == 0 {
			return "Please correct the highlighted fields"
		}
		keys := lo.Keys(unknown)
		slices.Sort(keys)
		return strings.Join(lo.Map(keys, func(k string, _ int) string { return unknown[k] }), "; ")
	}

	msg := errorText(err)
	if field := fieldFor(msg); field != "" {
		f.errors[field] = msg
		return ""
	}
	return msg
}

func errorText(err error) string {
	var (
		srvErr  *regsdk.ServerError
		authErr *regsdk.AuthorizationError
	)
	switch {
	case errors.As(err, &srvErr) && srvErr.Message != "":
		return srvErr.Message
	case errors.As(err, &authErr) && authErr.Message != "":
		return authErr.Message
	case regsdk.Classify(err) == regsdk.KindNetwork:
		return "Could not reach the server, please try again"
	default:
		return "Registration failed, please try again"
	}
}
