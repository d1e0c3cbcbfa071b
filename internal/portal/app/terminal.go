package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/aussiebroadwan/hireflow/internal/portal/countdown"
	"github.com/aussiebroadwan/hireflow/internal/portal/notify"
	"github.com/aussiebroadwan/hireflow/internal/portal/otpchallenge"
	"github.com/aussiebroadwan/hireflow/internal/portal/registration"
	"github.com/aussiebroadwan/hireflow/pkg/clock"
	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
	"github.com/samber/lo"
)

var (
	// errQuit ends the session at the user's request or when input runs out.
	errQuit = errors.New("portal: quit")

	// errBack abandons the challenge and reopens the registration form.
	errBack = errors.New("portal: back to form")
)

const challengeHelp = "Type the 4 digit code (or one digit per line). " +
	"Commands: v verify, < delete, r resend, s status, b back to form, q quit."

// Terminal is a line oriented front end for the registration flow: it
// prompts for the form, then drives the code challenge.
type Terminal struct {
	In     io.Reader
	Out    io.Writer
	Client regsdk.VerificationClient
	Clock  clock.Clock
	Logger *slog.Logger

	// Cooldown is the resend cooldown in seconds.
	Cooldown int

	outMu sync.Mutex
	lines chan string
	done  chan struct{}
	notes notify.Queue
}

// Run blocks until the applicant is verified, told to sign in, quits or ctx
// ends. Quitting is not an error.
func (t *Terminal) Run(ctx context.Context) error {
	if t.Clock == nil {
		t.Clock = clock.New()
	}
	if t.Logger == nil {
		t.Logger = slog.Default()
	}
	t.notes.Logger = t.Logger
	t.startReader()
	defer close(t.done)

	t.printf("Hireflow applicant registration\n\n")

	form := registration.NewForm(t.Client, &t.notes, t.Logger)

	for {
		result, err := t.runForm(ctx, form, registration.Fields)
		if err != nil {
			return t.finish(ctx, err)
		}

		if result.Kind == registration.ResultSignIn {
			t.printf("\nYou can now sign in with your email and password.\n")
			return nil
		}

		resp, err := t.runChallenge(ctx, result.Challenge)
		if errors.Is(err, errBack) {
			// the form kept the draft; enter accepts each value as is
			t.printf("\nBack to the registration form. Press enter to keep a value.\n\n")
			continue
		}
		if err != nil {
			return t.finish(ctx, err)
		}

		t.printf("\n%s\n", lo.CoalesceOrEmpty(resp.Message, "Email verified."))
		if resp.ExpiresIn > 0 {
			t.printf("Signed in, session valid for %s.\n", countdown.FormatClock(resp.ExpiresIn))
		}
		return nil
	}
}

func (t *Terminal) finish(ctx context.Context, err error) error {
	if errors.Is(err, errQuit) || ctx.Err() != nil {
		t.printf("\nBye.\n")
		return nil
	}
	return err
}

// ============================================================================
// Registration form
// ============================================================================

func (t *Terminal) runForm(
	ctx context.Context,
	form *registration.Form,
	pending []registration.FieldSpec,
) (*registration.Result, error) {
	for {
		for _, f := range pending {
			if err := t.promptField(ctx, form, f); err != nil {
				return nil, err
			}
		}

		t.printf("Submitting...\n")
		res, err := form.Submit(ctx)
		t.flushNotes()
		if err == nil {
			return res, nil
		}

		errs := form.Errors()
		if len(errs) > 0 {
			t.printf("\nPlease fix the following:\n")
			pending = lo.Filter(registration.Fields, func(f registration.FieldSpec, _ int) bool {
				_, bad := errs[f.Name]
				return bad
			})
			for _, f := range pending {
				t.printf("  %s: %s\n", f.Label, errs[f.Name])
			}
			t.printf("\n")
			continue
		}

		// nothing to correct, the request itself failed
		t.printf("Press enter to try again or q to quit.\n")
		line, err := t.readLine(ctx)
		if err != nil {
			return nil, err
		}
		if isQuit(line) {
			return nil, errQuit
		}
		pending = nil
	}
}

func (t *Terminal) promptField(ctx context.Context, form *registration.Form, f registration.FieldSpec) error {
	current := form.Draft().Get(f.Name)

	prompt := f.Label
	if f.Hint != "" {
		prompt += " (" + f.Hint + ")"
	}
	if current != "" && !f.Secret {
		prompt += " [" + current + "]"
	}
	t.printf("%s: ", prompt)

	line, err := t.readLine(ctx)
	if err != nil {
		return err
	}
	if line == "" && current != "" {
		return nil
	}
	return form.UpdateField(f.Name, line)
}

// ============================================================================
// Code challenge
// ============================================================================

func (t *Terminal) runChallenge(ctx context.Context, h registration.Handoff) (*regsdk.VerifyOTPResponse, error) {
	verified := make(chan *regsdk.VerifyOTPResponse, 1)

	ctl := otpchallenge.New(ctx, otpchallenge.Config{
		Email:     h.Email,
		ExpiresAt: h.ExpiresAt,
		Client:    t.Client,
		Clock:     t.Clock,
		Notifier:  &t.notes,
		Logger:    t.Logger,
		Cooldown:  t.Cooldown,
		OnSuccess: func(resp *regsdk.VerifyOTPResponse) { verified <- resp },
	})
	defer ctl.Cancel()
	ctl.OnChange(t.announcer(ctl.Snapshot()))

	t.printf("\n%s\n", challengeHelp)
	t.render(ctl.Snapshot())

	for {
		line, err := t.readLine(ctx)
		if err != nil {
			return nil, err
		}
		cmd := strings.ToLower(strings.TrimSpace(line))

		switch {
		case isQuit(cmd):
			return nil, errQuit

		case cmd == "r" || cmd == "resend":
			t.report(ctl.Resend(ctx))

		case cmd == "v" || cmd == "verify":
			t.report(ctl.Verify(ctx))

		case cmd == "<" || cmd == "d" || cmd == "delete":
			cells := ctl.Cells()
			if i := lastFilled(cells); i >= 0 {
				ctl.Backspace(i)
			}

		case cmd == "b" || cmd == "back" || cmd == "cancel":
			ctl.Cancel()
			return nil, errBack

		case len(cmd) == otpchallenge.CodeLength:
			if !ctl.Paste(0, cmd) {
				t.printf("The code is %d digits.\n", otpchallenge.CodeLength)
				break
			}
			t.report(ctl.Verify(ctx))

		case len(cmd) == 1 && cmd[0] >= '0' && cmd[0] <= '9':
			ctl.Enter(ctl.Focus(), cmd)

		case cmd == "s" || cmd == "status" || cmd == "":

		default:
			t.printf("%s\n", challengeHelp)
		}

		t.flushNotes()

		select {
		case resp := <-verified:
			return resp, nil
		default:
		}
		t.render(ctl.Snapshot())
	}
}

// report prints the controller errors that are not already shown through
// the snapshot or a notification.
func (t *Terminal) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, otpchallenge.ErrIncomplete):
		t.printf("Enter all %d digits first.\n", otpchallenge.CodeLength)
	case errors.Is(err, otpchallenge.ErrVerifyUnavailable):
		t.printf("That code has expired. Type r to get a new one.\n")
	case errors.Is(err, otpchallenge.ErrCooldownActive):
		t.printf("Please wait before requesting another code.\n")
	case errors.Is(err, otpchallenge.ErrBusy):
		t.printf("Still working on the last request.\n")
	}
}

// announcer returns an OnChange listener that prints timer driven
// transitions as they happen. Ticks alone print nothing.
func (t *Terminal) announcer(initial otpchallenge.Snapshot) func(otpchallenge.Snapshot) {
	var (
		mu   sync.Mutex
		prev = initial
	)
	return func(s otpchallenge.Snapshot) {
		mu.Lock()
		defer mu.Unlock()

		if s.State == otpchallenge.Expired && prev.State != otpchallenge.Expired && prev.State != otpchallenge.Verifying {
			t.printf("\nYour code has expired. Type r to get a new one.\n")
		}
		if s.CooldownSeconds == 0 && prev.CooldownSeconds > 0 && s.State != otpchallenge.Closed {
			t.printf("\nYou can request a new code now (r).\n")
		}
		prev = s
	}
}

func (t *Terminal) render(s otpchallenge.Snapshot) {
	var b strings.Builder

	b.WriteString("Code for " + s.Email + "  ")
	for i, c := range s.Cells {
		switch {
		case c != "":
			b.WriteString("[" + c + "]")
		case i == s.Focus:
			b.WriteString("[>]")
		default:
			b.WriteString("[_]")
		}
	}

	switch {
	case s.State == otpchallenge.Expired:
		b.WriteString("  expired")
	case s.HasExpiry:
		b.WriteString("  expires in " + countdown.FormatClock(s.ExpirySeconds))
	}

	if s.CooldownSeconds > 0 {
		fmt.Fprintf(&b, "  resend in %ds", s.CooldownSeconds)
	} else if s.CanResend {
		b.WriteString("  resend available")
	}
	b.WriteString("\n")

	if s.LastError != "" {
		b.WriteString("! " + s.LastError + "\n")
	}

	t.printf("%s", b.String())
}

func lastFilled(cells [otpchallenge.CodeLength]string) int {
	for i, c := range slices.Backward(cells[:]) {
		if c != "" {
			return i
		}
	}
	return -1
}

// ============================================================================
// IO
// ============================================================================

func (t *Terminal) startReader() {
	t.lines = make(chan string)
	t.done = make(chan struct{})
	go func() {
		defer close(t.lines)
		sc := bufio.NewScanner(t.In)
		for sc.Scan() {
			select {
			case t.lines <- sc.Text():
			case <-t.done:
				return
			}
		}
	}()
}

// readLine returns the next input line. End of input counts as quitting.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-t.lines:
		if !ok {
			return "", errQuit
		}
		return strings.TrimSpace(line), nil
	}
}

func (t *Terminal) flushNotes() {
	for _, n := range t.notes.Drain() {
		prefix := "*"
		if n.Level == notify.Error {
			prefix = "!"
		}
		t.printf("%s %s\n", prefix, n.Message)
	}
}

func (t *Terminal) printf(format string, args ...any) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	_, _ = fmt.Fprintf(t.Out, format, args...)
}

func isQuit(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "q" || s == "quit" || s == "exit"
}
