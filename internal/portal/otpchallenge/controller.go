// Package otpchallenge drives the one-time code step that follows
// registration: four digit cells, an expiry countdown, a resend cooldown and
// the verify/resend calls.
//
// State machine:
//
//	Active    -> Verifying  Verify with a full buffer
//	Verifying -> Active     code rejected, digits kept, LastError set
//	Verifying -> Expired    code rejected after the countdown hit zero
//	Verifying -> Closed     code accepted
//	Active    -> Expired    countdown reached zero
//	Expired   -> Active     Resend succeeded
//	any       -> Closed     Cancel
//
// All methods are safe for concurrent use. Network calls run with the
// controller unlocked under a context that Cancel (or success) cancels; a
// response that lands after that is dropped and the call reports ErrClosed.
package otpchallenge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/portal/countdown"
	"github.com/aussiebroadwan/hireflow/internal/portal/notify"
	"github.com/aussiebroadwan/hireflow/pkg/clock"
	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
)

var (
	ErrClosed            = errors.New("otpchallenge: challenge closed")
	ErrBusy              = errors.New("otpchallenge: request already in flight")
	ErrCooldownActive    = errors.New("otpchallenge: resend cooldown active")
	ErrVerifyUnavailable = errors.New("otpchallenge: code expired, request a new one")
	ErrIncomplete        = errors.New("otpchallenge: code incomplete")

	// ErrStaleExpiry is returned when a resend reply does not move the
	// expiry forward.
	ErrStaleExpiry = errors.New("otpchallenge: resend did not extend expiry")
)

type State int

const (
	Active State = iota
	Verifying
	Expired
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Verifying:
		return "verifying"
	case Expired:
		return "expired"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client is the part of the registration API the challenge needs.
type Client interface {
	VerifyOTP(ctx context.Context, email, otp string) (*regsdk.VerifyOTPResponse, error)
	ResendOTP(ctx context.Context, email string) (*regsdk.ResendOTPResponse, error)
}

type Config struct {
	Email string

	// ExpiresAt is when the current code lapses. Nil means unknown: no
	// countdown runs and the code never expires locally.
	ExpiresAt *time.Time

	Client   Client
	Clock    clock.Clock
	Notifier notify.Notifier
	Logger   *slog.Logger

	// Cooldown is the resend cooldown in seconds, countdown.DefaultCooldown
	// when zero.
	Cooldown int

	// OnSuccess is called once, after the controller has closed.
	OnSuccess func(*regsdk.VerifyOTPResponse)
}

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot struct {
	State     State
	Email     string
	ExpiresAt *time.Time
	Cells     [CodeLength]string
	Focus     int
	LastError string

	HasExpiry       bool
	ExpirySeconds   int
	CooldownSeconds int
	Resending       bool

	CanVerify bool
	CanResend bool
}

type Controller struct {
	cfg Config
	log *slog.Logger

	life   context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	cells     cells
	focus     int
	lastError string
	expiresAt *time.Time
	resending bool

	// epoch changes whenever timers are replaced or torn down; callbacks
	// from an older epoch are ignored.
	epoch     uint64
	countdown *countdown.Countdown
	cooldown  *countdown.Cooldown
	expirySec int
	coolSec   int
	expired   bool

	listeners []func(Snapshot)
}

// New opens a challenge right after a code was sent: state Active, both
// timers running, cooldown at its full length. parent bounds the lifetime of
// every request the challenge makes.
func New(parent context.Context, cfg Config) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Discard
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = countdown.DefaultCooldown
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	c := &Controller{
		cfg: cfg,
		log: log.With("component", "otp_challenge", "email", cfg.Email),
	}
	c.life, c.cancel = context.WithCancel(parent)

	c.mu.Lock()
	c.installLocked(cfg.ExpiresAt)
	c.mu.Unlock()

	c.log.Debug("challenge opened", "expires_in", c.expirySec)
	return c
}

// OnChange registers fn to receive a snapshot after every state change,
// timer ticks included. fn runs without the controller locked.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Cells() [CodeLength]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cells
}

func (c *Controller) Focus() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// CanVerify reports whether all cells are filled and the challenge is Active
// with no resend in flight.
func (c *Controller) CanVerify() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canVerifyLocked()
}

// CanResend reports whether the cooldown has elapsed, no resend is in
// flight and the challenge is Active or Expired.
func (c *Controller) CanResend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canResendLocked()
}

func (c *Controller) canVerifyLocked() bool {
	return c.state == Active && !c.resending && c.cells.full()
}

func (c *Controller) canResendLocked() bool {
	return c.coolSec == 0 && !c.resending && (c.state == Active || c.state == Expired)
}

func (c *Controller) editableLocked() bool {
	return c.state == Active || c.state == Expired
}

// Enter puts a single digit into cell and advances focus. Anything else, or
// an edit while verifying or closed, is ignored and reported as false.
func (c *Controller) Enter(cell int, value string) bool {
	c.mu.Lock()
	if !validCell(cell) || !isDigit(value) || !c.editableLocked() {
		c.mu.Unlock()
		return false
	}

	c.cells[cell] = value
	c.focus = nextFocus(cell)
	c.unlockAndEmit()
	return true
}

// Backspace clears a filled cell, or moves focus back from an empty one.
func (c *Controller) Backspace(cell int) bool {
	c.mu.Lock()
	if !validCell(cell) || !c.editableLocked() {
		c.mu.Unlock()
		return false
	}

	switch {
	case c.cells[cell] != "":
		c.cells[cell] = ""
		c.focus = cell
	case cell > 0:
		c.focus = prevFocus(cell)
	default:
		c.mu.Unlock()
		return false
	}
	c.unlockAndEmit()
	return true
}

// Paste fills all cells at once. It only accepts exactly four digits pasted
// into the first cell; anything else leaves the buffer untouched.
func (c *Controller) Paste(cell int, text string) bool {
	c.mu.Lock()
	if cell != 0 || !reCode.MatchString(text) || !c.editableLocked() {
		c.mu.Unlock()
		return false
	}

	for i := range CodeLength {
		c.cells[i] = text[i : i+1]
	}
	c.focus = CodeLength - 1
	c.unlockAndEmit()
	return true
}

// Verify submits the buffer. It blocks until the API answers, ctx is done or
// the challenge is cancelled.
func (c *Controller) Verify(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.state == Closed:
		c.mu.Unlock()
		return ErrClosed
	case c.state == Verifying, c.resending:
		c.mu.Unlock()
		return ErrBusy
	case c.state == Expired:
		c.mu.Unlock()
		return ErrVerifyUnavailable
	case !c.cells.full():
		c.mu.Unlock()
		return ErrIncomplete
	}

	code := c.cells.code()
	c.state = Verifying
	c.lastError = ""
	epoch := c.epoch
	c.unlockAndEmit()

	reqCtx, done := c.requestContext(ctx)
	resp, err := c.cfg.Client.VerifyOTP(reqCtx, c.cfg.Email, code)
	done()

	c.mu.Lock()
	if c.state == Closed || epoch != c.epoch {
		c.mu.Unlock()
		c.log.Debug("dropping verify response for closed challenge")
		return ErrClosed
	}

	if err != nil {
		if c.expired {
			c.state = Expired
		} else {
			c.state = Active
		}

		kind := regsdk.Classify(err)
		switch kind {
		case regsdk.KindAuthorization, regsdk.KindValidation:
			c.lastError = challengeMessage(err)
		}
		c.unlockAndEmit()

		c.log.Info("verify rejected", "kind", kind.String(), "err", err)
		if kind == regsdk.KindNetwork || kind == regsdk.KindServer {
			c.cfg.Notifier.Notify(notify.Error, generalMessage(err))
		}
		return err
	}

	c.closeLocked()
	c.unlockAndEmit()

	c.log.Info("challenge verified")
	if c.cfg.OnSuccess != nil {
		c.cfg.OnSuccess(resp)
	}
	return nil
}

// Resend asks for a new code. It is refused without a network call while
// the cooldown runs. On success the buffer and error are cleared, a new
// expiry and a full cooldown are installed and an Expired challenge becomes
// Active again. On failure nothing changes and a notification is raised; a
// reply whose expiry is not later than the current one is a failure too.
func (c *Controller) Resend(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.state == Closed:
		c.mu.Unlock()
		return ErrClosed
	case c.state == Verifying, c.resending:
		c.mu.Unlock()
		return ErrBusy
	case c.coolSec > 0:
		c.mu.Unlock()
		return ErrCooldownActive
	}

	c.resending = true
	epoch := c.epoch
	c.unlockAndEmit()

	reqCtx, done := c.requestContext(ctx)
	resp, err := c.cfg.Client.ResendOTP(reqCtx, c.cfg.Email)
	done()

	c.mu.Lock()
	if c.state == Closed || epoch != c.epoch {
		c.mu.Unlock()
		c.log.Debug("dropping resend response for closed challenge")
		return ErrClosed
	}
	c.resending = false

	if err != nil {
		c.unlockAndEmit()
		c.log.Info("resend failed", "kind", regsdk.Classify(err).String(), "err", err)
		c.cfg.Notifier.Notify(notify.Error, generalMessage(err))
		return err
	}

	if resp == nil || resp.ExpiresAt.IsZero() ||
		(c.expiresAt != nil && !resp.ExpiresAt.After(*c.expiresAt)) {
		c.unlockAndEmit()
		c.log.Warn("resend reply did not extend expiry")
		c.cfg.Notifier.Notify(notify.Error, generalMessage(ErrStaleExpiry))
		return ErrStaleExpiry
	}

	expiresAt := resp.ExpiresAt
	c.cells = cells{}
	c.focus = 0
	c.lastError = ""
	c.state = Active
	c.installLocked(&expiresAt)
	c.unlockAndEmit()

	c.log.Info("code resent", "expires_at", expiresAt)
	c.cfg.Notifier.Notify(notify.Info, "A new code has been sent to "+c.cfg.Email)
	return nil
}

// Cancel abandons the challenge: timers stop before Cancel returns and any
// in-flight request is cancelled. Idempotent.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.state == Closed {
		c.mu.Unlock()
		return
	}
	c.closeLocked()
	c.unlockAndEmit()
	c.log.Debug("challenge cancelled")
}

// requestContext derives a request context that ends with either the caller's
// ctx or the challenge's lifetime.
func (c *Controller) requestContext(ctx context.Context) (context.Context, func()) {
	reqCtx, cancel := context.WithCancel(c.life)
	stop := context.AfterFunc(ctx, cancel)
	return reqCtx, func() {
		stop()
		cancel()
	}
}

// installLocked replaces both timers for a freshly sent code.
func (c *Controller) installLocked(expiresAt *time.Time) {
	c.stopTimersLocked()
	c.epoch++
	epoch := c.epoch

	c.expiresAt = expiresAt
	c.expired = false
	c.expirySec = 0
	if expiresAt != nil {
		c.countdown = countdown.StartCountdown(c.cfg.Clock, *expiresAt,
			func(sec int) { c.onExpiryTick(epoch, sec) },
			func() { c.onExpired(epoch) },
		)
		c.expirySec = c.countdown.Remaining()
		if c.countdown.Expired() {
			c.expired = true
			if c.state == Active {
				c.state = Expired
			}
		}
	}

	c.cooldown = countdown.StartCooldown(c.cfg.Clock, c.cfg.Cooldown,
		func(sec int) { c.onCooldownTick(epoch, sec) },
		nil,
	)
	c.coolSec = c.cooldown.Remaining()
}

func (c *Controller) stopTimersLocked() {
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
	if c.cooldown != nil {
		c.cooldown.Stop()
		c.cooldown = nil
	}
}

func (c *Controller) closeLocked() {
	c.state = Closed
	c.stopTimersLocked()
	c.epoch++
	c.cancel()
}

func (c *Controller) onExpiryTick(epoch uint64, sec int) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.expirySec = sec
	c.unlockAndEmit()
}

func (c *Controller) onExpired(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.expirySec = 0
	c.expired = true
	if c.state == Active {
		c.state = Expired
	}
	c.unlockAndEmit()
	c.log.Info("code expired")
}

func (c *Controller) onCooldownTick(epoch uint64, sec int) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.coolSec = sec
	c.unlockAndEmit()
}

// unlockAndEmit snapshots state, releases mu and notifies listeners.
func (c *Controller) unlockAndEmit() {
	snap := c.snapshotLocked()
	listeners := c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	var exp *time.Time
	if c.expiresAt != nil {
		t := *c.expiresAt
		exp = &t
	}
	return Snapshot{
		State:           c.state,
		Email:           c.cfg.Email,
		ExpiresAt:       exp,
		Cells:           c.cells,
		Focus:           c.focus,
		LastError:       c.lastError,
		HasExpiry:       c.expiresAt != nil,
		ExpirySeconds:   c.expirySec,
		CooldownSeconds: c.coolSec,
		Resending:       c.resending,
		CanVerify:       c.canVerifyLocked(),
		CanResend:       c.canResendLocked(),
	}
}
