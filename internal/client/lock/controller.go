package lock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lulemo/habitlock/internal/client/store"
	"github.com/lulemo/habitlock/internal/logging"
	"github.com/lulemo/habitlock/internal/secret"
)

// DefaultErrorDelay is how long PIN failure feedback stays on screen before
// the buffer clears and entry restarts.
const DefaultErrorDelay = 500 * time.Millisecond

// Config wires a Controller to its collaborators.
type Config struct {
	Store   store.CredentialStore
	Gateway Gateway
	Logger  logging.Logger

	// BiometricEnabled turns on the automatic prompt at mount and the
	// manual biometric trigger.
	BiometricEnabled bool

	// ErrorDelay overrides DefaultErrorDelay when positive.
	ErrorDelay time.Duration

	// OnUnlock fires exactly once when the device unlocks, after any
	// pending legacy-secret migration has been persisted.
	OnUnlock func()

	// OnResetRequested fires when the forgot-PIN flow clears the stored
	// PIN. The cleared secret is never part of the payload.
	OnResetRequested func()
}

// Controller drives the device lock. All exported methods are safe for
// concurrent use; verification and biometric challenges run asynchronously
// so input handling never blocks.
type Controller struct {
	mu    sync.Mutex
	state State

	creds      store.CredentialStore
	gateway    Gateway
	logger     logging.Logger
	bioEnabled bool
	errorDelay time.Duration
	onUnlock   func()
	onReset    func()

	bypassed       bool
	autoPromptDone bool
	errorTimer     *time.Timer
	closed         bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a Controller. When no PIN secret exists the lock is bypassed:
// the controller starts in PhaseUnlocked and every input is a no-op.
func New(cfg Config) (*Controller, error) {
	stored, err := cfg.Store.Get(store.KeyPIN)
	if err != nil {
		return nil, err
	}

	delay := cfg.ErrorDelay
	if delay <= 0 {
		delay = DefaultErrorDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		creds:      cfg.Store,
		gateway:    cfg.Gateway,
		logger:     cfg.Logger.With("module", "device_lock"),
		bioEnabled: cfg.BiometricEnabled,
		errorDelay: delay,
		onUnlock:   cfg.OnUnlock,
		onReset:    cfg.OnResetRequested,
		ctx:        ctx,
		cancel:     cancel,
	}

	if stored == "" {
		c.bypassed = true
		c.state = State{Phase: PhaseUnlocked}
	} else {
		c.state = State{Phase: PhaseLocked}
	}
	return c, nil
}

// Bypassed reports whether no PIN is configured and the lock is inactive.
func (c *Controller) Bypassed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bypassed
}

// State returns a snapshot of the current lock state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start triggers the automatic biometric prompt when enabled and available.
// The prompt fires at most once per controller regardless of how many times
// Start is called; re-renders must not re-prompt.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.closed || c.bypassed || !c.bioEnabled || c.autoPromptDone || c.state.Phase != PhaseLocked {
		c.mu.Unlock()
		return
	}
	c.autoPromptDone = true
	c.mu.Unlock()

	go func() {
		avail, err := c.gateway.Availability(c.ctx)
		if err != nil {
			c.logger.Warn(c.ctx, "biometric availability check failed", "error", err)
			return
		}
		if !avail.Available {
			return
		}
		c.dispatch(evBiometricPrompt{auto: true})
	}()
}

// PressDigit appends a PIN digit. Non-digit runes and input outside
// PhaseLocked are ignored.
func (c *Controller) PressDigit(d rune) { c.dispatch(evDigit{d: d}) }

// Backspace removes the last buffered digit.
func (c *Controller) Backspace() { c.dispatch(evBackspace{}) }

// TriggerBiometric starts a user-requested biometric challenge.
func (c *Controller) TriggerBiometric() {
	if !c.bioEnabled {
		return
	}
	c.dispatch(evBiometricPrompt{auto: false})
}

// ForgotPIN opens the recovery flow when a security question is configured;
// otherwise the state gains a "recovery unavailable" notice and stays locked.
func (c *Controller) ForgotPIN() { c.dispatch(evForgot{}) }

// SubmitAnswer verifies a security answer inside the forgot flow.
func (c *Controller) SubmitAnswer(answer string) {
	c.dispatch(evSubmitAnswer{answer: strings.TrimSpace(answer)})
}

// ConfirmReset performs the PIN reset offered by PhaseResetReady: the stored
// PIN, security question, and answer are cleared and the device unlocks.
func (c *Controller) ConfirmReset() { c.dispatch(evConfirmReset{}) }

// Cancel returns to PhaseLocked from any non-terminal phase.
func (c *Controller) Cancel() { c.dispatch(evCancel{}) }

// Close tears the controller down: pending timers are stopped and outstanding
// challenges canceled so no transition fires after disposal.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.errorTimer != nil {
		c.errorTimer.Stop()
		c.errorTimer = nil
	}
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) dispatch(ev event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next, effects := reduce(c.state, ev)
	c.state = next
	c.mu.Unlock()

	for _, fx := range effects {
		c.run(fx)
	}
}

func (c *Controller) run(fx effect) {
	switch f := fx.(type) {
	case fxVerifyPIN:
		go c.verifySecret(store.KeyPIN, f.pin, func(ok bool) { c.dispatch(evPinChecked{ok: ok}) })

	case fxVerifyAnswer:
		go c.verifySecret(store.KeySecurityAnswer, f.answer, func(ok bool) { c.dispatch(evAnswerChecked{ok: ok}) })

	case fxRunBiometric:
		go func() {
			c.dispatch(evBiometricStarted{})
			outcome := c.gateway.VerifyIdentity(c.ctx)
			c.dispatch(evBiometricDone{auto: f.auto, outcome: outcome})
		}()

	case fxCheckQuestion:
		go func() {
			questionID, err := c.creds.Get(store.KeySecurityQuestion)
			if err != nil {
				c.logger.Error(c.ctx, "reading security question failed", "error", err)
				c.dispatch(evForgotChecked{})
				return
			}
			answer, err := c.creds.Get(store.KeySecurityAnswer)
			if err != nil {
				c.logger.Error(c.ctx, "reading security answer failed", "error", err)
				c.dispatch(evForgotChecked{})
				return
			}
			_, known := QuestionByID(questionID)
			c.dispatch(evForgotChecked{
				available:  known && answer != "",
				questionID: questionID,
			})
		}()

	case fxStartErrorTimer:
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		if c.errorTimer != nil {
			c.errorTimer.Stop()
		}
		c.errorTimer = time.AfterFunc(c.errorDelay, func() {
			c.dispatch(evErrorTimerElapsed{})
		})
		c.mu.Unlock()

	case fxReset:
		if err := store.RemovePIN(c.creds); err != nil {
			c.logger.Error(c.ctx, "clearing PIN on reset failed", "error", err)
		}
		if c.onReset != nil {
			c.onReset()
		}

	case fxUnlock:
		if c.onUnlock != nil {
			c.onUnlock()
		}
	}
}

// verifySecret checks input against the stored value under key and migrates
// legacy plaintext to a hashed record. The rewrite completes before done is
// invoked so a success signal never races a pending migration.
func (c *Controller) verifySecret(key, input string, done func(ok bool)) {
	stored, err := c.creds.Get(key)
	if err != nil {
		c.logger.Error(c.ctx, "credential read failed", "key", key, "error", err)
		done(false)
		return
	}

	if !secret.Verify(input, stored) {
		done(false)
		return
	}

	if migrated, changed, err := secret.Upgrade(input, stored); err == nil && changed {
		if err := c.creds.Set(key, migrated); err != nil {
			// A failed rewrite leaves the legacy value in place; the next
			// successful verification retries the migration.
			c.logger.Warn(c.ctx, "legacy secret migration failed", "key", key, "error", err)
		}
	}
	done(true)
}
