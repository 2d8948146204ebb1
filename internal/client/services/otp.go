package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/cryptox"
)

// State of an OTP challenge.
type State int

const (
	StateIdle State = iota
	StateCredentialsSubmitted
	StateOtpPending
	StateOtpVerified
	StateOtpExpired
	StateSubmissionFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCredentialsSubmitted:
		return "credentials submitted"
	case StateOtpPending:
		return "otp pending"
	case StateOtpVerified:
		return "otp verified"
	case StateOtpExpired:
		return "otp expired"
	case StateSubmissionFailed:
		return "submission failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is a consistent view of a challenge.
type Snapshot struct {
	State       State
	Remaining   int
	OtpID       string
	DisplayName string
	Message     string
}

// otpMachine is the challenge state shared by the login and signup flows.
// Its lock is never held across a network call: every operation is split
// into a begin step that validates the state and a finish step that applies
// the answer to whatever the state is by then.
type otpMachine struct {
	ttl int

	mu          sync.Mutex
	state       State
	remaining   int
	otpID       string
	displayName string
	message     string
}

func newOTPMachine(ttlSeconds int) *otpMachine {
	if ttlSeconds <= 0 {
		ttlSeconds = common.DefaultOTPSeconds
	}
	return &otpMachine{ttl: ttlSeconds}
}

// Snapshot returns the current state of the challenge.
func (m *otpMachine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:       m.state,
		Remaining:   m.remaining,
		OtpID:       m.otpID,
		DisplayName: m.displayName,
		Message:     m.message,
	}
}

// Tick advances the countdown by one second. It only has an effect while an
// OTP is pending; reaching zero latches OtpExpired.
func (m *otpMachine) Tick() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateOtpPending {
		return m.state
	}
	m.remaining--
	if m.remaining <= 0 {
		m.remaining = 0
		m.state = StateOtpExpired
		m.message = common.MsgOTPExpired
	}
	return m.state
}

// RunCountdown feeds ticks into the machine until ctx is done or ticks is
// closed. onTick, if set, sees the state after every tick.
func (m *otpMachine) RunCountdown(ctx context.Context, ticks <-chan time.Time, onTick func(Snapshot)) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			m.Tick()
			if onTick != nil {
				onTick(m.Snapshot())
			}
		}
	}
}

func (m *otpMachine) reset() {
	m.state = StateIdle
	m.remaining = 0
	m.otpID = ""
	m.displayName = ""
	m.message = ""
}

func (m *otpMachine) beginSubmit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle && m.state != StateSubmissionFailed {
		return common.NewUserError(fmt.Sprintf("Cannot submit while %s.", m.state), ErrInvalidState)
	}
	m.reset()
	m.state = StateCredentialsSubmitted
	return nil
}

// finishSubmit applies the answer to a submission. A nil err means the
// challenge was issued.
func (m *otpMachine) finishSubmit(err error, otpID, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateCredentialsSubmitted {
		// abandoned while in flight
		return ErrInvalidState
	}
	if err != nil {
		m.state = StateSubmissionFailed
		m.message = err.Error()
		return err
	}
	m.issue(otpID, displayName)
	return nil
}

// issue must be called with mu held.
func (m *otpMachine) issue(otpID, displayName string) {
	m.state = StateOtpPending
	m.remaining = m.ttl
	m.otpID = otpID
	if displayName != "" {
		m.displayName = displayName
	}
	m.message = ""
}

func (m *otpMachine) beginResend() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateOtpPending && m.state != StateOtpExpired {
		return common.NewUserError(fmt.Sprintf("Cannot resend while %s.", m.state), ErrInvalidState)
	}
	return nil
}

// finishResend installs the new challenge. A failed resend leaves the
// current one, pending or expired, as it was.
func (m *otpMachine) finishResend(err error, otpID, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateOtpPending && m.state != StateOtpExpired {
		return ErrInvalidState
	}
	if err != nil {
		m.message = err.Error()
		return err
	}
	m.issue(otpID, displayName)
	return nil
}

// beginVerify returns the otpId to verify against. No request may be sent
// unless an OTP is pending.
func (m *otpMachine) beginVerify() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateOtpPending:
		return m.otpID, nil
	case StateOtpExpired:
		return "", common.NewUserError(common.MsgOTPExpired, ErrOTPExpired)
	default:
		return "", common.NewUserError(fmt.Sprintf("Cannot verify while %s.", m.state), ErrInvalidState)
	}
}

// finishVerify applies a verification answer. err is the failure of the call
// itself; digest is what the server returned on success. The digest is
// checked against the most recently issued otpId, so an answer for a
// challenge that was replaced by a resend never verifies. accept runs under
// the lock and must not touch the network.
func (m *otpMachine) finishVerify(err error, code, digest string, accept func(displayName string) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateOtpPending:
	case StateOtpExpired:
		return common.NewUserError(common.MsgOTPExpired, ErrOTPExpired)
	default:
		return ErrInvalidState
	}

	if err != nil {
		m.message = err.Error()
		return err
	}

	if !digestEqual(digest, cryptox.OTPDigest(code, m.otpID)) {
		err := common.NewUserError(common.MsgContactAdmin, ErrDigestMismatch)
		m.message = err.Error()
		return err
	}

	if accept != nil {
		if err := accept(m.displayName); err != nil {
			return err
		}
	}
	m.state = StateOtpVerified
	m.remaining = 0
	m.message = ""
	return nil
}

// Abandon destroys the challenge and returns to Idle.
func (m *otpMachine) Abandon() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func digestEqual(got, want string) bool {
	return got != "" && got == want
}
