// Package lock implements the client-side device lock: a pure
// (state, event) -> (state, effects) transition function plus a thin
// effect-running controller. PIN entry, biometric unlock, and forgot-PIN
// recovery via security question all flow through the same machine, which
// keeps every transition testable without a rendering layer.
package lock

// PinLength is the fixed number of digits in a device PIN.
const PinLength = 4

// Phase enumerates the lock screen states.
type Phase int

const (
	// PhaseLocked accepts PIN digits and flow triggers.
	PhaseLocked Phase = iota
	// PhaseVerifyingPin has a verification outstanding; digits are ignored.
	PhaseVerifyingPin
	// PhasePinError shows failure feedback until the error timer elapses.
	PhasePinError
	// PhaseAwaitingBiometric has requested a biometric challenge.
	PhaseAwaitingBiometric
	// PhaseVerifyingBiometric has the platform challenge in progress.
	PhaseVerifyingBiometric
	// PhaseForgotFlow shows the configured security question.
	PhaseForgotFlow
	// PhaseVerifyingAnswer has a security-answer verification outstanding.
	PhaseVerifyingAnswer
	// PhaseResetReady offers exactly one action: reset the PIN. The secret
	// itself is never disclosed on this path.
	PhaseResetReady
	// PhaseUnlocked is terminal; the machine accepts no further events.
	PhaseUnlocked
)

// State is the externally visible lock state. It carries no secrets beyond
// the in-progress PIN buffer.
type State struct {
	Phase      Phase
	PinBuffer  string
	QuestionID string
	// Notice is an inline message (biometric failure, recovery unavailable).
	Notice string
	// AnswerError flags a rejected security answer inside the forgot flow.
	AnswerError bool
}

// event is an input to the state machine.
type event interface{ isEvent() }

type evDigit struct{ d rune }
type evBackspace struct{}
type evPinChecked struct{ ok bool }
type evBiometricPrompt struct{ auto bool }
type evBiometricStarted struct{}
type evBiometricDone struct {
	auto    bool
	outcome Outcome
}
type evForgot struct{}
type evForgotChecked struct {
	available  bool
	questionID string
}
type evSubmitAnswer struct{ answer string }
type evAnswerChecked struct{ ok bool }
type evConfirmReset struct{}
type evCancel struct{}
type evErrorTimerElapsed struct{}

func (evDigit) isEvent()             {}
func (evBackspace) isEvent()         {}
func (evPinChecked) isEvent()        {}
func (evBiometricPrompt) isEvent()   {}
func (evBiometricStarted) isEvent()  {}
func (evBiometricDone) isEvent()     {}
func (evForgot) isEvent()            {}
func (evForgotChecked) isEvent()     {}
func (evSubmitAnswer) isEvent()      {}
func (evAnswerChecked) isEvent()     {}
func (evConfirmReset) isEvent()      {}
func (evCancel) isEvent()            {}
func (evErrorTimerElapsed) isEvent() {}

// effect is a side effect requested by a transition; the controller runs it.
type effect interface{ isEffect() }

type fxVerifyPIN struct{ pin string }
type fxRunBiometric struct{ auto bool }
type fxCheckQuestion struct{}
type fxVerifyAnswer struct{ answer string }
type fxStartErrorTimer struct{}
type fxReset struct{}
type fxUnlock struct{}

func (fxVerifyPIN) isEffect()       {}
func (fxRunBiometric) isEffect()    {}
func (fxCheckQuestion) isEffect()   {}
func (fxVerifyAnswer) isEffect()    {}
func (fxStartErrorTimer) isEffect() {}
func (fxReset) isEffect()           {}
func (fxUnlock) isEffect()          {}

// reduce is the pure transition function. Events that do not apply in the
// current phase are ignored, which is what serializes verification attempts:
// while PhaseVerifyingPin is active no digit can start a second one.
func reduce(s State, ev event) (State, []effect) {
	switch e := ev.(type) {
	case evDigit:
		if s.Phase != PhaseLocked || len(s.PinBuffer) >= PinLength {
			return s, nil
		}
		if e.d < '0' || e.d > '9' {
			return s, nil
		}
		s.Notice = ""
		s.PinBuffer += string(e.d)
		if len(s.PinBuffer) == PinLength {
			s.Phase = PhaseVerifyingPin
			return s, []effect{fxVerifyPIN{pin: s.PinBuffer}}
		}
		return s, nil

	case evBackspace:
		if s.Phase != PhaseLocked || s.PinBuffer == "" {
			return s, nil
		}
		s.Notice = ""
		s.PinBuffer = s.PinBuffer[:len(s.PinBuffer)-1]
		return s, nil

	case evPinChecked:
		if s.Phase != PhaseVerifyingPin {
			return s, nil
		}
		if e.ok {
			return unlocked(), []effect{fxUnlock{}}
		}
		s.Phase = PhasePinError
		return s, []effect{fxStartErrorTimer{}}

	case evErrorTimerElapsed:
		if s.Phase != PhasePinError {
			return s, nil
		}
		s.Phase = PhaseLocked
		s.PinBuffer = ""
		return s, nil

	case evBiometricPrompt:
		if s.Phase != PhaseLocked {
			return s, nil
		}
		s.Phase = PhaseAwaitingBiometric
		s.Notice = ""
		return s, []effect{fxRunBiometric{auto: e.auto}}

	case evBiometricStarted:
		if s.Phase != PhaseAwaitingBiometric {
			return s, nil
		}
		s.Phase = PhaseVerifyingBiometric
		return s, nil

	case evBiometricDone:
		if s.Phase != PhaseAwaitingBiometric && s.Phase != PhaseVerifyingBiometric {
			return s, nil
		}
		switch e.outcome.Kind {
		case OutcomeSuccess:
			return unlocked(), []effect{fxUnlock{}}
		case OutcomeCanceled:
			s.Phase = PhaseLocked
			if !e.auto {
				s.Notice = "biometric check canceled"
			}
			return s, nil
		default:
			s.Phase = PhaseLocked
			s.Notice = e.outcome.Reason
			if s.Notice == "" {
				s.Notice = "biometric check failed"
			}
			return s, nil
		}

	case evForgot:
		if s.Phase != PhaseLocked {
			return s, nil
		}
		return s, []effect{fxCheckQuestion{}}

	case evForgotChecked:
		if s.Phase != PhaseLocked {
			return s, nil
		}
		if !e.available {
			s.Notice = "PIN recovery is not configured on this device"
			return s, nil
		}
		s.Phase = PhaseForgotFlow
		s.QuestionID = e.questionID
		s.PinBuffer = ""
		s.Notice = ""
		s.AnswerError = false
		return s, nil

	case evSubmitAnswer:
		if s.Phase != PhaseForgotFlow {
			return s, nil
		}
		s.Phase = PhaseVerifyingAnswer
		s.AnswerError = false
		return s, []effect{fxVerifyAnswer{answer: e.answer}}

	case evAnswerChecked:
		if s.Phase != PhaseVerifyingAnswer {
			return s, nil
		}
		if e.ok {
			s.Phase = PhaseResetReady
			return s, nil
		}
		s.Phase = PhaseForgotFlow
		s.AnswerError = true
		return s, nil

	case evConfirmReset:
		if s.Phase != PhaseResetReady {
			return s, nil
		}
		return unlocked(), []effect{fxReset{}, fxUnlock{}}

	case evCancel:
		if s.Phase == PhaseUnlocked {
			return s, nil
		}
		return State{Phase: PhaseLocked}, nil
	}

	return s, nil
}

func unlocked() State {
	return State{Phase: PhaseUnlocked}
}
