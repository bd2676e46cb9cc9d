package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_DigitEntry(t *testing.T) {
	s := State{Phase: PhaseLocked}

	for _, d := range "123" {
		var fx []effect
		s, fx = reduce(s, evDigit{d: d})
		assert.Empty(t, fx)
	}
	assert.Equal(t, "123", s.PinBuffer)
	assert.Equal(t, PhaseLocked, s.Phase)

	s, fx := reduce(s, evDigit{d: '4'})
	assert.Equal(t, PhaseVerifyingPin, s.Phase)
	require.Len(t, fx, 1)
	assert.Equal(t, fxVerifyPIN{pin: "1234"}, fx[0])
}

func TestReduce_NonDigitIgnored(t *testing.T) {
	s, fx := reduce(State{Phase: PhaseLocked}, evDigit{d: 'x'})
	assert.Empty(t, s.PinBuffer)
	assert.Empty(t, fx)
}

func TestReduce_DigitsIgnoredWhileVerifying(t *testing.T) {
	s := State{Phase: PhaseVerifyingPin, PinBuffer: "1234"}
	next, fx := reduce(s, evDigit{d: '5'})
	assert.Equal(t, s, next)
	assert.Empty(t, fx)
}

func TestReduce_Backspace(t *testing.T) {
	s := State{Phase: PhaseLocked, PinBuffer: "12"}
	s, _ = reduce(s, evBackspace{})
	assert.Equal(t, "1", s.PinBuffer)

	s, _ = reduce(State{Phase: PhaseLocked}, evBackspace{})
	assert.Equal(t, "", s.PinBuffer)
}

func TestReduce_PinChecked(t *testing.T) {
	t.Run("success unlocks", func(t *testing.T) {
		s, fx := reduce(State{Phase: PhaseVerifyingPin, PinBuffer: "1234"}, evPinChecked{ok: true})
		assert.Equal(t, PhaseUnlocked, s.Phase)
		assert.Empty(t, s.PinBuffer)
		assert.Equal(t, []effect{fxUnlock{}}, fx)
	})

	t.Run("failure starts error timer", func(t *testing.T) {
		s, fx := reduce(State{Phase: PhaseVerifyingPin, PinBuffer: "9999"}, evPinChecked{ok: false})
		assert.Equal(t, PhasePinError, s.Phase)
		assert.Equal(t, []effect{fxStartErrorTimer{}}, fx)

		s, fx = reduce(s, evErrorTimerElapsed{})
		assert.Equal(t, PhaseLocked, s.Phase)
		assert.Equal(t, "", s.PinBuffer)
		assert.Empty(t, fx)
	})

	t.Run("ignored outside verification", func(t *testing.T) {
		s, fx := reduce(State{Phase: PhaseLocked}, evPinChecked{ok: true})
		assert.Equal(t, PhaseLocked, s.Phase)
		assert.Empty(t, fx)
	})
}

func TestReduce_BiometricFlow(t *testing.T) {
	s, fx := reduce(State{Phase: PhaseLocked}, evBiometricPrompt{auto: false})
	assert.Equal(t, PhaseAwaitingBiometric, s.Phase)
	assert.Equal(t, []effect{fxRunBiometric{auto: false}}, fx)

	s, _ = reduce(s, evBiometricStarted{})
	assert.Equal(t, PhaseVerifyingBiometric, s.Phase)

	t.Run("success", func(t *testing.T) {
		next, fx := reduce(s, evBiometricDone{outcome: Outcome{Kind: OutcomeSuccess}})
		assert.Equal(t, PhaseUnlocked, next.Phase)
		assert.Equal(t, []effect{fxUnlock{}}, fx)
	})

	t.Run("auto cancel is silent", func(t *testing.T) {
		next, _ := reduce(s, evBiometricDone{auto: true, outcome: Outcome{Kind: OutcomeCanceled}})
		assert.Equal(t, PhaseLocked, next.Phase)
		assert.Empty(t, next.Notice)
	})

	t.Run("manual cancel surfaces a notice", func(t *testing.T) {
		next, _ := reduce(s, evBiometricDone{auto: false, outcome: Outcome{Kind: OutcomeCanceled}})
		assert.Equal(t, PhaseLocked, next.Phase)
		assert.NotEmpty(t, next.Notice)
	})

	t.Run("failure surfaces the reason", func(t *testing.T) {
		next, _ := reduce(s, evBiometricDone{auto: true, outcome: Outcome{Kind: OutcomeFailure, Reason: "sensor busy"}})
		assert.Equal(t, PhaseLocked, next.Phase)
		assert.Equal(t, "sensor busy", next.Notice)
	})

	t.Run("prompt ignored outside locked", func(t *testing.T) {
		unlockedState := State{Phase: PhaseUnlocked}
		next, fx := reduce(unlockedState, evBiometricPrompt{auto: true})
		assert.Equal(t, unlockedState, next)
		assert.Empty(t, fx)
	})
}

func TestReduce_ForgotFlow(t *testing.T) {
	s, fx := reduce(State{Phase: PhaseLocked}, evForgot{})
	assert.Equal(t, PhaseLocked, s.Phase)
	assert.Equal(t, []effect{fxCheckQuestion{}}, fx)

	t.Run("unavailable", func(t *testing.T) {
		next, _ := reduce(s, evForgotChecked{available: false})
		assert.Equal(t, PhaseLocked, next.Phase)
		assert.NotEmpty(t, next.Notice)
	})

	t.Run("available then wrong answer then right answer", func(t *testing.T) {
		next, _ := reduce(s, evForgotChecked{available: true, questionID: "pet"})
		assert.Equal(t, PhaseForgotFlow, next.Phase)
		assert.Equal(t, "pet", next.QuestionID)

		next, fx := reduce(next, evSubmitAnswer{answer: "rex"})
		assert.Equal(t, PhaseVerifyingAnswer, next.Phase)
		assert.Equal(t, []effect{fxVerifyAnswer{answer: "rex"}}, fx)

		wrong, _ := reduce(next, evAnswerChecked{ok: false})
		assert.Equal(t, PhaseForgotFlow, wrong.Phase)
		assert.True(t, wrong.AnswerError)

		right, _ := reduce(next, evAnswerChecked{ok: true})
		assert.Equal(t, PhaseResetReady, right.Phase)
	})
}

func TestReduce_ResetReady(t *testing.T) {
	s, fx := reduce(State{Phase: PhaseResetReady}, evConfirmReset{})
	assert.Equal(t, PhaseUnlocked, s.Phase)
	assert.Equal(t, []effect{fxReset{}, fxUnlock{}}, fx)

	// the reset path carries no secret material in state or effects
	assert.Empty(t, s.PinBuffer)
}

func TestReduce_CancelReturnsToLocked(t *testing.T) {
	phases := []Phase{
		PhaseLocked, PhaseVerifyingPin, PhasePinError, PhaseAwaitingBiometric,
		PhaseVerifyingBiometric, PhaseForgotFlow, PhaseVerifyingAnswer, PhaseResetReady,
	}
	for _, p := range phases {
		s, fx := reduce(State{Phase: p, PinBuffer: "12", Notice: "x", AnswerError: true}, evCancel{})
		assert.Equal(t, State{Phase: PhaseLocked}, s, "phase %d", p)
		assert.Empty(t, fx)
	}

	s, _ := reduce(State{Phase: PhaseUnlocked}, evCancel{})
	assert.Equal(t, PhaseUnlocked, s.Phase)
}
