package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lulemo/habitlock/internal/client/store"
	"github.com/lulemo/habitlock/internal/secret"
)

func stubPIN(t *testing.T, pins ...string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) {
		pin := pins[0]
		if len(pins) > 1 {
			pins = pins[1:]
		}
		return []byte(pin), nil
	}
}

func TestSetupPINEmptyQuestionNumber(t *testing.T) {
	stubPIN(t, "1234")
	creds := store.NewMemoryStore()

	// an empty line at the question-number prompt re-prompts instead of crashing
	in := bufio.NewReader(strings.NewReader("y\n\n1\nrex\n"))
	require.NoError(t, setupPIN(in, creds))

	pin, err := creds.Get(store.KeyPIN)
	require.NoError(t, err)
	assert.True(t, secret.Verify("1234", pin))
	assert.False(t, secret.IsLegacy(pin))

	question, err := creds.Get(store.KeySecurityQuestion)
	require.NoError(t, err)
	assert.Equal(t, "pet", question)

	answer, err := creds.Get(store.KeySecurityAnswer)
	require.NoError(t, err)
	assert.True(t, secret.Verify("rex", answer))
}

func TestSetupPINWithoutQuestion(t *testing.T) {
	stubPIN(t, "0007")
	creds := store.NewMemoryStore()

	in := bufio.NewReader(strings.NewReader("n\n"))
	require.NoError(t, setupPIN(in, creds))

	pin, err := creds.Get(store.KeyPIN)
	require.NoError(t, err)
	assert.True(t, secret.Verify("0007", pin))

	question, err := creds.Get(store.KeySecurityQuestion)
	require.NoError(t, err)
	assert.Empty(t, question)
}

func TestEnrollPINRejectsBadInput(t *testing.T) {
	stubPIN(t, "12", "12ab", "1234")

	hashed, err := enrollPIN()
	require.NoError(t, err)
	assert.True(t, secret.Verify("1234", hashed))
}

func TestIsPIN(t *testing.T) {
	assert.True(t, isPIN([]byte("1234")))
	assert.False(t, isPIN([]byte("")))
	assert.False(t, isPIN([]byte("123")))
	assert.False(t, isPIN([]byte("12345")))
	assert.False(t, isPIN([]byte("12a4")))
}
