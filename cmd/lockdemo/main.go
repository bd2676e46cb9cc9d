// Command lockdemo runs the device lock state machine against a JSON file
// store in the user's home directory. It is a development playground for the
// lock flow, not a shipping UI.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/lulemo/habitlock/internal/client/lock"
	"github.com/lulemo/habitlock/internal/client/store"
	"github.com/lulemo/habitlock/internal/logging"
	"github.com/lulemo/habitlock/internal/randx"
	"github.com/lulemo/habitlock/internal/secret"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// demoGateway approves every identity challenge after a short pause. It
// stands in for the platform biometric API.
type demoGateway struct{}

func (demoGateway) Availability(ctx context.Context) (lock.Availability, error) {
	return lock.Availability{Available: true}, nil
}

func (demoGateway) VerifyIdentity(ctx context.Context) lock.Outcome {
	select {
	case <-ctx.Done():
		return lock.Outcome{Kind: lock.OutcomeCanceled}
	case <-time.After(time.Second):
		return lock.Outcome{Kind: lock.OutcomeSuccess}
	}
}

func main() {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}
	creds, err := store.NewFileStore(filepath.Join(home, ".habitlock", "credentials.json"))
	if err != nil {
		log.Fatal(err)
	}

	reader := bufio.NewReader(os.Stdin)

	pin, err := creds.Get(store.KeyPIN)
	if err != nil {
		log.Fatal(err)
	}
	if pin == "" {
		if err := setupPIN(reader, creds); err != nil {
			log.Fatal(err)
		}
	}

	unlocked := make(chan struct{})
	ctrl, err := lock.New(lock.Config{
		Store:            creds,
		Gateway:          demoGateway{},
		Logger:           logging.NewJSON(),
		BiometricEnabled: false,
		OnUnlock:         func() { close(unlocked) },
		OnResetRequested: func() { fmt.Println("\r\nPIN cleared, set a new one on next start") },
	})
	if err != nil {
		log.Fatal(err)
	}
	defer ctrl.Close()

	if ctrl.Bypassed() {
		fmt.Println("no PIN configured, lock bypassed")
		return
	}
	ctrl.Start()

	if err := inputLoop(reader, ctrl, unlocked); err != nil {
		log.Fatal(err)
	}
}

// setupPIN runs the first-start enrollment: a 4-digit PIN plus an optional
// security question for recovery. Both are stored hashed.
func setupPIN(reader *bufio.Reader, creds store.CredentialStore) error {
	fmt.Println("no PIN configured yet")
	hashed, err := enrollPIN()
	if err != nil {
		return err
	}
	if err := creds.Set(store.KeyPIN, hashed); err != nil {
		return err
	}

	yes, err := prompt(reader, "set a security question for PIN recovery? (y/n)")
	if err != nil {
		return err
	}
	if !strings.EqualFold(yes, "y") {
		return nil
	}

	catalog := lock.Questions()
	for i, q := range catalog {
		fmt.Printf("  %d. %s\n", i+1, q.Label)
	}
	var question lock.Question
	for {
		line, err := prompt(reader, "question number")
		if err != nil {
			return err
		}
		if len(line) != 1 {
			continue
		}
		if n := int(line[0] - '0'); n >= 1 && n <= len(catalog) {
			question = catalog[n-1]
			break
		}
	}
	answer, err := prompt(reader, question.Label)
	if err != nil {
		return err
	}
	hashedAnswer, err := secret.Hash(strings.TrimSpace(answer))
	if err != nil {
		return err
	}
	if err := creds.Set(store.KeySecurityQuestion, question.ID); err != nil {
		return err
	}
	return creds.Set(store.KeySecurityAnswer, hashedAnswer)
}

// enrollPIN reads a new PIN without echo and returns its hashed record. The
// raw buffer is wiped before returning.
func enrollPIN() (string, error) {
	for {
		fmt.Printf("choose a %d-digit PIN: ", lock.PinLength)
		pin, err := readPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		if !isPIN(pin) {
			randx.Wipe(pin)
			fmt.Printf("PIN must be exactly %d digits\n", lock.PinLength)
			continue
		}
		hashed, err := secret.Hash(string(pin))
		randx.Wipe(pin)
		return hashed, err
	}
}

func isPIN(pin []byte) bool {
	if len(pin) != lock.PinLength {
		return false
	}
	for _, b := range pin {
		if b < '0' || b > '9' {
			return false
		}
	}
	return true
}

// inputLoop reads single keys in raw mode and feeds them to the controller.
// Digits enter the PIN, backspace deletes, "f" opens recovery, "q" quits.
func inputLoop(reader *bufio.Reader, ctrl *lock.Controller, unlocked <-chan struct{}) error {
	fd := int(os.Stdin.Fd())
	raw, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, raw)

	fmt.Print("enter PIN (f = forgot, q = quit)\r\n")

	buf := make([]byte, 1)
	for {
		render(ctrl.State())

		select {
		case <-unlocked:
			fmt.Print("\r\nunlocked\r\n")
			return nil
		default:
		}

		if _, err := os.Stdin.Read(buf); err != nil {
			return err
		}

		switch b := buf[0]; {
		case b >= '0' && b <= '9':
			ctrl.PressDigit(rune(b))
		case b == 0x7f || b == 0x08:
			ctrl.Backspace()
		case b == 'f':
			if err := recoveryFlow(fd, raw, reader, ctrl); err != nil {
				return err
			}
		case b == 'q', b == 0x03:
			fmt.Print("\r\n")
			return nil
		}

		// let async verification land before redrawing
		time.Sleep(150 * time.Millisecond)

		select {
		case <-unlocked:
			fmt.Print("\r\nunlocked\r\n")
			return nil
		default:
		}
	}
}

// recoveryFlow leaves raw mode for line input while the forgot-PIN dialog is
// active.
func recoveryFlow(fd int, raw *term.State, reader *bufio.Reader, ctrl *lock.Controller) error {
	ctrl.ForgotPIN()
	time.Sleep(150 * time.Millisecond)

	s := ctrl.State()
	if s.Phase != lock.PhaseForgotFlow {
		return nil
	}
	question, ok := lock.QuestionByID(s.QuestionID)
	if !ok {
		ctrl.Cancel()
		return nil
	}

	if err := term.Restore(fd, raw); err != nil {
		return err
	}
	defer term.MakeRaw(fd)

	for {
		answer, err := prompt(reader, "\n"+question.Label+" (empty to cancel)")
		if err != nil {
			return err
		}
		if answer == "" {
			ctrl.Cancel()
			return nil
		}
		ctrl.SubmitAnswer(answer)
		time.Sleep(150 * time.Millisecond)

		switch ctrl.State().Phase {
		case lock.PhaseResetReady:
			ctrl.ConfirmReset()
			return nil
		case lock.PhaseForgotFlow:
			fmt.Println("wrong answer")
		default:
			return nil
		}
	}
}

func render(s lock.State) {
	line := strings.Repeat("*", len(s.PinBuffer)) + strings.Repeat("_", lock.PinLength-len(s.PinBuffer))
	switch s.Phase {
	case lock.PhaseVerifyingPin:
		fmt.Printf("\r[%s] checking...      ", line)
	case lock.PhasePinError:
		fmt.Printf("\r[%s] wrong PIN        ", line)
	default:
		notice := ""
		if s.Notice != "" {
			notice = " (" + s.Notice + ")"
		}
		fmt.Printf("\r[%s]%s               ", line, notice)
	}
}

func prompt(reader *bufio.Reader, text string) (string, error) {
	fmt.Print(text + "\n> ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
