package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a seam for term.ReadPassword so tests can avoid
// touching a real terminal.
var readPassword = term.ReadPassword

// Terminal is a line-oriented Prompter. An EOF or a lone "q" answer
// cancels the current prompt.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal() *Terminal {
	return &Terminal{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// NewTerminalWithIO exists for tests.
func NewTerminalWithIO(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) readLine(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			line = strings.TrimSpace(line)
		} else {
			return "", ErrCancelled
		}
	}
	line = strings.TrimSpace(line)
	if line == "q" {
		return "", ErrCancelled
	}
	return line, nil
}

func (t *Terminal) Credentials(username string) (string, string, error) {
	var err error
	if username == "" {
		username, err = t.readLine("Username: ")
		if err != nil {
			return "", "", err
		}
	} else {
		fmt.Fprintf(t.out, "Username: %s\n", username)
	}

	fmt.Fprint(t.out, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		// No terminal attached (tests, pipes): fall back to a plain line.
		line, lineErr := t.readLine("")
		if lineErr != nil {
			return "", "", lineErr
		}
		return username, line, nil
	}
	return username, string(pw), nil
}

// ReadLine reads one trimmed line, for callers that drive their own
// command loop on top of the prompter's input stream.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	return t.readLine(prompt)
}

// Passphrase reads a secret without echoing it. Not part of Prompter;
// only the application's own store setup needs it.
func (t *Terminal) Passphrase(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		return t.readLine("")
	}
	return string(pw), nil
}

func (t *Terminal) Code(kind CodeKind) (string, error) {
	return t.readLine(fmt.Sprintf("Enter %s (q to cancel): ", kind))
}

func (t *Terminal) Captcha(image []byte) (string, error) {
	f, err := os.CreateTemp("", "captcha-*.png")
	if err == nil {
		if _, err = f.Write(image); err == nil {
			fmt.Fprintf(t.out, "Captcha image saved to %s\n", f.Name())
		}
		f.Close()
	}
	if err != nil {
		t.Notify("could not save captcha image: "+err.Error(), Warning)
	}
	return t.readLine("Enter captcha text (q to cancel): ")
}

func (t *Terminal) Confirm(message string) (bool, error) {
	answer, err := t.readLine(message + " [yes/no]: ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "yes") || strings.EqualFold(answer, "y"), nil
}

func (t *Terminal) Notify(message string, severity Severity) {
	switch severity {
	case Warning:
		fmt.Fprintf(t.out, "warning: %s\n", message)
	case Error:
		fmt.Fprintf(t.out, "error: %s\n", message)
	default:
		fmt.Fprintln(t.out, message)
	}
}
