package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"fitlevel/internal/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // operation failed
	ExitCommandError = 2 // bad flags, unreadable config or store
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError creates an ExitError with the given code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that are not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

type response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// JSON reports whether results are JSON encoded.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success writes data. In text mode data is printed with %v.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return f.encode(data)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Timeline writes a list of committed levels, one date per row in text mode.
func (f *OutputFormatter) Timeline(entries []domain.TimelineEntry) error {
	if f.JSON() {
		if entries == nil {
			entries = []domain.TimelineEntry{}
		}
		return f.encode(entries)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(f.Writer, "no committed days")
		return err
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tLEVEL\tTREND")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Date, e.Level, bar(e.Level))
	}
	return tw.Flush()
}

func (f *OutputFormatter) encode(data any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(response{Status: "ok", Data: data})
}

func bar(l domain.Level) string {
	out := make([]byte, 0, int(domain.MaxLevel))
	for i := domain.Level(1); i <= domain.MaxLevel; i++ {
		if i <= l {
			out = append(out, '#')
		} else {
			out = append(out, '.')
		}
	}
	return string(out)
}
