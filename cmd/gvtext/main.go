// gvtext - GVariant text codec CLI tool
//
// Usage:
//
//	gvtext sig SIGNATURE [--tree]             Validate and print a signature
//	gvtext decode -t SIG [TEXT] [--json]      Decode value text (TEXT or stdin)
//	gvtext encode -t SIG [FILE]               Encode JSON as value text
//	gvtext check -s SCHEMA.hcl [DUMP]         Resolve a dconf dump against schemas
//	gvtext version                            Print version info
//
// If no TEXT, FILE or DUMP is given, reads from stdin.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...interface{}) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

func failure(format string, args ...interface{}) *ExitError {
	return &ExitError{Code: 1, Message: fmt.Sprintf(format, args...)}
}

// run executes the CLI and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "gvtext: %v\n", err)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	// Anything cobra reports itself (unknown command, bad arguments) is a usage error.
	return 2
}

type globalFlags struct {
	logLevel  string
	logFormat string
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "gvtext",
		Short:         "Decode, encode and check GVariant value text.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(g.logLevel, g.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			g.logger = logger
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	root.AddCommand(
		newSigCmd(),
		newDecodeCmd(g),
		newEncodeCmd(g),
		newCheckCmd(g),
		newVersionCmd(),
	)
	return root
}

// newLogger builds a logger writing to w from level and format names.
func newLogger(levelStr, formatStr string, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(formatStr) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, usageError("invalid log-format: must be 'text' or 'json'")
}

// openInput returns the named file, or stdin when name is empty or "-".
func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, failure("open file: %v", err)
	}
	return f, nil
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	r, err := openInput(cmd, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, failure("read input: %v", err)
	}
	return data, nil
}

func argsBetween(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(lo, hi)(cmd, args); err != nil {
			return usageError("%s: %v", cmd.Name(), err)
		}
		return nil
	}
}
