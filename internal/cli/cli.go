package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/five82/checklist/internal/app"
	"github.com/five82/checklist/internal/mutation"
	"github.com/five82/checklist/internal/session"
)

// Exit codes returned by Execute.
const (
	ExitOK      = 0
	ExitUser    = 1
	ExitConfig  = 2
	ExitBackend = 3
)

// ErrUsage marks invalid arguments or an operation that needs a terminal.
var ErrUsage = errors.New("usage error")

// Env holds the process streams and the hooks commands depend on.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	// Interactive reports whether stdin and stdout are terminals.
	Interactive func() bool
	// Confirm asks a yes/no question.
	Confirm func(title string) (bool, error)
	// NewApp builds the application for a command.
	NewApp func(app.Options) (*app.App, error)
}

// DefaultEnv wires Env to the real terminal.
func DefaultEnv() Env {
	return Env{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: isInteractive,
		Confirm:     confirm,
		NewApp:      app.New,
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, env Env, args []string) int {
	root := NewRootCommand(env)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(env.Stderr, "checklist: %v\n", err)
	}
	return ExitCode(err)
}

// ExitCode maps an error to the documented exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, app.ErrConfig):
		return ExitConfig
	case errors.Is(err, session.ErrFetch), errors.Is(err, mutation.ErrMutation):
		return ExitBackend
	default:
		return ExitUser
	}
}

// runner carries the root flags into the subcommands.
type runner struct {
	env  Env
	opts app.Options
}

// NewRootCommand builds the checklist command tree.
func NewRootCommand(env Env) *cobra.Command {
	r := &runner{env: env}

	root := &cobra.Command{
		Use:   "checklist",
		Short: "Shared todo list in the terminal",
		Long: `checklist keeps a local copy of a shared remote todo list in sync with
your changes.

Run without arguments on a terminal to open the interactive list. When
output is not a terminal the list is printed instead.

Examples:
  checklist                    # Interactive list
  checklist ls --group         # Pending then done
  checklist add buy milk       # Add an item
  checklist done 2             # Toggle the second item
  checklist rm 3 --yes         # Delete without asking`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !r.env.Interactive() {
				return r.runList(cmd, false)
			}
			a, err := r.open()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.RunTUI(cmd.Context())
		},
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&r.opts.ConfigPath, "config", "", "config file (default ~/.config/checklist/config.toml)")
	flags.StringVar(&r.opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/checklist/prefs.toml)")
	flags.StringVar(&r.opts.Endpoint, "endpoint", "", "GraphQL endpoint, overrides the config file")
	flags.StringVar(&r.opts.LogLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		r.listCommand(),
		r.addCommand(),
		r.doneCommand(),
		r.removeCommand(),
		r.logCommand(),
	)
	return root
}

func (r *runner) open() (*app.App, error) {
	return r.env.NewApp(r.opts)
}

func isInteractive() bool {
	return isTTY(os.Stdin.Fd()) && isTTY(os.Stdout.Fd())
}

func isTTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Keep").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
