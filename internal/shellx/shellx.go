// Package shellx helps to write shell-like Go code.
package shellx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dnsarena/probe-cli/internal/model"
	"github.com/google/shlex"
	"golang.org/x/sys/execabs"
)

// Dependencies is the library on which this package depends.
type Dependencies interface {
	// CmdOutput is equivalent to calling c.Output.
	CmdOutput(c *execabs.Cmd) ([]byte, error)

	// LookPath is equivalent to calling execabs.LookPath.
	LookPath(file string) (string, error)
}

// Library contains the default dependencies.
var Library Dependencies = &StdlibDependencies{}

// StdlibDependencies contains the stdlib implementation of the [Dependencies].
type StdlibDependencies struct{}

// CmdOutput implements [Dependencies].
func (*StdlibDependencies) CmdOutput(c *execabs.Cmd) ([]byte, error) {
	return c.Output()
}

// LookPath implements [Dependencies].
func (*StdlibDependencies) LookPath(file string) (string, error) {
	return execabs.LookPath(file)
}

// Envp is the environment in which we execute commands.
type Envp struct {
	// V contains the OPTIONAL environment variables to add to the current
	// environment when we're executing commands.
	V []string
}

// Append appends an environment variable to the environment.
func (e *Envp) Append(key, value string) {
	e.V = append(e.V, fmt.Sprintf("%s=%s", key, value))
}

// Argv contains the complete argv.
type Argv struct {
	// P is the MANDATORY program to execute.
	P string

	// V contains the OPTIONAL arguments.
	V []string
}

// NewArgv creates a new [Argv] from the given command and arguments.
func NewArgv(command string, args ...string) (*Argv, error) {
	fullpath, err := Library.LookPath(command) // allows mocking
	if err != nil {
		return nil, err
	}
	argv := &Argv{
		P: fullpath,
		V: args,
	}
	return argv, nil
}

// ParseCommandLine creates an instance of [Argv] from the given command line.
func ParseCommandLine(cmdline string) (*Argv, error) {
	args, err := shlex.Split(cmdline)
	if err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return nil, ErrNoCommandToExecute
	}
	return NewArgv(args[0], args[1:]...)
}

// Append appends arguments to the command line.
func (a *Argv) Append(args ...string) {
	a.V = append(a.V, args...)
}

const (
	// FlagShowStdoutStderr enables connecting the child's stderr
	// to the current program's stderr.
	FlagShowStdoutStderr = 1 << iota
)

// Config contains config for executing programs.
type Config struct {
	// Logger is the OPTIONAL logger to use.
	Logger model.Logger

	// Flags contains OPTIONAL binary flags to configure the program.
	Flags int64
}

// cmd creates a new [execabs.Cmd] bound to the given context: when the
// context expires before the command completes, the child is killed.
func cmd(ctx context.Context, config *Config, argv *Argv, envp *Envp) *execabs.Cmd {
	// Implementation note: since Go 1.19 we don't need to use the execabs
	// package anymore. See <https://tip.golang.org/doc/go1.19>.
	cmd := execabs.CommandContext(ctx, argv.P, argv.V...)
	cmd.Env = os.Environ()
	for _, entry := range envp.V {
		if config.Logger != nil {
			config.Logger.Debugf("+ export %s", entry)
		}
		cmd.Env = append(cmd.Env, entry)
	}
	if config.Logger != nil {
		cmdline := quotedCommandLine(argv.P, argv.V...)
		config.Logger.Debugf("+ %s", cmdline)
	}
	return cmd
}

// OutputEx captures the standard output of the command described by
// argv. When the context expires before the command completes, the
// child process is killed and the returned error reflects the killing.
func OutputEx(ctx context.Context, config *Config, argv *Argv, envp *Envp) ([]byte, error) {
	cmd := cmd(ctx, config, argv, envp)
	if (config.Flags & FlagShowStdoutStderr) != 0 {
		// note: cmd.Output wants the stdout to be nil
		cmd.Stderr = os.Stderr
	}
	return Library.CmdOutput(cmd) // allows mocking
}

// output is the common implementation of [Output] and [OutputQuiet].
func output(ctx context.Context, logger model.Logger, flags int64, command string, args ...string) ([]byte, error) {
	argv, err := NewArgv(command, args...)
	if err != nil {
		return nil, err
	}
	envp := &Envp{}
	config := &Config{
		Logger: logger,
		Flags:  flags,
	}
	return OutputEx(ctx, config, argv, envp)
}

// OutputQuiet is like [Output] except that it does not log the command
// to be executed and does not connect the child's stderr.
func OutputQuiet(ctx context.Context, command string, args ...string) ([]byte, error) {
	return output(ctx, nil, 0, command, args...)
}

// Output captures the standard output of the given command. It logs the
// command to be executed and the environment variables specific to this
// command, and it connects the child's stderr to ours.
func Output(ctx context.Context, logger model.Logger, command string, args ...string) ([]byte, error) {
	return output(ctx, logger, FlagShowStdoutStderr, command, args...)
}

// ErrNoCommandToExecute means that the command line is empty.
var ErrNoCommandToExecute = errors.New("shellx: no command to execute")

// quotedCommandLine returns a quoted command line.
func quotedCommandLine(command string, args ...string) string {
	v := []string{}
	v = append(v, maybeQuoteArg(command))
	for _, a := range args {
		v = append(v, maybeQuoteArg(a))
	}
	return strings.Join(v, " ")
}

// maybeQuoteArg quotes a command line argument if needed.
func maybeQuoteArg(a string) string {
	if strings.Contains(a, "\"") {
		a = strings.ReplaceAll(a, "\"", "\\\"")
	}
	if strings.Contains(a, " ") {
		a = "\"" + a + "\""
	}
	return a
}
