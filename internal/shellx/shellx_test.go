package shellx

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dnsarena/probe-cli/internal/mocks"
	"github.com/dnsarena/probe-cli/internal/model"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/execabs"
)

// fakeLibrary is a fake [Dependencies] implementation.
type fakeLibrary struct {
	cmdOutput func(c *execabs.Cmd) ([]byte, error)
	lookPath  func(file string) (string, error)
}

func (lib *fakeLibrary) CmdOutput(c *execabs.Cmd) ([]byte, error) {
	return lib.cmdOutput(c)
}

func (lib *fakeLibrary) LookPath(file string) (string, error) {
	return lib.lookPath(file)
}

// withFakeLibrary executes fn with a fake [Library] installed.
func withFakeLibrary(lib Dependencies, fn func()) {
	prev := Library
	defer func() {
		Library = prev
	}()
	Library = lib
	fn()
}

// resolveToUsrBin is a LookPath that always succeeds.
func resolveToUsrBin(file string) (string, error) {
	return "/usr/bin/" + file, nil
}

// testLogger returns a logger and a counter incremented
// each time the logger logs at debugf level.
func testLogger() (model.Logger, *atomic.Int64) {
	n := &atomic.Int64{}
	logger := &mocks.Logger{
		MockDebugf: func(format string, v ...interface{}) {
			n.Add(1)
		},
	}
	return logger, n
}

func TestNewArgv(t *testing.T) {
	t.Run("on success", func(t *testing.T) {
		withFakeLibrary(&fakeLibrary{lookPath: resolveToUsrBin}, func() {
			argv, err := NewArgv("ping", "-c", "3", "8.8.8.8")
			if err != nil {
				t.Fatal(err)
			}
			expect := &Argv{
				P: "/usr/bin/ping",
				V: []string{"-c", "3", "8.8.8.8"},
			}
			if diff := cmp.Diff(expect, argv); diff != "" {
				t.Fatal(diff)
			}
		})
	})

	t.Run("when we cannot find the executable", func(t *testing.T) {
		expected := errors.New("executable file not found in $PATH")
		withFakeLibrary(&fakeLibrary{
			lookPath: func(file string) (string, error) {
				return "", expected
			},
		}, func() {
			argv, err := NewArgv("nonexistent")
			if !errors.Is(err, expected) {
				t.Fatal("not the error we expected", err)
			}
			if argv != nil {
				t.Fatal("expected nil argv")
			}
		})
	})
}

func TestVerifyWeCanAppendToArgv(t *testing.T) {
	withFakeLibrary(&fakeLibrary{lookPath: resolveToUsrBin}, func() {
		argv1, err := NewArgv("ping", "-c", "3", "8.8.8.8")
		if err != nil {
			t.Fatal(err)
		}
		argv2, err := NewArgv("ping")
		if err != nil {
			t.Fatal(err)
		}
		argv2.Append("-c", "3")
		argv2.Append("8.8.8.8")
		if diff := cmp.Diff(argv1, argv2); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestParseCommandLine(t *testing.T) {
	t.Run("on success", func(t *testing.T) {
		withFakeLibrary(&fakeLibrary{lookPath: resolveToUsrBin}, func() {
			argv, err := ParseCommandLine("ping -4 -c 3")
			if err != nil {
				t.Fatal(err)
			}
			expect := &Argv{
				P: "/usr/bin/ping",
				V: []string{"-4", "-c", "3"},
			}
			if diff := cmp.Diff(expect, argv); diff != "" {
				t.Fatal(diff)
			}
		})
	})

	t.Run("with empty command line", func(t *testing.T) {
		argv, err := ParseCommandLine("")
		if !errors.Is(err, ErrNoCommandToExecute) {
			t.Fatal("not the error we expected", err)
		}
		if argv != nil {
			t.Fatal("expected nil argv")
		}
	})

	t.Run("with unparseable command line", func(t *testing.T) {
		argv, err := ParseCommandLine("ping \"unterminated")
		if err == nil || err.Error() != "EOF found when expecting closing quote" {
			t.Fatal("not the error we expected", err)
		}
		if argv != nil {
			t.Fatal("expected nil argv")
		}
	})
}

func TestOutput(t *testing.T) {
	t.Run("on success", func(t *testing.T) {
		logger, count := testLogger()
		withFakeLibrary(&fakeLibrary{
			lookPath: resolveToUsrBin,
			cmdOutput: func(c *execabs.Cmd) ([]byte, error) {
				return []byte("PING 8.8.8.8\n"), nil
			},
		}, func() {
			out, err := Output(context.Background(), logger, "ping", "-c", "3", "8.8.8.8")
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != "PING 8.8.8.8\n" {
				t.Fatal("unexpected output", string(out))
			}
		})
		if count.Load() != 1 {
			t.Fatal("expected to log the command line once")
		}
	})

	t.Run("when the child fails", func(t *testing.T) {
		expected := errors.New("exit status 2")
		withFakeLibrary(&fakeLibrary{
			lookPath: resolveToUsrBin,
			cmdOutput: func(c *execabs.Cmd) ([]byte, error) {
				return nil, expected
			},
		}, func() {
			out, err := OutputQuiet(context.Background(), "ping", "-c", "3", "8.8.8.8")
			if !errors.Is(err, expected) {
				t.Fatal("not the error we expected", err)
			}
			if out != nil {
				t.Fatal("expected nil output")
			}
		})
	})
}

func TestOutputEx(t *testing.T) {
	t.Run("we build the correct command", func(t *testing.T) {
		var got []string
		withFakeLibrary(&fakeLibrary{
			lookPath: resolveToUsrBin,
			cmdOutput: func(c *execabs.Cmd) ([]byte, error) {
				got = append([]string{c.Path}, c.Args[1:]...)
				return nil, nil
			},
		}, func() {
			argv, err := NewArgv("ping", "-n", "10", "-w", "1000", "8.8.8.8")
			if err != nil {
				t.Fatal(err)
			}
			config := &Config{Logger: model.DiscardLogger}
			if _, err := OutputEx(context.Background(), config, argv, &Envp{}); err != nil {
				t.Fatal(err)
			}
		})
		expect := []string{"/usr/bin/ping", "-n", "10", "-w", "1000", "8.8.8.8"}
		if diff := cmp.Diff(expect, got); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("we pass custom environment variables", func(t *testing.T) {
		var environ []string
		withFakeLibrary(&fakeLibrary{
			lookPath: resolveToUsrBin,
			cmdOutput: func(c *execabs.Cmd) ([]byte, error) {
				environ = c.Env
				return nil, nil
			},
		}, func() {
			argv, err := NewArgv("ping")
			if err != nil {
				t.Fatal(err)
			}
			envp := &Envp{}
			envp.Append("DNSARENA_TEST", "1")
			config := &Config{Logger: model.DiscardLogger}
			if _, err := OutputEx(context.Background(), config, argv, envp); err != nil {
				t.Fatal(err)
			}
		})
		if len(environ) != len(os.Environ())+1 {
			t.Fatal("unexpected environment size")
		}
		if environ[len(environ)-1] != "DNSARENA_TEST=1" {
			t.Fatal("missing our environment variable")
		}
	})
}

func TestQuotedCommandLine(t *testing.T) {
	t.Run("with simple arguments", func(t *testing.T) {
		cmdline := quotedCommandLine("ping", "-c", "10", "8.8.8.8")
		if cmdline != "ping -c 10 8.8.8.8" {
			t.Fatal("unexpected command line", cmdline)
		}
	})

	t.Run("with an argument containing spaces", func(t *testing.T) {
		cmdline := quotedCommandLine("/opt/my tools/ping", "8.8.8.8")
		if cmdline != "\"/opt/my tools/ping\" 8.8.8.8" {
			t.Fatal("unexpected command line", cmdline)
		}
	})

	t.Run("with an argument containing quotes", func(t *testing.T) {
		cmdline := quotedCommandLine("echo", "say \"hi\"")
		if !strings.Contains(cmdline, "\\\"hi\\\"") {
			t.Fatal("unexpected command line", cmdline)
		}
	})
}
