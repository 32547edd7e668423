// Package shell runs external commands such as the compass compiler.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/creack/pty"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// tailLines is how much command output is attached to a failure.
const tailLines = 20

// Executor implements ports.Executor using os/exec and a pseudo terminal, so
// tools that only colour their output on a TTY (compass, bundler) keep doing
// so.
type Executor struct{}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs the command in its working directory and waits for it. The
// PTY merges the process's stdout and stderr; both arrive on stdout.
func (e *Executor) Execute(ctx context.Context, command ports.Command, stdout, _ io.Writer) error {
	if len(command.Args) == 0 {
		return nil
	}

	name := command.Args[0]
	env := resolveEnvironment(os.Environ(), command.Env)

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, command.Args[1:]...) //nolint:gosec // command comes from the task file
	cmd.Args[0] = name
	cmd.Dir = command.WorkingDir
	cmd.Env = env

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start command"), "command", name)
	}

	tail := &tailWriter{limit: tailLines}
	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading the master fails with EIO once the child exits; that is the
		// normal end of output.
		_, _ = io.Copy(io.MultiWriter(stdout, tail), ptmx)
	}()

	waitErr := cmd.Wait()
	<-ioDone
	_ = ptmx.Close()

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		err := zerr.With(zerr.Wrap(waitErr, "command failed"), "exit_code", exitCode)
		err = zerr.With(err, "command", name)
		if out := tail.String(); out != "" {
			err = zerr.With(err, "output", out)
		}
		return err
	}
	return nil
}

// tailWriter keeps the last complete lines written to it.
type tailWriter struct {
	mu      sync.Mutex
	limit   int
	lines   []string
	partial []byte
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.partial = append(w.partial, p...)
	for {
		i := bytes.IndexByte(w.partial, '\n')
		if i < 0 {
			break
		}
		w.push(string(w.partial[:i]))
		w.partial = w.partial[i+1:]
	}
	return len(p), nil
}

func (w *tailWriter) push(line string) {
	// PTYs translate \n into \r\n.
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) == "" {
		return
	}
	w.lines = append(w.lines, line)
	if len(w.lines) > w.limit {
		w.lines = w.lines[len(w.lines)-w.limit:]
	}
}

// String returns the kept lines, including an unterminated last line.
func (w *tailWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	lines := w.lines
	if rest := strings.TrimSpace(string(w.partial)); rest != "" {
		lines = append(lines[:len(lines):len(lines)], rest)
	}
	return strings.Join(lines, "\n")
}

// allowListedEnvVars are the variables a command inherits from the caller.
// Ruby tooling needs its gem locations on top of the basics.
var allowListedEnvVars = map[string]struct{}{
	"HOME":           {},
	"TERM":           {},
	"USER":           {},
	"PATH":           {},
	"LANG":           {},
	"GEM_HOME":       {},
	"GEM_PATH":       {},
	"BUNDLE_GEMFILE": {},
}

// resolveEnvironment keeps the allow-listed system variables and applies the
// command's own variables on top.
func resolveEnvironment(sysEnv []string, commandEnv map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}
	for k, v := range commandEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the PATH of env rather than the
// PATH of the running process.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if p, ok := strings.CutPrefix(e, "PATH="); ok {
			path = p
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: an empty element means ".".
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
