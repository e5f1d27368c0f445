package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-md2book/internal/process"
)

// waitDelay bounds how long Wait blocks on pipes after the child is killed.
const waitDelay = 5 * time.Second

// Command is a subprocess invocation.
type Command struct {
	Name string
	Args []string
	Dir  string   // working directory, empty = current
	Env  []string // full environment, nil = inherit
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. The child runs in its
// own process group, killed as a whole when ctx is done.
type ExecRunner struct{}

// Compile-time interface check.
var _ CommandRunner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, c Command) (string, string, error) {
	name := c.Name
	if c.Env != nil && !strings.ContainsAny(name, `/\`) {
		// exec resolves names against our PATH, not the child's.
		if resolved, err := LookPathIn(name, envValue(c.Env, "PATH")); err == nil {
			name = resolved
		}
	}

	cmd := exec.CommandContext(ctx, name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.WaitDelay = waitDelay
	process.SetProcessGroup(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return nil
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		err = fmt.Errorf("%w: %v", ctxErr, err)
	}
	return stdout.String(), stderr.String(), err
}

// LookPathIn searches the directories of pathList for an executable name.
func LookPathIn(name, pathList string) (string, error) {
	candidates := []string{name}
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		candidates = append(candidates, name+".exe")
	}
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		for _, c := range candidates {
			p := filepath.Join(dir, c)
			info, err := os.Stat(p)
			if err != nil || info.IsDir() {
				continue
			}
			if runtime.GOOS == "windows" || info.Mode()&0o111 != 0 {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", exec.ErrNotFound, name)
}

// ExtendPath returns the environment env with dirs appended to PATH.
func ExtendPath(env []string, dirs []string) []string {
	if len(dirs) == 0 {
		return env
	}
	parts := []string{}
	if cur := envValue(env, "PATH"); cur != "" {
		parts = append(parts, cur)
	}
	parts = append(parts, dirs...)
	return setEnv(env, "PATH", strings.Join(parts, string(os.PathListSeparator)))
}

// envValue returns the last value of key in env.
func envValue(env []string, key string) string {
	prefix := key + "="
	for i := len(env) - 1; i >= 0; i-- {
		if strings.HasPrefix(env[i], prefix) {
			return env[i][len(prefix):]
		}
	}
	return ""
}

// setEnv returns a copy of env with key set to value.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if !strings.HasPrefix(kv, prefix) {
			out = append(out, kv)
		}
	}
	return append(out, prefix+value)
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// commandFailure formats a failed run with the tool's stderr verbatim.
func commandFailure(sentinel error, c Command, stderr string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", sentinel, c.Name, err)
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		return fmt.Errorf("%w: %s: %v\n%s", sentinel, c.Name, err, msg)
	}
	return fmt.Errorf("%w: %s: %v", sentinel, c.Name, err)
}
