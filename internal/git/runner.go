package git

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrGitCommand marks every failure of a git subprocess.
var ErrGitCommand = errors.New("git command failed")

var (
	safeArg        = regexp.MustCompile(`^[a-z][a-z-]*$`)
	credentialURL  = regexp.MustCompile(`https?://[^\s@]+@`)
	credentialPair = regexp.MustCompile(`(?i)(token|secret|password|passwd|bearer)=[^\s]+`)
)

// Runner executes git subcommands in a directory and returns stdout.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner runs the git binary.
type ExecRunner struct {
	Bin string
}

// NewExecRunner returns a runner for bin, or "git" from PATH when bin is empty.
func NewExecRunner(bin string) *ExecRunner {
	if strings.TrimSpace(bin) == "" {
		bin = "git"
	}
	return &ExecRunner{Bin: bin}
}

// Run executes bin with args in dir. A non-zero exit is returned as
// ErrGitCommand carrying the redacted arguments and stderr.
func (e *ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, e.Bin, args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.Wrapf(ErrGitCommand, "git %s: %s", describeArgs(args), redact(msg))
	}
	return stdout.String(), nil
}

// describeArgs keeps the leading subcommand words and drops anything that
// could be a URL or path.
func describeArgs(args []string) string {
	if len(args) == 0 {
		return "<no-args>"
	}
	safe := make([]string, 0, 2)
	for _, a := range args {
		if !safeArg.MatchString(a) {
			break
		}
		safe = append(safe, a)
		if len(safe) == 2 {
			break
		}
	}
	if len(safe) == 0 {
		return "<redacted>"
	}
	return strings.Join(safe, " ")
}

func redact(s string) string {
	s = credentialURL.ReplaceAllString(s, "https://<redacted>@")
	return credentialPair.ReplaceAllString(s, "$1=<redacted>")
}
