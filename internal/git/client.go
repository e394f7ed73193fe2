// Package git makes the base and head revisions available locally and lists
// the files that differ between them.
package git

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Client runs the repository operations the action needs against the
// checkout in Dir. Object lookups go through go-git; fetch and diff shell out
// to git, which handles shallow fetch-by-SHA and rename detection the same
// way the runner's own checkout does.
type Client struct {
	Dir    string
	Remote string

	runner Runner
	logger *log.Logger

	repo    *gogit.Repository
	openErr error
	opened  bool
}

// NewClient returns a client for the checkout in dir that fetches from
// remote ("origin" when empty).
func NewClient(dir, remote string, runner Runner, logger *log.Logger) *Client {
	if strings.TrimSpace(remote) == "" {
		remote = "origin"
	}
	if runner == nil {
		runner = NewExecRunner("")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{Dir: dir, Remote: remote, runner: runner, logger: logger}
}

// HasCommit reports whether rev resolves to a commit in the local object
// store. It never touches the network.
func (c *Client) HasCommit(ctx context.Context, rev string) bool {
	if repo, err := c.open(); err == nil {
		hash, err := repo.ResolveRevision(plumbing.Revision(rev))
		if err != nil {
			c.logger.Debug("revision not found locally", "rev", rev, "err", err)
			return false
		}
		if _, err := repo.CommitObject(*hash); err != nil {
			c.logger.Debug("revision is not a local commit", "rev", rev, "err", err)
			return false
		}
		return true
	}

	_, err := c.runner.Run(ctx, c.Dir, "cat-file", "-e", rev+"^{commit}")
	return err == nil
}

// EnsureCommit fetches rev with depth one when it is not already present.
// It reports whether a fetch happened.
func (c *Client) EnsureCommit(ctx context.Context, rev string) (bool, error) {
	if c.HasCommit(ctx, rev) {
		return false, nil
	}

	if _, err := c.runner.Run(ctx, c.Dir, "fetch", c.Remote, rev, "--depth=1"); err != nil {
		return false, errors.Wrapf(err, "fetch %s", rev)
	}
	// Reopen on next lookup so the new pack is visible.
	c.opened = false
	return true, nil
}

// ChangedFiles returns the paths that differ between base and head in the
// order git reports them. Empty lines are dropped; nothing else is changed.
func (c *Client) ChangedFiles(ctx context.Context, base, head string) ([]string, error) {
	out, err := c.runner.Run(ctx, c.Dir, "diff", "--name-only", base, head)
	if err != nil {
		return nil, errors.Wrapf(err, "diff %s..%s", base, head)
	}
	return splitLines(out), nil
}

func (c *Client) open() (*gogit.Repository, error) {
	if c.opened {
		return c.repo, c.openErr
	}
	c.opened = true

	dir := c.Dir
	if dir == "" {
		dir = "."
	}
	c.repo, c.openErr = gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if c.openErr != nil {
		c.logger.Debug("go-git could not open repository, using git cat-file", "dir", dir, "err", c.openErr)
	}
	return c.repo, c.openErr
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
