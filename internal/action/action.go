// Package action runs the changed-groups pipeline: resolve revisions, make
// them available, diff, classify and report.
package action

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"github.com/coreeng/action-changed-groups/internal/config"
	"github.com/coreeng/action-changed-groups/internal/detector"
	"github.com/coreeng/action-changed-groups/internal/event"
	"github.com/coreeng/action-changed-groups/internal/report"
)

// GitClient is the subset of repository operations the pipeline needs.
// EnsureCommit reports whether it had to fetch.
type GitClient interface {
	EnsureCommit(ctx context.Context, rev string) (bool, error)
	ChangedFiles(ctx context.Context, base, head string) ([]string, error)
}

// Deps are the collaborators Run talks to.
type Deps struct {
	Git     GitClient
	Outputs report.OutputWriter
	Stdout  io.Writer
	Logger  *log.Logger
}

// Run executes one pass of the pipeline. It stops at the first error; outputs
// written before the failure stay written.
func Run(ctx context.Context, cfg *config.Config, deps Deps) (detector.Result, error) {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	rep := report.New(deps.Stdout, deps.Outputs, logger)

	evt, err := event.Load(cfg.EventName, cfg.EventPath)
	if err != nil {
		return detector.Result{}, err
	}
	logger.Debug("loaded event", "name", evt.Name, "action", evt.Action)

	revs, err := evt.Resolve(event.Defaults{Base: cfg.DefaultBase, Head: cfg.DefaultHead, Remote: cfg.Remote})
	if err != nil {
		return detector.Result{}, err
	}
	logger.Info("resolved revisions", "event", evt.Name, "base", revs.Base, "head", revs.Head)

	var files []string
	err = rep.Section("Git", func() error {
		for _, rev := range []struct{ role, sha string }{{"base", revs.Base}, {"head", revs.Head}} {
			fetched, err := deps.Git.EnsureCommit(ctx, rev.sha)
			if err != nil {
				rep.Printf("Fetching %s=%s failed", rev.role, rev.sha)
				return err
			}
			if fetched {
				rep.Printf("Fetched %s=%s", rev.role, rev.sha)
			} else {
				rep.Printf("Skipping fetch %s=%s (already exists)", rev.role, rev.sha)
			}
		}

		rep.Printf("Computing diff")
		var err error
		files, err = deps.Git.ChangedFiles(ctx, revs.Base, revs.Head)
		return err
	})
	if err != nil {
		return detector.Result{}, err
	}

	for _, g := range cfg.Groups {
		logger.Debug("filter group", "group", g.String())
		if invalid := detector.ValidatePatterns(g.Patterns); len(invalid) > 0 {
			logger.Warn("patterns will never match", "group", g.Name, "patterns", invalid)
		}
	}

	result := detector.Classify(files, cfg.Groups, cfg.Mode)

	workflows, err := detector.ChangedWorkflows(cfg.Workspace, result.CI.Matched)
	if err != nil {
		// Workflow names only decorate the CI section.
		logger.Warn("could not inspect changed workflows", "err", err)
		workflows = nil
	}

	if err := rep.Diff(result); err != nil {
		return result, err
	}
	if err := rep.CI(result, workflows); err != nil {
		return result, err
	}
	if err := rep.Groups(result); err != nil {
		return result, err
	}

	logger.Info("classified changes", "files", len(result.All), "ci", result.CI.Count, "groups", len(result.Groups), "mode", result.Mode)
	return result, nil
}

// Fail reports err as the run's single failure.
func Fail(stdout io.Writer, err error) {
	report.New(stdout, nil, nil).Fail(err)
}

// IsConfigError reports whether err stems from invalid inputs rather than
// the repository or the runner.
func IsConfigError(err error) bool {
	return errors.Is(err, config.ErrMissingFilters) ||
		errors.Is(err, config.ErrInvalidFilters) ||
		errors.Is(err, config.ErrInvalidMode)
}
