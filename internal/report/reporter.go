// Package report renders classification results as workflow-command log
// groups, step outputs and an optional job summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"github.com/coreeng/action-changed-groups/internal/config"
	"github.com/coreeng/action-changed-groups/internal/detector"
)

// Reporter writes log blocks to Out and publishes signals through Outputs.
type Reporter struct {
	Out     io.Writer
	Outputs OutputWriter
	Logger  *log.Logger
}

// New returns a Reporter. A nil logger means the package default.
func New(out io.Writer, outputs OutputWriter, logger *log.Logger) *Reporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Reporter{Out: out, Outputs: outputs, Logger: logger}
}

// Section wraps fn in a collapsible ::group:: block. The block is closed even
// when fn fails.
func (r *Reporter) Section(title string, fn func() error) error {
	r.Printf("::group::%s", title)
	defer r.Printf("::endgroup::")
	return fn()
}

// Printf writes one log line.
func (r *Reporter) Printf(format string, args ...any) {
	fmt.Fprintf(r.Out, format+"\n", args...)
}

// Fail emits the single failure annotation for the run.
func (r *Reporter) Fail(err error) {
	msg := strings.ReplaceAll(err.Error(), "%", "%25")
	msg = strings.ReplaceAll(msg, "\r", "%0D")
	msg = strings.ReplaceAll(msg, "\n", "%0A")
	r.Printf("::error::%s", msg)
}

// Diff reports the full change set: the all and changed_files outputs, the
// file listing and the summary header.
func (r *Reporter) Diff(result detector.Result) error {
	return r.Section("All changed files", func() error {
		count := len(result.All)
		if err := r.output(config.OutputAll, strconv.Itoa(count)); err != nil {
			return err
		}

		blob, err := json.Marshal(nonNil(result.All))
		if err != nil {
			return errors.Wrap(err, "encode changed files")
		}
		if err := r.output(config.OutputChangedFiles, string(blob)); err != nil {
			return err
		}

		r.Printf("%s = %d", config.OutputAll, count)
		if count > 0 {
			r.Printf("%d file(s) changed", count)
			r.list(result.All)
		} else {
			r.Printf("No changed files")
		}

		return r.summary(fmt.Sprintf("## Changed Files Summary\n\n**Total changed files:** %d\n\n", count))
	})
}

// CI reports the CI-infrastructure match and the workflows it touched.
func (r *Reporter) CI(result detector.Result, workflows []detector.WorkflowChange) error {
	return r.Section("CI-related changes", func() error {
		ci := result.CI
		if err := r.output(config.OutputCI, signal(result.Mode, ci)); err != nil {
			return err
		}

		r.Printf("%s.%s = %s", config.OutputCI, signalName(result.Mode), signal(result.Mode, ci))
		if ci.Count > 0 {
			r.Printf("%d file(s) matched", ci.Count)
			r.list(ci.Matched)
		} else {
			r.Printf("No matched files")
		}

		for _, wf := range workflows {
			r.Printf("Workflow %s", describeWorkflow(wf))
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**CI-related files changed:** %d\n\n", ci.Count)
		if len(workflows) > 0 {
			b.WriteString("**Workflows changed:**\n")
			for _, wf := range workflows {
				fmt.Fprintf(&b, "- %s\n", describeWorkflow(wf))
			}
			b.WriteString("\n")
		}
		return r.summary(b.String())
	})
}

// Groups reports every configured group in configuration order.
func (r *Reporter) Groups(result detector.Result) error {
	for _, g := range result.Groups {
		if err := r.group(result.Mode, g); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) group(mode config.Mode, g detector.GroupResult) error {
	return r.Section("Filter group: "+g.Name, func() error {
		if err := r.output(g.Name, signal(mode, g)); err != nil {
			return err
		}

		if g.ForcedByCI {
			r.Printf("should_run = true triggered by CI changes")
		} else {
			r.Printf("%s = %s", signalName(mode), signal(mode, g))
		}
		if g.Count > 0 {
			r.Printf("%d file(s) matched", g.Count)
			r.list(g.Matched)
		} else {
			r.Printf("No matched files")
		}

		var b strings.Builder
		fmt.Fprintf(&b, "### Group %s\n", g.Name)
		fmt.Fprintf(&b, "- Matched files: %d\n", g.Count)
		fmt.Fprintf(&b, "- should_run: %t\n", g.ShouldRun)
		for _, f := range g.Matched {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
		b.WriteString("\n")
		return r.summary(b.String())
	})
}

func (r *Reporter) output(key, value string) error {
	r.Logger.Debug("set output", "name", key, "value", value)
	if err := r.Outputs.WriteOutput(key, value); err != nil {
		return errors.Wrapf(err, "set output %s", key)
	}
	return nil
}

func (r *Reporter) summary(content string) error {
	if err := r.Outputs.WriteSummary(content); err != nil {
		return errors.Wrap(err, "append step summary")
	}
	return nil
}

func (r *Reporter) list(files []string) {
	for _, f := range files {
		r.Printf("%s", f)
	}
}

// signal renders a group's output value for the configured mode.
func signal(mode config.Mode, g detector.GroupResult) string {
	if mode == config.ModeCount {
		return strconv.Itoa(g.Count)
	}
	return strconv.FormatBool(g.ShouldRun)
}

// signalName labels the signal in log blocks.
func signalName(mode config.Mode) string {
	if mode == config.ModeCount {
		return "count"
	}
	return "should_run"
}

func describeWorkflow(wf detector.WorkflowChange) string {
	switch {
	case wf.Deleted:
		return fmt.Sprintf("%s (%s, deleted)", wf.Name, wf.Path)
	case len(wf.Events) > 0:
		return fmt.Sprintf("%s (%s) on %s", wf.Name, wf.Path, strings.Join(wf.Events, ", "))
	default:
		return fmt.Sprintf("%s (%s)", wf.Name, wf.Path)
	}
}

func nonNil(files []string) []string {
	if files == nil {
		return []string{}
	}
	return files
}
