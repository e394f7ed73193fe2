package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coreeng/action-changed-groups/internal/action"
	"github.com/coreeng/action-changed-groups/internal/config"
	"github.com/coreeng/action-changed-groups/internal/git"
	"github.com/coreeng/action-changed-groups/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "changed-groups"})
	cmd := newRootCmd(viper.New(), logger)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if action.IsConfigError(err) {
			logger.Error("invalid configuration", "err", err)
		} else {
			logger.Error("run failed", "err", err)
		}
		action.Fail(os.Stdout, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper, logger *log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "changed-groups",
		Short:         "Classify the files changed by a pull request or push into named groups",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.BindEnv(v); err != nil {
				return err
			}
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
				logger.SetLevel(level)
			}

			_, err = action.Run(cmd.Context(), cfg, action.Deps{
				Git:     git.NewClient(cfg.Workspace, cfg.Remote, git.NewExecRunner(cfg.GitBinary), logger),
				Outputs: report.NewFileOutputWriter(cfg.OutputPath, cfg.SummaryPath),
				Stdout:  cmd.OutOrStdout(),
				Logger:  logger,
			})
			return err
		},
	}

	flags := cmd.Flags()
	flags.String(config.KeyFilters, "", "YAML mapping of group name to glob patterns (env INPUT_FILTERS)")
	flags.String(config.KeyMode, string(config.ModeGated), `output mode: "gated" (true/false, CI changes run every group) or "count"`)
	flags.String(config.KeyDefaultBase, "", "base revision for events without one (default <remote>/<repository default branch>)")
	flags.String(config.KeyDefaultHead, config.DefaultHead, "head revision for events without one")
	flags.String(config.KeyRemote, config.DefaultRemote, "remote to fetch missing revisions from")
	flags.String(config.KeyEventName, "", "triggering event name (env GITHUB_EVENT_NAME)")
	flags.String(config.KeyEventPath, "", "path to the event payload (env GITHUB_EVENT_PATH)")
	flags.String(config.KeyWorkspace, "", "repository checkout (env GITHUB_WORKSPACE)")
	flags.String(config.KeyOutput, "", "step output file (env GITHUB_OUTPUT)")
	flags.String(config.KeySummary, "", "job summary file (env GITHUB_STEP_SUMMARY)")
	flags.String(config.KeyLogLevel, "info", "diagnostic log level")
	flags.String(config.KeyGitBinary, "git", "git executable")

	return cmd
}
