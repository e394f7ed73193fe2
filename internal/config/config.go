// Package config builds the single configuration value the action runs with.
// Inputs come from cobra flags and the GitHub Actions environment, merged by
// viper; nothing downstream reads the environment directly.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Viper keys. Flags carry the same names.
const (
	KeyFilters     = "filters"
	KeyMode        = "mode"
	KeyDefaultBase = "default-base"
	KeyDefaultHead = "default-head"
	KeyRemote      = "remote"
	KeyEventName   = "event-name"
	KeyEventPath   = "event-path"
	KeyWorkspace   = "workspace"
	KeyOutput      = "output"
	KeySummary     = "summary"
	KeyLogLevel    = "log-level"
	KeyDebug       = "debug"
	KeyGitBinary   = "git"
)

// Defaults for optional inputs. The default base is left empty so the event
// resolver can derive it from the repository's default branch.
const (
	DefaultHead   = "HEAD"
	DefaultRemote = "origin"
)

var (
	ErrMissingFilters = errors.New("filters input is required")
	ErrInvalidFilters = errors.New("invalid filters")
	ErrInvalidMode    = errors.New("invalid mode")
)

// envBindings maps each key to the environment variables GitHub Actions
// populates for it. Runners keep hyphens in input names, so both spellings
// are accepted.
var envBindings = map[string][]string{
	KeyFilters:     {"INPUT_FILTERS"},
	KeyMode:        {"INPUT_MODE"},
	KeyDefaultBase: {"INPUT_DEFAULT-BASE", "INPUT_DEFAULT_BASE"},
	KeyDefaultHead: {"INPUT_DEFAULT-HEAD", "INPUT_DEFAULT_HEAD"},
	KeyRemote:      {"INPUT_REMOTE"},
	KeyEventName:   {"GITHUB_EVENT_NAME"},
	KeyEventPath:   {"GITHUB_EVENT_PATH"},
	KeyWorkspace:   {"GITHUB_WORKSPACE"},
	KeyOutput:      {"GITHUB_OUTPUT"},
	KeySummary:     {"GITHUB_STEP_SUMMARY"},
	KeyLogLevel:    {"INPUT_LOG-LEVEL", "INPUT_LOG_LEVEL"},
	KeyDebug:       {"RUNNER_DEBUG"},
}

// Config is constructed once at process start and handed to every stage.
type Config struct {
	Groups []PatternGroup
	Mode   Mode

	EventName string
	EventPath string

	Workspace   string
	OutputPath  string
	SummaryPath string

	DefaultBase string
	DefaultHead string
	Remote      string
	GitBinary   string

	LogLevel string
}

// BindEnv registers the environment bindings and defaults on v.
func BindEnv(v *viper.Viper) error {
	for key, names := range envBindings {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return errors.Wrapf(err, "bind env for %s", key)
		}
	}

	v.SetDefault(KeyMode, string(ModeGated))
	v.SetDefault(KeyDefaultHead, DefaultHead)
	v.SetDefault(KeyRemote, DefaultRemote)
	v.SetDefault(KeyGitBinary, "git")
	v.SetDefault(KeyLogLevel, "info")
	return nil
}

// Load reads every setting from v and validates the ones the run cannot
// start without. Filters are parsed here so a configuration error surfaces
// before any git command or output.
func Load(v *viper.Viper) (*Config, error) {
	groups, err := ParseGroups(v.GetString(KeyFilters))
	if err != nil {
		return nil, err
	}

	mode, err := ParseMode(v.GetString(KeyMode))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Groups:      groups,
		Mode:        mode,
		EventName:   strings.TrimSpace(v.GetString(KeyEventName)),
		EventPath:   strings.TrimSpace(v.GetString(KeyEventPath)),
		Workspace:   strings.TrimSpace(v.GetString(KeyWorkspace)),
		OutputPath:  strings.TrimSpace(v.GetString(KeyOutput)),
		SummaryPath: strings.TrimSpace(v.GetString(KeySummary)),
		DefaultBase: strings.TrimSpace(v.GetString(KeyDefaultBase)),
		DefaultHead: orDefault(v.GetString(KeyDefaultHead), DefaultHead),
		Remote:      orDefault(v.GetString(KeyRemote), DefaultRemote),
		GitBinary:   orDefault(v.GetString(KeyGitBinary), "git"),
		LogLevel:    logLevel(v),
	}
	if cfg.Workspace == "" {
		cfg.Workspace = "."
	}

	return cfg, nil
}

func logLevel(v *viper.Viper) string {
	if strings.TrimSpace(v.GetString(KeyDebug)) == "1" {
		return "debug"
	}
	return orDefault(v.GetString(KeyLogLevel), "info")
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
