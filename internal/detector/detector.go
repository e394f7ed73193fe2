package detector

import (
	"github.com/coreeng/action-changed-groups/internal/config"
)

// CIPatterns select changes to CI infrastructure. They are evaluated on every
// run regardless of the configured filters.
var CIPatterns = []string{
	".github/**",
	".ci/**",
	".github/workflows/**",
	"scripts/ci/**",
}

// GroupResult is the classification of the change set against one group.
type GroupResult struct {
	Name    string
	Matched []string
	Count   int

	// ShouldRun is the derived signal: Count > 0, or in gated mode also any
	// CI-infrastructure change.
	ShouldRun bool

	// ForcedByCI is set when ShouldRun comes from a CI change rather than a
	// direct match.
	ForcedByCI bool
}

// Result holds every signal computed for one run.
type Result struct {
	Mode   config.Mode
	All    []string
	CI     GroupResult
	Groups []GroupResult
}

// Classify matches files against the CI patterns and every group, keeping
// group order.
func Classify(files []string, groups []config.PatternGroup, mode config.Mode) Result {
	ciMatched := MatchFiles(CIPatterns, files)
	ciChanged := len(ciMatched) > 0

	result := Result{
		Mode: mode,
		All:  append([]string(nil), files...),
		CI: GroupResult{
			Name:      config.OutputCI,
			Matched:   ciMatched,
			Count:     len(ciMatched),
			ShouldRun: ciChanged,
		},
		Groups: make([]GroupResult, 0, len(groups)),
	}

	for _, group := range groups {
		matched := MatchFiles(group.Patterns, files)
		gr := GroupResult{
			Name:      group.Name,
			Matched:   matched,
			Count:     len(matched),
			ShouldRun: len(matched) > 0,
		}
		if mode == config.ModeGated && ciChanged && !gr.ShouldRun {
			gr.ShouldRun = true
			gr.ForcedByCI = true
		}
		result.Groups = append(result.Groups, gr)
	}

	return result
}

