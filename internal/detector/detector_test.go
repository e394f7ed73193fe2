package detector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coreeng/action-changed-groups/internal/config"
)

func TestClassify_CIChangeGated(t *testing.T) {
	files := []string{"src/app.ts", ".github/workflows/ci.yml"}
	groups := []config.PatternGroup{
		{Name: "frontend", Patterns: []string{"src/**"}},
		{Name: "docs", Patterns: []string{"docs/**"}},
	}

	result := Classify(files, groups, config.ModeGated)

	want := Result{
		Mode: config.ModeGated,
		All:  files,
		CI: GroupResult{
			Name:      "ci",
			Matched:   []string{".github/workflows/ci.yml"},
			Count:     1,
			ShouldRun: true,
		},
		Groups: []GroupResult{
			{Name: "frontend", Matched: []string{"src/app.ts"}, Count: 1, ShouldRun: true},
			{Name: "docs", Count: 0, ShouldRun: true, ForcedByCI: true},
		},
	}

	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_CIChangeCount(t *testing.T) {
	files := []string{"src/app.ts", ".github/workflows/ci.yml"}
	groups := []config.PatternGroup{
		{Name: "frontend", Patterns: []string{"src/**"}},
		{Name: "docs", Patterns: []string{"docs/**"}},
	}

	result := Classify(files, groups, config.ModeCount)

	docs := groupResult(t, result, "docs")
	if docs.Count != 0 || docs.ShouldRun || docs.ForcedByCI {
		t.Fatalf("expected docs to stay independent of CI changes, got %+v", docs)
	}

	frontend := groupResult(t, result, "frontend")
	if frontend.Count != 1 || !frontend.ShouldRun {
		t.Fatalf("expected frontend to match once, got %+v", frontend)
	}
	if !result.CI.ShouldRun || result.CI.Count != 1 {
		t.Fatalf("expected ci to match once, got %+v", result.CI)
	}
}

func TestClassify_EmptyChangeSet(t *testing.T) {
	groups := []config.PatternGroup{{Name: "frontend", Patterns: []string{"src/**"}}}

	for _, mode := range []config.Mode{config.ModeGated, config.ModeCount} {
		result := Classify(nil, groups, mode)

		if len(result.All) != 0 {
			t.Fatalf("%s: expected no files, got %v", mode, result.All)
		}
		if result.CI.ShouldRun || result.CI.Count != 0 {
			t.Fatalf("%s: expected ci to be false, got %+v", mode, result.CI)
		}
		want := []GroupResult{{Name: "frontend"}}
		if diff := cmp.Diff(want, result.Groups); diff != "" {
			t.Fatalf("%s: mismatch (-want +got):\n%s", mode, diff)
		}
	}
}

func TestClassify_CIOnlyForcesEveryGroup(t *testing.T) {
	files := []string{"scripts/ci/deploy.sh"}
	groups := []config.PatternGroup{
		{Name: "backend", Patterns: []string{"api/**"}},
		{Name: "none"},
	}

	result := Classify(files, groups, config.ModeGated)

	if !result.CI.ShouldRun {
		t.Fatalf("expected ci change to be detected")
	}
	for _, g := range result.Groups {
		if g.Count != 0 || !g.ShouldRun || !g.ForcedByCI {
			t.Fatalf("expected %s to be forced by ci, got %+v", g.Name, g)
		}
	}
}

func TestClassify_PatternOrderIndependent(t *testing.T) {
	files := []string{"a/x.go", "b/y.go", "c/z.md", "a/b/c.go"}
	forward := []config.PatternGroup{{Name: "g", Patterns: []string{"a/**", "**/*.md", "b/*"}}}
	reverse := []config.PatternGroup{{Name: "g", Patterns: []string{"b/*", "**/*.md", "a/**"}}}

	first := Classify(files, forward, config.ModeCount)
	second := Classify(files, reverse, config.ModeCount)

	if diff := cmp.Diff(first.Groups, second.Groups); diff != "" {
		t.Fatalf("pattern order changed the result (-forward +reverse):\n%s", diff)
	}
	if first.Groups[0].Count != 4 {
		t.Fatalf("expected every file to match, got %+v", first.Groups[0])
	}
}

func TestClassify_Idempotent(t *testing.T) {
	files := []string{"src/app.ts", "docs/index.md", ".ci/build.sh"}
	groups := []config.PatternGroup{
		{Name: "frontend", Patterns: []string{"src/**"}},
		{Name: "docs", Patterns: []string{"docs/**"}},
	}

	first := Classify(files, groups, config.ModeGated)
	second := Classify(files, groups, config.ModeGated)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("classification is not idempotent (-first +second):\n%s", diff)
	}
}

func TestClassify_CountNeverExceedsChangeSet(t *testing.T) {
	files := []string{"src/a.go", "src/a.go", "src/b.go"}
	groups := []config.PatternGroup{{Name: "all-src", Patterns: []string{"src/**", "**/*.go", "src/*.go"}}}

	result := Classify(files, groups, config.ModeCount)
	if got := result.Groups[0].Count; got != len(files) {
		t.Fatalf("expected %d matches, got %d", len(files), got)
	}
}

func TestClassify_DoesNotAliasInput(t *testing.T) {
	files := []string{"src/app.ts"}
	result := Classify(files, nil, config.ModeGated)
	files[0] = "changed"
	if result.All[0] != "src/app.ts" {
		t.Fatalf("result shares storage with the input slice")
	}
}

func TestMatchFiles_SegmentBoundary(t *testing.T) {
	files := []string{"scripts/ci/deploy.sh", "scripts/cider/deploy.sh", "scripts/ci/nested/run.sh"}

	got := MatchFiles([]string{"scripts/ci/**"}, files)
	want := []string{"scripts/ci/deploy.sh", "scripts/ci/nested/run.sh"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchFiles_SingleStarStaysInSegment(t *testing.T) {
	files := []string{"src/main.go", "src/pkg/util.go"}

	got := MatchFiles([]string{"src/*.go"}, files)
	if diff := cmp.Diff([]string{"src/main.go"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchFiles_NormalizesPatterns(t *testing.T) {
	files := []string{"docs/readme.md", "src/utils.go"}

	got := MatchFiles([]string{"  ./docs/**", "/src/*.go", ""}, files)
	if diff := cmp.Diff(files, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchFiles_InvalidPatternNeverMatches(t *testing.T) {
	files := []string{"src/[main.go"}
	if got := MatchFiles([]string{"src/[main.go"}, files); len(got) != 0 {
		t.Fatalf("expected invalid pattern not to match, got %v", got)
	}
	if got := ValidatePatterns([]string{"src/[main.go", "src/**"}); !cmp.Equal(got, []string{"src/[main.go"}) {
		t.Fatalf("unexpected invalid patterns: %v", got)
	}
}

func TestCIPatterns(t *testing.T) {
	ci := []string{".github/CODEOWNERS", ".github/workflows/ci.yml", ".ci/pipeline.yml", "scripts/ci/lint.sh"}
	other := []string{"scripts/release.sh", "github/workflows/ci.yml", "src/.github/x"}

	got := MatchFiles(CIPatterns, append(append([]string(nil), ci...), other...))
	if diff := cmp.Diff(ci, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestChangedWorkflows(t *testing.T) {
	repo := t.TempDir()
	writeWorkflow(t, repo, "pr-check.yml", `
name: pull-request-check
on:
  pull_request:
    paths:
      - "src/**"
`)
	writeWorkflow(t, repo, "release.yaml", `
on:
  push:
    tags: ["v*"]
`)

	files := []string{
		"src/main.go",
		".github/workflows/pr-check.yml",
		".github/workflows/release.yaml",
		".github/workflows/removed.yml",
		".github/workflows/nested/ignored.yml",
		".github/dependabot.yml",
	}

	changes, err := ChangedWorkflows(repo, files)
	if err != nil {
		t.Fatalf("ChangedWorkflows returned error: %v", err)
	}

	want := []WorkflowChange{
		{Path: ".github/workflows/pr-check.yml", Name: "pull-request-check", Events: []string{"pull_request"}},
		{Path: ".github/workflows/release.yaml", Name: "release", Events: []string{"push"}},
		{Path: ".github/workflows/removed.yml", Name: "removed", Deleted: true},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestChangedWorkflows_ParseError(t *testing.T) {
	repo := t.TempDir()
	writeWorkflow(t, repo, "broken.yml", "on: [push\n")

	if _, err := ChangedWorkflows(repo, []string{".github/workflows/broken.yml"}); err == nil {
		t.Fatalf("expected parse error for malformed workflow")
	}
}

func writeWorkflow(t *testing.T, repoRoot, name, content string) {
	t.Helper()
	dir := filepath.Join(repoRoot, ".github", "workflows")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create workflows dir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.TrimLeft(content, "\n")), 0o644); err != nil {
		t.Fatalf("failed to write workflow %s: %v", name, err)
	}
}

func groupResult(t *testing.T, r Result, name string) GroupResult {
	t.Helper()
	for _, g := range r.Groups {
		if g.Name == name {
			return g
		}
	}
	t.Fatalf("group %q missing from %+v", name, r.Groups)
	return GroupResult{}
}
