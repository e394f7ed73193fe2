package detector

import (
	pathpkg "path"
	"path/filepath"
	"strings"
)

func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if norm := normalizePathPattern(p); norm != "" {
			out = append(out, norm)
		}
	}
	return out
}

func normalizePathPattern(p string) string {
	if p == "" {
		return ""
	}
	norm := filepath.ToSlash(strings.TrimSpace(p))
	for strings.HasPrefix(norm, "./") {
		norm = strings.TrimPrefix(norm, "./")
	}
	for strings.HasPrefix(norm, "/") {
		norm = strings.TrimPrefix(norm, "/")
	}
	return norm
}

func isWorkflowFile(path string) bool {
	if pathpkg.Dir(path) != workflowsDir {
		return false
	}
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")
}
