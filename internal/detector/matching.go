package detector

import (
	"github.com/bmatcuk/doublestar/v4"
)

// MatchFiles returns the files matching at least one pattern, in file order.
func MatchFiles(patterns, files []string) []string {
	normPatterns := normalizePatterns(patterns)
	if len(normPatterns) == 0 {
		return nil
	}

	var matched []string
	for _, file := range files {
		if pathMatchesAny(normPatterns, file) {
			matched = append(matched, file)
		}
	}
	return matched
}

func pathMatchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		match, err := doublestar.Match(pattern, path)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}

// ValidatePatterns reports the patterns the glob engine rejects. They are
// never an error; they simply never match.
func ValidatePatterns(patterns []string) []string {
	var invalid []string
	for _, pattern := range normalizePatterns(patterns) {
		if !doublestar.ValidatePattern(pattern) {
			invalid = append(invalid, pattern)
		}
	}
	return invalid
}
