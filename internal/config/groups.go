package config

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Reserved output names. A filter group may not reuse them.
const (
	OutputAll          = "all"
	OutputCI           = "ci"
	OutputChangedFiles = "changed_files"
)

// PatternGroup is one named filter: a path belongs to the group when it
// matches any of Patterns.
type PatternGroup struct {
	Name     string
	Patterns []string
}

// ParseGroups decodes the filters YAML mapping. Group order follows the
// document so outputs and logs are deterministic.
//
// Each value may be a sequence of patterns or a single pattern string:
//
//	frontend:
//	  - "src/**"
//	docs: "docs/**"
func ParseGroups(raw string) ([]PatternGroup, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingFilters
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse filters"), ErrInvalidFilters)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrMissingFilters
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, ErrMissingFilters
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.Wrapf(ErrInvalidFilters, "line %d: expected a mapping of group name to patterns", root.Line)
	}

	groups := make([]PatternGroup, 0, len(root.Content)/2)
	seen := make(map[string]struct{}, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := resolveAlias(root.Content[i]), root.Content[i+1]

		if keyNode.Tag == "!!merge" || keyNode.Value == "<<" {
			return nil, errors.Wrapf(ErrInvalidFilters, "line %d: merge keys are not supported", keyNode.Line)
		}
		name := strings.TrimSpace(keyNode.Value)
		if name == "" {
			return nil, errors.Wrapf(ErrInvalidFilters, "line %d: empty group name", keyNode.Line)
		}
		if strings.ContainsAny(name, "=\r\n") || strings.Contains(name, "<<") {
			return nil, errors.Wrapf(ErrInvalidFilters, "line %d: group name %q cannot be used as an output name", keyNode.Line, name)
		}
		if isReserved(name) {
			return nil, errors.Wrapf(ErrInvalidFilters, "line %d: group name %q is reserved", keyNode.Line, name)
		}
		if _, dup := seen[name]; dup {
			return nil, errors.Wrapf(ErrInvalidFilters, "line %d: duplicate group %q", keyNode.Line, name)
		}
		seen[name] = struct{}{}

		patterns, err := decodePatterns(valueNode)
		if err != nil {
			return nil, errors.Wrapf(err, "group %q", name)
		}
		groups = append(groups, PatternGroup{Name: name, Patterns: patterns})
	}

	if len(groups) == 0 {
		return nil, ErrMissingFilters
	}
	return groups, nil
}

func decodePatterns(node *yaml.Node) ([]string, error) {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		var patterns []string
		if err := node.Decode(&patterns); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "line %d", node.Line), ErrInvalidFilters)
		}
		return patterns, nil
	default:
		return nil, errors.Wrapf(ErrInvalidFilters, "line %d: expected a list of patterns", node.Line)
	}
}

// resolveAlias follows *anchor references to the anchored node.
func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isReserved(name string) bool {
	switch name {
	case OutputAll, OutputCI, OutputChangedFiles:
		return true
	}
	return false
}

// String renders the group for logs.
func (g PatternGroup) String() string {
	return fmt.Sprintf("%s: [%s]", g.Name, strings.Join(g.Patterns, ", "))
}
