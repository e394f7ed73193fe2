package event

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/go-github/v59/github"
)

// zeroSHA is what GitHub sends as "before" when a push creates a branch.
const zeroSHA = "0000000000000000000000000000000000000000"

const (
	fallbackRemote = "origin"
	fallbackBranch = "main"
)

// Revisions is the pair of commits to diff.
type Revisions struct {
	Base string
	Head string
}

// Defaults are used for events that do not name a base/head pair. An empty
// Base means <Remote>/<repository default branch>.
type Defaults struct {
	Base   string
	Head   string
	Remote string
}

// Resolve picks the base and head revisions for the event.
//
//   - pull_request, pull_request_target: the PR's base and head SHAs
//   - push: the before and after SHAs
//   - merge_group: the merge group's base and head SHAs
//   - anything else: the configured defaults
//
// Where the default base is needed and none is configured, it is the remote
// tracking ref of the repository's default branch.
func (c Context) Resolve(defaults Defaults) (Revisions, error) {
	switch {
	case c.IsPullRequest():
		var evt github.PullRequestEvent
		if err := json.Unmarshal(c.Payload, &evt); err != nil {
			return Revisions{}, errors.Mark(errors.Wrapf(err, "decode %s payload", c.Name), ErrEventPayload)
		}
		pr := evt.GetPullRequest()
		return required(c.Name, pr.GetBase().GetSHA(), pr.GetHead().GetSHA(), "pull_request.base.sha", "pull_request.head.sha")

	case c.Name == Push:
		var evt github.PushEvent
		if err := json.Unmarshal(c.Payload, &evt); err != nil {
			return Revisions{}, errors.Mark(errors.Wrapf(err, "decode %s payload", c.Name), ErrEventPayload)
		}
		before := evt.GetBefore()
		if before == zeroSHA {
			// New branch: nothing to compare against but the default base.
			before = c.defaultBase(defaults)
		}
		return required(c.Name, before, evt.GetAfter(), "before", "after")

	case c.Name == MergeGroup:
		var evt github.MergeGroupEvent
		if err := json.Unmarshal(c.Payload, &evt); err != nil {
			return Revisions{}, errors.Mark(errors.Wrapf(err, "decode %s payload", c.Name), ErrEventPayload)
		}
		mg := evt.GetMergeGroup()
		return required(c.Name, mg.GetBaseSHA(), mg.GetHeadSHA(), "merge_group.base_sha", "merge_group.head_sha")

	default:
		return Revisions{Base: c.defaultBase(defaults), Head: defaults.Head}, nil
	}
}

func (c Context) defaultBase(defaults Defaults) string {
	if base := strings.TrimSpace(defaults.Base); base != "" {
		return base
	}
	remote := strings.TrimSpace(defaults.Remote)
	if remote == "" {
		remote = fallbackRemote
	}
	branch := strings.TrimSpace(c.DefaultBranch)
	if branch == "" {
		branch = fallbackBranch
	}
	return remote + "/" + branch
}

func required(event, base, head, baseField, headField string) (Revisions, error) {
	base, head = strings.TrimSpace(base), strings.TrimSpace(head)
	if base == "" {
		return Revisions{}, errors.Wrapf(ErrEventPayload, "%s payload has no %s", event, baseField)
	}
	if head == "" {
		return Revisions{}, errors.Wrapf(ErrEventPayload, "%s payload has no %s", event, headField)
	}
	return Revisions{Base: base, Head: head}, nil
}
