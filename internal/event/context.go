// Package event reads the GitHub event that triggered the run and resolves
// the base and head revisions to diff.
package event

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// Event names with dedicated revision handling.
const (
	PullRequest       = "pull_request"
	PullRequestTarget = "pull_request_target"
	Push              = "push"
	MergeGroup        = "merge_group"
)

// ErrEventPayload is returned when the event payload is missing, unreadable
// or lacks the revisions the event should carry.
var ErrEventPayload = errors.New("invalid event payload")

// Context captures the triggering event. It is read once and never changed.
type Context struct {
	// Name is the GitHub event name, e.g. "pull_request" or "push".
	Name string

	// Action is the event subtype, e.g. "opened" or "synchronize".
	Action string

	// DefaultBranch is the repository default branch, when the payload has it.
	DefaultBranch string

	// Payload is the raw event document.
	Payload []byte
}

// Load reads the event document at path. A missing path is only allowed for
// events whose revisions do not come from the payload.
func Load(name, path string) (Context, error) {
	ctx := Context{Name: strings.TrimSpace(name)}

	if strings.TrimSpace(path) == "" {
		if needsPayload(ctx.Name) {
			return Context{}, errors.Wrapf(ErrEventPayload, "%s event requires GITHUB_EVENT_PATH", ctx.Name)
		}
		return ctx, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Context{}, errors.Mark(errors.Wrap(err, "read event file"), ErrEventPayload)
	}

	return Parse(ctx.Name, data)
}

// Parse builds a Context from an in-memory payload.
func Parse(name string, payload []byte) (Context, error) {
	ctx := Context{Name: strings.TrimSpace(name), Payload: payload}

	var base struct {
		Action     string `json:"action"`
		Repository struct {
			DefaultBranch string `json:"default_branch"`
		} `json:"repository"`
	}
	if err := json.Unmarshal(payload, &base); err != nil {
		return Context{}, errors.Mark(errors.Wrap(err, "parse event file"), ErrEventPayload)
	}
	ctx.Action = base.Action
	ctx.DefaultBranch = base.Repository.DefaultBranch

	return ctx, nil
}

// IsPullRequest reports whether the event carries a pull_request object.
func (c Context) IsPullRequest() bool {
	return c.Name == PullRequest || c.Name == PullRequestTarget
}

func needsPayload(name string) bool {
	switch name {
	case PullRequest, PullRequestTarget, Push, MergeGroup:
		return true
	}
	return false
}
