package detector

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/nektos/act/pkg/model"
)

const workflowsDir = ".github/workflows"

// WorkflowChange describes a changed GitHub workflow file.
type WorkflowChange struct {
	Path    string
	Name    string
	Events  []string
	Deleted bool
}

// ChangedWorkflows picks the workflow definitions out of files and reads the
// ones still present under repoRoot for their name and trigger events.
func ChangedWorkflows(repoRoot string, files []string) ([]WorkflowChange, error) {
	var changes []WorkflowChange
	for _, file := range files {
		if !isWorkflowFile(file) {
			continue
		}

		content, err := os.ReadFile(filepath.Join(repoRoot, filepath.FromSlash(file)))
		if err != nil {
			if os.IsNotExist(err) {
				changes = append(changes, WorkflowChange{
					Path:    file,
					Name:    workflowName(nil, filepath.Base(file)),
					Deleted: true,
				})
				continue
			}
			return nil, errors.Wrapf(err, "read workflow %s", file)
		}

		workflow, err := readWorkflow(bytes.NewReader(content))
		if err != nil {
			return nil, errors.Wrapf(err, "parse workflow %s", file)
		}

		changes = append(changes, WorkflowChange{
			Path:   file,
			Name:   workflowName(workflow, filepath.Base(file)),
			Events: workflow.On(),
		})
	}
	return changes, nil
}

func readWorkflow(r io.Reader) (*model.Workflow, error) {
	wf, err := model.ReadWorkflow(r)
	if err != nil {
		return nil, err
	}
	return wf, nil
}

func workflowName(workflow *model.Workflow, fallback string) string {
	if workflow != nil && workflow.Name != "" {
		return workflow.Name
	}
	return strings.TrimSuffix(strings.TrimSuffix(fallback, ".yml"), ".yaml")
}
