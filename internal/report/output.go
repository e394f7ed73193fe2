package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// OutputWriter publishes step outputs and job summary content to the runner.
type OutputWriter interface {
	WriteOutput(key, value string) error
	WriteSummary(content string) error
}

// FileOutputWriter appends to the files the runner exposes as
// $GITHUB_OUTPUT and $GITHUB_STEP_SUMMARY. An empty path disables that sink.
type FileOutputWriter struct {
	OutputPath  string
	SummaryPath string
}

// NewFileOutputWriter returns a writer for the given paths; either may be empty.
func NewFileOutputWriter(outputPath, summaryPath string) *FileOutputWriter {
	return &FileOutputWriter{OutputPath: outputPath, SummaryPath: summaryPath}
}

// WriteOutput appends key=value, or key<<DELIM ... DELIM for multiline
// values.
func (w *FileOutputWriter) WriteOutput(key, value string) error {
	if w.OutputPath == "" {
		return nil
	}
	return appendFile(w.OutputPath, formatOutput(key, value), "output")
}

// WriteSummary appends content to the job summary.
func (w *FileOutputWriter) WriteSummary(content string) error {
	if w.SummaryPath == "" {
		return nil
	}
	return appendFile(w.SummaryPath, content, "summary")
}

func formatOutput(key, value string) string {
	if !strings.Contains(value, "\n") {
		return fmt.Sprintf("%s=%s\n", key, value)
	}
	delimiter := "EOF"
	for strings.Contains(value, delimiter) {
		delimiter += "_"
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", key, delimiter, value, delimiter)
}

func appendFile(path, content, kind string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s file", kind)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return errors.Wrapf(err, "write %s file", kind)
	}
	return nil
}
