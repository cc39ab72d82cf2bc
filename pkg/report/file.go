package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ksysoev/wbs-import/pkg/core"
	"gopkg.in/yaml.v3"
)

// File writes the final result to a JSON or YAML file chosen by extension
type File struct {
	path string
}

type fileReport struct {
	Summary        Summary `json:"summary" yaml:"summary"`
	core.RunResult `yaml:",inline"`
}

// NewFile creates a file reporter. Paths ending in .yaml or .yml produce YAML, anything else JSON.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) ModuleDone(core.ModuleRecord) {}

func (f *File) IssueDone(core.IssueRecord) {}

// Finish writes the report, replacing any existing file
func (f *File) Finish(result *core.RunResult) error {
	report := fileReport{Summary: Summarize(result), RunResult: *result}

	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(report)
	default:
		data, err = json.MarshalIndent(report, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", f.path, err)
	}

	return nil
}
