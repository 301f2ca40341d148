package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lmiller1990/huddle/types"
)

// File implements a job source backed by a YAML catalog file.
//
// Expected document shape:
//
//	jobs:
//	  - id: morning-chores
//	    title: Morning Chores
//	    tasks:
//	      - id: task-1
//	        title: Dishes
//
// The file is read on every ListJobs call; the Coordinator calls it once at
// Start, so edits after startup have no effect on a running instance.
type File struct {
	path string
}

var _ types.JobSource = (*File)(nil)

// catalogDocument is the YAML file layout.
type catalogDocument struct {
	Jobs []types.Job `yaml:"jobs"`
}

// NewFile creates a job source reading the catalog from path.
//
// The file is not opened until ListJobs is called.
//
// Parameters:
//   - path: Path to the YAML catalog
//
// Returns:
//   - *File: Initialized file source
func NewFile(path string) *File {
	return &File{path: path}
}

// ListJobs reads and parses the catalog file.
//
// Returns:
//   - []types.Job: Jobs in file order
//   - error: Read or parse failure, wrapped with the file path
func (f *File) ListJobs(_ context.Context) ([]types.Job, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job catalog %s: %w", f.path, err)
	}

	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse job catalog %s: %w", f.path, err)
	}

	return doc.Jobs, nil
}
