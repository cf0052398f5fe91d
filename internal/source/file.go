package source

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"jobfinder/internal/job"
)

// File reads postings from a local JSON or YAML document, either a bare
// list or an object with a top-level "jobs" key.
type File struct {
	path string
}

// NewFile creates a posting source backed by the given file.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string { return "file" }

func (f *File) Fetch(_ context.Context) ([]job.Posting, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading postings file: %w", err)
	}

	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		var wrapper struct {
			Jobs []map[string]any `yaml:"jobs"`
		}
		if werr := yaml.Unmarshal(data, &wrapper); werr != nil || wrapper.Jobs == nil {
			return nil, fmt.Errorf("parsing postings file %q: %w", f.path, err)
		}
		raw = wrapper.Jobs
	}

	var postings []job.Posting
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &postings,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding postings file %q: %w", f.path, err)
	}

	for i := range postings {
		if postings[i].Source == "" {
			postings[i].Source = "File"
		}
	}

	return postings, nil
}
