// Package ingest decodes the structured work items produced upstream,
// validates them, and fills in the defaults the producer may leave out.
//
// Accepted documents are JSON or YAML, shaped either as
//
//	{"user_stories": [ ... ]}
//
// or as a bare list of work items.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// Format names an input encoding.
type Format string

// Supported input encodings.
const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Defaults applied to fields the producer leaves empty.
const (
	DefaultTestType      = "functional"
	DefaultSubtaskStatus = "Pending"
)

// ErrUnknownFormat is returned for an input encoding that is not supported.
var ErrUnknownFormat = errors.New("unknown input format")

// fibonacci holds the estimates accepted at ingestion.
var fibonacci = map[int]bool{1: true, 2: true, 3: true, 5: true, 8: true, 13: true}

type document struct {
	UserStories []types.WorkItem `json:"user_stories" yaml:"user_stories"`
}

// ParseFormat maps a format name to a Format. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatForPath picks the encoding from a file extension. Anything that is
// not .yaml or .yml is read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Read decodes, defaults, and validates the items in r.
func Read(r io.Reader, f Format) ([]types.WorkItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return Parse(data, f)
}

// Parse decodes, defaults, and validates the items in data. Validation
// failures are joined so that every rejected field is reported at once;
// each matches types.ErrValidation.
func Parse(data []byte, f Format) ([]types.WorkItem, error) {
	items, err := Decode(data, f)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(items)
	if err := Validate(items); err != nil {
		return nil, err
	}
	return items, nil
}

// Decode unmarshals either document shape without validating it.
func Decode(data []byte, f Format) ([]types.WorkItem, error) {
	switch f {
	case JSON:
		return decodeJSON(data)
	case YAML:
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func decodeJSON(data []byte) ([]types.WorkItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []types.WorkItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return items, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return doc.UserStories, nil
}

func decodeYAML(data []byte) ([]types.WorkItem, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	node := root.Content[0]
	if node.Kind == yaml.SequenceNode {
		var items []types.WorkItem
		if err := node.Decode(&items); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return items, nil
	}

	var doc document
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return doc.UserStories, nil
}

// ApplyDefaults fills generated subtask and test case ids, the default test
// type, and the default statuses. Existing values are kept.
func ApplyDefaults(items []types.WorkItem) {
	for i := range items {
		item := &items[i]
		if item.Status == "" {
			item.Status = types.DefaultItemStatus
		}
		for j := range item.Subtasks {
			st := &item.Subtasks[j]
			if st.ID == "" {
				st.ID = fmt.Sprintf("%s-ST%d", item.ID, j+1)
			}
			if st.Status == "" {
				st.Status = DefaultSubtaskStatus
			}
		}
		for j := range item.TestCases {
			tc := &item.TestCases[j]
			if tc.ID == "" {
				tc.ID = fmt.Sprintf("%s-TC%d", item.ID, j+1)
			}
			if tc.TestType == "" {
				tc.TestType = DefaultTestType
			}
		}
	}
}

// Validate checks every item against the ingestion rules: a non-empty id
// and title, a Fibonacci estimate between 1 and 13, a known priority, and an
// id not used by an earlier item.
func Validate(items []types.WorkItem) error {
	var errs []error
	seen := make(map[string]bool, len(items))

	for i, item := range items {
		if item.ID == "" {
			errs = append(errs, &types.ValidationError{
				Field:  fmt.Sprintf("user_stories[%d].id", i),
				Value:  `""`,
				Reason: "must not be empty",
			})
			continue
		}
		if seen[item.ID] {
			errs = append(errs, &types.ValidationError{ItemID: item.ID, Field: "id", Value: item.ID, Reason: "duplicate id"})
		}
		seen[item.ID] = true

		if strings.TrimSpace(item.Title) == "" {
			errs = append(errs, &types.ValidationError{ItemID: item.ID, Field: "title", Value: `""`, Reason: "must not be empty"})
		}
		if !fibonacci[item.StoryPoints] {
			errs = append(errs, &types.ValidationError{
				ItemID: item.ID, Field: "story_points", Value: item.StoryPoints,
				Reason: "must be one of 1, 2, 3, 5, 8, 13",
			})
		}
		if !item.Priority.Valid() {
			errs = append(errs, &types.ValidationError{
				ItemID: item.ID, Field: "priority", Value: item.Priority,
				Reason: "must be High, Medium or Low",
			})
		}
	}
	return errors.Join(errs...)
}
