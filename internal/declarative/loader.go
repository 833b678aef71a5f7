// Package declarative loads modeling jobs from YAML files and turns them into
// synthesis requests.
package declarative

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOptions configures YAML loading behavior.
type LoadOptions struct {
	AllowUnknownFields bool
}

// LoadFile reads a modeling job from path.
func LoadFile(path string) (*ModelingJobDoc, error) {
	return LoadFileWithOptions(path, LoadOptions{})
}

// LoadFileWithOptions reads a modeling job from path using caller-provided
// loading options.
func LoadFileWithOptions(path string, opts LoadOptions) (*ModelingJobDoc, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a modeling job document. The envelope is checked before the
// body so a wrong kind is reported as such rather than as unknown fields.
func Parse(data []byte, opts LoadOptions) (*ModelingJobDoc, error) {
	var env Document
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := validateDocument(env.APIVersion, env.Kind, KindModelingJob); err != nil {
		return nil, err
	}

	var doc ModelingJobDoc
	if opts.AllowUnknownFields {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		return &doc, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return &doc, nil
}

// validateDocument checks the apiVersion and kind fields.
func validateDocument(apiVersion, kind, expectedKind string) error {
	if apiVersion != SupportedAPIVersion {
		return fmt.Errorf("unsupported apiVersion %q (expected %q)", apiVersion, SupportedAPIVersion)
	}
	if kind != expectedKind {
		return fmt.Errorf("unexpected kind %q (expected %q)", kind, expectedKind)
	}
	return nil
}
