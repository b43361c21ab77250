package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a conformance scenario: one specification document and the
// pipeline calls expected to succeed or fail against it.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Spec is the specification document to load. Relative paths are
	// resolved against the scenario file's directory.
	Spec string `yaml:"spec"`

	// Defaults is an optional external default bundle file, resolved
	// like Spec.
	Defaults string `yaml:"defaults,omitempty"`

	// Cases are evaluated in order.
	Cases []Case `yaml:"cases"`
}

// Case is a single pipeline invocation with its expected outcome.
// Exactly one of Expect, ExpectNull, ExpectFields or Error applies.
type Case struct {
	// Name is an optional label for reports. Defaults to the transform
	// handle and case index.
	Name string `yaml:"name,omitempty"`

	// Transform is the handle of the transform to compile and call.
	Transform string `yaml:"transform"`

	// Input is passed through pipeline.InputOf: a list is positional, a
	// mapping is keywords, anything else is a single scalar.
	Input any `yaml:"input"`

	// Expect is the whole expected result, compared as canonical JSON.
	Expect any `yaml:"expect,omitempty"`

	// ExpectNull asserts a null result.
	ExpectNull bool `yaml:"expect_null,omitempty"`

	// ExpectFields is a subset match against a multiple-valued result.
	ExpectFields map[string]any `yaml:"expect_fields,omitempty"`

	// Error is a substring the compile or call error must contain.
	Error string `yaml:"error,omitempty"`
}

// label names the case in reports.
func (c Case) label(i int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%s[%d]", c.Transform, i)
}

// LoadScenario reads a scenario file. Spec and Defaults paths are resolved
// against the file's directory. Unknown fields are rejected so typos
// like "expected:" fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath is LoadScenario with an explicit base
// directory for relative Spec and Defaults paths.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.Spec = resolve(basePath, scenario.Spec)
	scenario.Defaults = resolve(basePath, scenario.Defaults)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// validateScenario checks that required fields are present and every case
// states exactly one expectation.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Spec == "" {
		return fmt.Errorf("spec is required")
	}
	if _, err := os.Stat(s.Spec); err != nil {
		return fmt.Errorf("spec file not found: %s", s.Spec)
	}
	if s.Defaults != "" {
		if _, err := os.Stat(s.Defaults); err != nil {
			return fmt.Errorf("defaults file not found: %s", s.Defaults)
		}
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, c := range s.Cases {
		if c.Transform == "" {
			return fmt.Errorf("cases[%d]: transform is required", i)
		}
		n := 0
		if c.Expect != nil {
			n++
		}
		if c.ExpectNull {
			n++
		}
		if c.ExpectFields != nil {
			n++
		}
		if c.Error != "" {
			n++
		}
		switch {
		case n == 0:
			return fmt.Errorf("cases[%d]: one of expect, expect_null, expect_fields or error is required", i)
		case n > 1:
			return fmt.Errorf("cases[%d]: expect, expect_null, expect_fields and error are mutually exclusive", i)
		}
	}
	return nil
}
