package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transformsSpec = "../../testdata/specs/transforms.yaml"

// writeScenario writes content to a fresh scenario file.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func absSpec(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs(transformsSpec)
	require.NoError(t, err)
	return p
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
spec: `+absSpec(t)+`
cases:
  - transform: age_days_to_years
    input: 3650
    expect: 10
  - transform: fullname_to_fmlnames
    input: "Jane Q Public"
    expect_fields:
      investigator_first_name: Jane
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, absSpec(t), scenario.Spec)
	require.Len(t, scenario.Cases, 2)
	assert.Equal(t, "age_days_to_years", scenario.Cases[0].Transform)
	assert.Equal(t, 3650, scenario.Cases[0].Input)
	assert.Equal(t, "Jane", scenario.Cases[1].ExpectFields["investigator_first_name"])
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Invalid(t *testing.T) {
	spec := absSpec(t)
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: d
spec: ` + spec + `
cases: [{transform: x, input: 1, expect: 1}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: n
spec: ` + spec + `
cases: [{transform: x, input: 1, expect: 1}]
`,
			wantErr: "description is required",
		},
		{
			name: "missing spec",
			content: `
name: n
description: d
cases: [{transform: x, input: 1, expect: 1}]
`,
			wantErr: "spec is required",
		},
		{
			name: "spec not found",
			content: `
name: n
description: d
spec: /nonexistent/spec.yaml
cases: [{transform: x, input: 1, expect: 1}]
`,
			wantErr: "spec file not found",
		},
		{
			name: "defaults not found",
			content: `
name: n
description: d
spec: ` + spec + `
defaults: /nonexistent/defaults.yaml
cases: [{transform: x, input: 1, expect: 1}]
`,
			wantErr: "defaults file not found",
		},
		{
			name: "no cases",
			content: `
name: n
description: d
spec: ` + spec + `
cases: []
`,
			wantErr: "cases list is required",
		},
		{
			name: "case without transform",
			content: `
name: n
description: d
spec: ` + spec + `
cases: [{input: 1, expect: 1}]
`,
			wantErr: "cases[0]: transform is required",
		},
		{
			name: "case without expectation",
			content: `
name: n
description: d
spec: ` + spec + `
cases: [{transform: x, input: 1}]
`,
			wantErr: "one of expect, expect_null, expect_fields or error is required",
		},
		{
			name: "conflicting expectations",
			content: `
name: n
description: d
spec: ` + spec + `
cases: [{transform: x, input: 1, expect: 1, error: boom}]
`,
			wantErr: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, "name: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_UnknownFieldsRejected(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, `
name: n
description: d
spec: `+absSpec(t)+`
cases:
  - transform: age_days_to_years
    input: 1
    expected: 1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected")
}

func TestLoadScenario_ExpectNullAlone(t *testing.T) {
	scenario, err := LoadScenario(writeScenario(t, `
name: n
description: d
spec: `+absSpec(t)+`
cases:
  - transform: age_days_to_years
    input: ~
    expect_null: true
`))
	require.NoError(t, err)
	assert.True(t, scenario.Cases[0].ExpectNull)
	assert.Nil(t, scenario.Cases[0].Input)
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	path := writeScenario(t, `
name: relative
description: d
spec: testdata/specs/transforms.yaml
defaults: testdata/specs/defaults.yaml
cases: [{transform: age_days_to_years, input: 365, expect: 1}]
`)
	scenario, err := LoadScenarioWithBasePath(path, "../..")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("../..", "testdata/specs/transforms.yaml"), scenario.Spec)
	assert.Equal(t, filepath.Join("../..", "testdata/specs/defaults.yaml"), scenario.Defaults)
}

func TestCaseLabel(t *testing.T) {
	assert.Equal(t, "age_days_to_years[3]", Case{Transform: "age_days_to_years"}.label(3))
	assert.Equal(t, "sentinel", Case{Name: "sentinel", Transform: "x"}.label(0))
}

// TestLoadExampleScenarios validates the example scenario files in
// testdata/scenarios. These serve as documentation and regression tests.
func TestLoadExampleScenarios(t *testing.T) {
	tests := []struct {
		file      string
		wantName  string
		wantCases int
	}{
		{"age.yaml", "age_conversion", 10},
		{"names.yaml", "personnel_names", 11},
		{"lookups.yaml", "code_lookups", 10},
		{"identities.yaml", "identities", 5},
		{"external_defaults.yaml", "external_defaults", 3},
		{"unresolved.yaml", "unresolved_function", 1},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("../../testdata/scenarios", tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, scenario.Name)
			assert.Len(t, scenario.Cases, tt.wantCases)
		})
	}
}
