package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/transmute/internal/pipeline"
)

func TestRun_ExampleScenarios(t *testing.T) {
	files, err := filepath.Glob("../../testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Cases, len(scenario.Cases))
			assert.Equal(t, len(scenario.Cases), result.Passed())
		})
	}
}

func TestRun_ReportsFailures(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "every case is wrong",
		Spec:        transformsSpec,
		Cases: []Case{
			{Transform: "age_days_to_years", Input: 3650, Expect: 11},
			{Transform: "age_days_to_years", Input: 3650, ExpectNull: true},
			{Transform: "age_days_to_years", Input: 3650, Error: "boom"},
			{Transform: "fullname_to_fmlnames", Input: "Jane Q Public", ExpectFields: map[string]any{"investigator_suffix": "Jr"}},
			{Transform: "age_days_to_years", Input: "forty", Expect: 1},
			{Transform: "age_days_to_years", Input: 3650, ExpectFields: map[string]any{"x": 1}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Cases, 6)
	assert.Equal(t, 0, result.Passed())
	assert.Len(t, result.Errors, 6)

	assert.Contains(t, result.Cases[0].Errors[0], "expect mismatch: expected 11, got 10")
	assert.Equal(t, float64(10), result.Cases[0].Got)
	assert.Contains(t, result.Cases[1].Errors[0], "expect_null mismatch")
	assert.Contains(t, result.Cases[2].Errors[0], `error containing "boom"`)
	assert.Contains(t, result.Cases[3].Errors[0], `field "investigator_suffix"`)
	assert.Contains(t, result.Cases[4].Errors[0], "unexpected error")
	assert.Contains(t, result.Cases[5].Errors[0], "a multiple-valued result")

	assert.Contains(t, result.Errors[0], "age_days_to_years[0]: ")
}

func TestRun_SpecLoadFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "broken",
		Description: "spec violates the schema",
		Spec:        "../../testdata/specs/err_schema.yaml",
		Cases:       []Case{{Transform: "x", Input: 1, Expect: 1}},
	}
	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario broken")
}

func TestRun_NormalizeFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing_version",
		Description: "normalization fails",
		Spec:        "../../testdata/specs/err_missing_version.yaml",
		Cases:       []Case{{Transform: "x", Input: 1, Expect: 1}},
	}
	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "normalize")
}

func TestRun_CustomRegistry(t *testing.T) {
	reg := pipeline.NewRegistry()
	reg.MustRegister("bento_transforms.arith", "days_to_years", pipeline.SingleFunc(
		func(args []any, params any) (any, error) { return "stubbed", nil },
	))

	scenario := &Scenario{
		Name:        "stubbed",
		Description: "registry override",
		Spec:        transformsSpec,
		Cases: []Case{
			{Transform: "age_days_to_years", Input: 1, Expect: "stubbed"},
			{Transform: "fullname_to_middle_name", Input: "a b c", Error: "no such method"},
		},
	}
	result, err := Run(scenario, WithRegistry(reg))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestHarness_CompilesOncePerHandle(t *testing.T) {
	h, err := New(&Scenario{Spec: transformsSpec})
	require.NoError(t, err)

	first := h.RunCase(0, Case{Transform: "file_prefix", Input: "a.bam", Expect: "s3://ccdi-bucket/a.bam"})
	require.True(t, first.Pass, "errors: %v", first.Errors)
	p := h.pipelines["file_prefix"]
	require.NotNil(t, p)

	second := h.RunCase(1, Case{Transform: "file_prefix", Input: "b.bam", Expect: "s3://ccdi-bucket/b.bam"})
	require.True(t, second.Pass)
	assert.Same(t, p, h.pipelines["file_prefix"])
	assert.Equal(t, 13, h.Transforms().Len())
}

func TestLoadTransforms_WithDefaults(t *testing.T) {
	set, err := LoadTransforms(
		"../../testdata/specs/no_defaults.yaml",
		"../../testdata/specs/defaults.yaml",
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"participant_race_to_participant_race", "race_lookup"}, set.Handles())

	_, err = LoadTransforms("../../testdata/specs/no_defaults.yaml", "", nil)
	require.Error(t, err)
}
