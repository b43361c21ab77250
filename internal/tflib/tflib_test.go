package tflib

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/pipeline"
)

func call(t *testing.T, entrypoint string, params any, args ...any) (any, error) {
	t.Helper()
	fn, err := NewRegistry().Resolve(ir.PackageSpec{Name: Package}, entrypoint)
	require.NoError(t, err)
	return fn.Call(args, params)
}

func mustCall(t *testing.T, entrypoint string, params any, args ...any) any {
	t.Helper()
	v, err := call(t, entrypoint, params, args...)
	require.NoError(t, err)
	return v
}

func TestRegistryContents(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, len(entries()), r.Count())
	assert.True(t, r.Has("bento_transforms.string", "split"))
	assert.True(t, r.Has("bento_transforms.ids", "generate_uuid"))

	fn, ok := r.Lookup("bento_transforms.string", "split")
	require.True(t, ok)
	assert.Equal(t, pipeline.Multiple, fn.Result)
}

func TestRegisterKeepsExistingFunctions(t *testing.T) {
	r := pipeline.NewRegistry()
	shout := pipeline.SingleFunc(func(args []any, _ any) (any, error) {
		return "overridden", nil
	})
	require.NoError(t, r.Register(Package+".string", "normalize_case", shout))
	require.NoError(t, Register(r))
	assert.Equal(t, len(entries()), r.Count())

	fn, err := r.Resolve(ir.PackageSpec{Name: Package}, "string.normalize_case")
	require.NoError(t, err)
	v, err := fn.Call([]any{"Abc"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "overridden", v)

	fn, err = r.Resolve(ir.PackageSpec{Name: Package}, "string.split")
	require.NoError(t, err)
	assert.Equal(t, pipeline.Multiple, fn.Result)
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []any{"Sigismund", "Leonhart", "Popbutton"},
		mustCall(t, "string.split", nil, "Sigismund Leonhart Popbutton"))
	assert.Equal(t, []any{"a", "b"},
		mustCall(t, "string.split", map[string]any{"delimiter": ","}, "a,b"))

	_, err := call(t, "string.split", nil, 12)
	assert.Error(t, err)
	_, err = call(t, "string.split", "not a mapping", "x")
	assert.ErrorContains(t, err, "params must be a mapping")
	_, err = call(t, "string.split", nil, "a", "b")
	assert.ErrorContains(t, err, "exactly one argument")
}

func TestExtractMiddleName(t *testing.T) {
	assert.Equal(t, "Leonhart", mustCall(t, "string.extract_middle_name", nil, "Sigismund Leonhart Popbutton"))
	assert.Equal(t, "Popbutton", mustCall(t, "string.extract_middle_name",
		map[string]any{"position": "2"}, "Sigismund Leonhart Popbutton"))
	assert.Equal(t, "none", mustCall(t, "string.extract_middle_name",
		map[string]any{"default": "none"}, "Cher"))
	assert.Nil(t, mustCall(t, "string.extract_middle_name", nil, nil))
}

func TestStripPattern(t *testing.T) {
	assert.Equal(t, "abc", mustCall(t, "string.strip_pattern",
		map[string]any{"pattern": `[0-9]+`}, "a1b22c333"))
	assert.Equal(t, "x-x", mustCall(t, "string.strip_pattern",
		map[string]any{"pattern": "ab", "replacement": "x", "flags": 2}, "AB-ab"))
	assert.Equal(t, "keep", mustCall(t, "string.strip_pattern", nil, "keep"))

	_, err := call(t, "string.strip_pattern", map[string]any{"pattern": "("}, "x")
	assert.Error(t, err)
}

func TestNormalizeCase(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		in     string
		want   string
	}{
		{"upper", map[string]any{"case_type": "upper"}, "Mixed case", "MIXED CASE"},
		{"lower", map[string]any{"case_type": "lower"}, "Mixed CASE", "mixed case"},
		{"title", map[string]any{"case_type": "title"}, "acute myeloid LEUKEMIA", "Acute Myeloid Leukemia"},
		{"sentence", nil, "ACUTE myeloid Leukemia", "Acute myeloid leukemia"},
		{"sentence exceptions", map[string]any{"exceptions": []any{"NOS"}}, "carcinoma, nos.", "Carcinoma, NOS"},
		{"unknown type", map[string]any{"case_type": "kebab"}, "As Is", "As Is"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var params any
			if tt.params != nil {
				params = tt.params
			}
			assert.Equal(t, tt.want, mustCall(t, "string.normalize_case", params, tt.in))
		})
	}
}

func TestAddPrefix(t *testing.T) {
	assert.Equal(t, "pfx_42", mustCall(t, "string.add_prefix", map[string]any{"prefix": "pfx_"}, 42))
	assert.Nil(t, mustCall(t, "string.add_prefix", map[string]any{"prefix": "p"}, nil))
}

func TestConcatFields(t *testing.T) {
	assert.Equal(t, "a_b_3", mustCall(t, "string.concat_fields", nil, "a", nil, "b", " ", 3))
	assert.Equal(t, "[a--b]", mustCall(t, "string.concat_fields",
		map[string]any{"delimiter": "-", "prefix": "[", "suffix": "]", "skip_null": false},
		[]any{"a", nil, "b"}))
}

func TestDaysToYears(t *testing.T) {
	assert.Equal(t, 1.0, mustCall(t, "arith.days_to_years", nil, 365))
	assert.Equal(t, 2.5, mustCall(t, "arith.days_to_years", nil, 912.5))
	assert.Equal(t, 0.33, mustCall(t, "arith.days_to_years", nil, 120))
	assert.Equal(t, 10.0, mustCall(t, "arith.days_to_years",
		map[string]any{"divisor": 7, "precision": 0}, 70))
	assert.Nil(t, mustCall(t, "arith.days_to_years", nil, -999))
	assert.Nil(t, mustCall(t, "arith.days_to_years", nil, nil))

	_, err := call(t, "arith.days_to_years", nil, "lots")
	assert.ErrorContains(t, err, "not a number")
}

func TestYearsToDays(t *testing.T) {
	assert.Equal(t, int64(730), mustCall(t, "arith.years_to_days", nil, 2))
	assert.Equal(t, int64(548), mustCall(t, "arith.years_to_days", nil, 1.5))
	assert.Equal(t, int64(-999), mustCall(t, "arith.years_to_days", nil, nil))
	assert.Equal(t, int64(0), mustCall(t, "arith.years_to_days",
		map[string]any{"sentinel_if_null": 0}, nil))
}

func TestRaceLookups(t *testing.T) {
	assert.Equal(t, "White", mustCall(t, "lookup.race_ccdi_to_cds", nil, "European"))
	assert.Equal(t, "NA", mustCall(t, "lookup.race_ccdi_to_cds", nil, "Martian"))
	assert.Equal(t, "missing", mustCall(t, "lookup.race_ccdi_to_cds", "missing", "Martian"))
	assert.Equal(t, "n/a", mustCall(t, "lookup.race_ccdi_to_cds", map[string]any{"default": "n/a"}, "Martian"))

	assert.Equal(t, "European", mustCall(t, "lookup.race_cds_to_ccdi", nil, "White"))
	assert.Equal(t, "Unknown", mustCall(t, "lookup.race_cds_to_ccdi", nil, "Martian"))
}

func TestGenerateUUID(t *testing.T) {
	got := mustCall(t, "ids.generate_uuid", nil, "study", nil, "42")
	want := uuid.NewSHA1(uuid.NameSpaceDNS, []byte("study_42")).String()
	assert.Equal(t, want, got)

	// Sequence input and positional input agree.
	assert.Equal(t, got, mustCall(t, "ids.generate_uuid", nil, []any{"study", "42"}))

	url := mustCall(t, "ids.generate_uuid", map[string]any{"namespace": "url"}, "study_42")
	assert.NotEqual(t, got, url)

	_, err := call(t, "ids.generate_uuid", map[string]any{"namespace": "galaxy"}, "x")
	assert.ErrorContains(t, err, "unknown namespace")
}
