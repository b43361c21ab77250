package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/normalize"
	"github.com/roach88/transmute/internal/raw"
)

func specPath(name string) string {
	return filepath.Join("..", "..", "testdata", "specs", name)
}

func TestLoadFileTransforms(t *testing.T) {
	doc, err := LoadFile(specPath("transforms.yaml"))
	require.NoError(t, err)

	defs, ok := doc.Get("TransformDefinitions")
	require.True(t, ok)
	transforms, ok := defs.Get("Transforms")
	require.True(t, ok)
	assert.Equal(t, raw.Mapping, transforms.Kind())
	// Document order survives loading.
	assert.Equal(t, "fullname_to_fmlnames", transforms.Keys()[0])
	assert.Equal(t, "participant_key", transforms.Keys()[transforms.Len()-1])

	set, err := normalize.New().NormalizeDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, 13, set.Len())

	tf, ok := set.Get("age_days_to_years")
	require.True(t, ok)
	require.Len(t, tf.Steps, 2)
	assert.Equal(t, map[string]any{"divisor": 365, "precision": 2}, tf.Steps[0].Params)
	assert.Nil(t, tf.Steps[1].Params)
	assert.True(t, tf.Steps[1].IsIdentity())
}

func TestLoadJSON(t *testing.T) {
	doc, err := Load([]byte(`{"TransformDefinitions": {"Transforms": {"t": {`+
		`"Inputs": [{"Model": "A", "Version": "1", "Node": "n", "Prop": "p"}], `+
		`"Outputs": [{"Model": "B", "Version": "1", "Node": "m", "Props": ["q"]}], `+
		`"Steps": [{"Package": "pkg@1", "Entrypoint": "f", "Params": {"k": [1, 2]}}]}}}}`), "inline.json")
	require.NoError(t, err)

	set, err := normalize.New().NormalizeDocument(doc)
	require.NoError(t, err)
	tf, _ := set.Get("t")
	assert.Equal(t, ir.PackageSpec{Name: "pkg", Version: "1"}, tf.Steps[0].Package)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code string
	}{
		{"invalid yaml", "TransformDefinitions: [unclosed", CodeParseFailed},
		{"empty", "", CodeEmpty},
		{"missing definitions", "Other: 1\n", CodeSchemaFailed},
		{"unknown endpoint field", `
TransformDefinitions:
  Transforms:
    t:
      Inputs: [{Nod: x}]
      Outputs: [a]
      Steps: [f]
`, CodeSchemaFailed},
		{"identity triple", `
TransformDefinitions:
  Identities:
    - [a, b, c]
`, CodeSchemaFailed},
		{"transform without steps", `
TransformDefinitions:
  Transforms:
    t:
      Inputs: [a]
      Outputs: [b]
`, CodeSchemaFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.data), "doc.yaml")
			require.Error(t, err)
			var lerr *LoadError
			require.True(t, errors.As(err, &lerr), "got %T: %v", err, err)
			assert.Equal(t, tt.code, lerr.Code)
			assert.Equal(t, "doc.yaml", lerr.Path)
		})
	}
}

func TestLoadFileSchemaError(t *testing.T) {
	_, err := LoadFile(specPath("err_schema.yaml"))
	require.Error(t, err)
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, CodeSchemaFailed, lerr.Code)
	assert.Contains(t, err.Error(), "err_schema.yaml")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, CodeNotFound, lerr.Code)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadDefaults(t *testing.T) {
	d, err := LoadDefaults(specPath("defaults.yaml"))
	require.NoError(t, err)
	require.NotNil(t, d.Inputs)
	assert.Equal(t, "participant", d.Inputs.Node)
	assert.Equal(t, "2.1.0", d.Outputs.Version)
	assert.Equal(t, &ir.PackageSpec{Name: "bento_transforms", Version: "0.1.1"}, d.Package)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Package: [1]\n"), 0o644))
	_, err = LoadDefaults(path)
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, CodeDefaults, lerr.Code)
}

func TestNormalizeErrorFiles(t *testing.T) {
	tests := []struct {
		file    string
		message string
	}{
		{"err_missing_version.yaml", "Version not specified"},
		{"err_missing_node.yaml", "Node not specified"},
		{"err_missing_package.yaml", "Simple step entrypoint format"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			doc, err := LoadFile(specPath(tt.file))
			require.NoError(t, err)
			_, err = normalize.New().NormalizeDocument(doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
