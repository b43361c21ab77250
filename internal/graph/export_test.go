package graph

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/transmute/internal/ir"
)

var pkg = ir.PackageSpec{Name: "bento_transforms", Version: "0.1.1"}

func mustStep(t *testing.T, entry string, params any) ir.TfStepSpec {
	t.Helper()
	s, err := ir.NewStep(pkg, entry, params)
	require.NoError(t, err)
	return s
}

func nameSplit(t *testing.T) ir.Transform {
	t.Helper()
	tf, err := ir.NewTransform(
		[]ir.IOSpec{ir.MustIOSpec("CDS", "6.0.2", "study_personnel", "personnel_name")},
		[]ir.IOSpec{ir.MustIOSpec("CCDI", "2.1.0", "investigator", "first_name", "middle_name", "last_name")},
		[]ir.TfStepSpec{mustStep(t, "string.split", map[string]any{"delimiter": " "})},
	)
	require.NoError(t, err)
	return tf
}

func TestExportNameSplit(t *testing.T) {
	g, err := Export("fullname_to_fmlnames", nameSplit(t))
	require.NoError(t, err)

	tf := g.Transform
	assert.Equal(t, "fullname_to_fmlnames", tf.Handle)
	assert.Len(t, tf.InputProps, 1)
	assert.Len(t, tf.OutputProps, 3)
	assert.Contains(t, tf.InputProps, "study_personnel.personnel_name")
	assert.Contains(t, tf.OutputProps, "investigator.middle_name")

	require.NotNil(t, tf.FirstStep)
	assert.Same(t, tf.FirstStep, tf.LastStep)
	assert.Nil(t, tf.FirstStep.Next)
	assert.Equal(t, "string.split", tf.FirstStep.Entrypoint)
	assert.Equal(t, "bento_transforms", tf.FirstStep.Package)
	assert.Equal(t, "0.1.1", tf.FirstStep.Version)
	assert.Equal(t, `{"delimiter":" "}`, string(tf.FirstStep.Params))

	params, err := tf.FirstStep.DecodeParams()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"delimiter": " "}, params)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "study_personnel", g.Nodes[0].Handle)
	assert.Equal(t, "investigator", g.Nodes[1].Handle)
	assert.Len(t, g.Nodes[1].Props, 3)
	assert.Len(t, g.Properties, 4)
}

func TestExportStepChain(t *testing.T) {
	tf, err := ir.NewTransform(
		[]ir.IOSpec{ir.MustIOSpec("A", "1", "n", "p")},
		[]ir.IOSpec{ir.MustIOSpec("B", "1", "m", "q")},
		[]ir.TfStepSpec{
			mustStep(t, "first", nil),
			mustStep(t, "second", map[string]any{"k": 1}),
			mustStep(t, "third", nil),
			mustStep(t, "fourth", nil),
		},
	)
	require.NoError(t, err)

	g, err := Export("chain", tf)
	require.NoError(t, err)

	steps := g.Transform.Steps()
	require.Len(t, steps, 4)
	for i, want := range []string{"first", "second", "third", "fourth"} {
		assert.Equal(t, want, steps[i].Entrypoint)
	}
	for i := 0; i < len(steps)-1; i++ {
		assert.Same(t, steps[i+1], steps[i].Next, "step %d", i)
	}
	assert.Same(t, steps[0], g.Transform.FirstStep)
	assert.Same(t, steps[3], g.Transform.LastStep)
	assert.Nil(t, g.Transform.LastStep.Next)

	assert.Nil(t, steps[0].Params)
	assert.Equal(t, `{"k":1}`, string(steps[1].Params))
	none, err := steps[0].DecodeParams()
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestExportDeduplicatesAcrossSides(t *testing.T) {
	tf, err := ir.NewTransform(
		[]ir.IOSpec{
			ir.MustIOSpec("A", "1", "sample", "id", "type"),
			ir.MustIOSpec("A", "1", "study", "id"),
		},
		[]ir.IOSpec{
			ir.MustIOSpec("A", "1", "sample", "type"),
			ir.MustIOSpec("A", "2", "sample", "type"),
		},
		[]ir.TfStepSpec{ir.IdentityStep()},
	)
	require.NoError(t, err)

	g, err := Export("dedup", tf)
	require.NoError(t, err)

	// sample@1, study@1, sample@2
	require.Len(t, g.Nodes, 3)
	// id@1, type@1, type@2; "id" is shared by sample and study.
	require.Len(t, g.Properties, 3)

	sample, study := g.Nodes[0], g.Nodes[1]
	assert.Same(t, sample.Props["id"], study.Props["id"])
	assert.Same(t, sample.Props["type"], g.Transform.InputProps["sample.type"])

	// The Transform record keys by "{Node}.{Prop}" only, so the two output
	// endpoints collapse and the later one wins.
	require.Len(t, g.Transform.OutputProps, 1)
	out := g.Transform.OutputProps["sample.type"]
	assert.Equal(t, "2", out.Version)
	assert.Same(t, g.Nodes[2].Props["type"], out)
	assert.NotSame(t, g.Transform.InputProps["sample.type"], out)
	assert.NotSame(t, g.Nodes[0], g.Nodes[2])
	assert.Equal(t, "2", g.Nodes[2].Version)
	assert.Equal(t, sample.Props["id"].ID(), study.Props["id"].ID())
	assert.NotEqual(t, g.Nodes[0].ID(), g.Nodes[2].ID())
}

func TestExportSharesPropertyAcrossSides(t *testing.T) {
	tf, err := ir.NewTransform(
		[]ir.IOSpec{ir.MustIOSpec("A", "1", "sample", "type")},
		[]ir.IOSpec{ir.MustIOSpec("A", "1", "sample", "type")},
		[]ir.TfStepSpec{ir.IdentityStep()},
	)
	require.NoError(t, err)

	g, err := Export("same", tf)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	require.Len(t, g.Properties, 1)
	assert.Same(t, g.Transform.InputProps["sample.type"], g.Transform.OutputProps["sample.type"])
}

func TestExportIsIndependentPerCall(t *testing.T) {
	tf := nameSplit(t)
	a, err := Export("a", tf)
	require.NoError(t, err)
	b, err := Export("b", tf)
	require.NoError(t, err)
	assert.NotSame(t, a.Nodes[0], b.Nodes[0])
	assert.Equal(t, a.Nodes[0].ID(), b.Nodes[0].ID())
}

func TestExportRequiresHandle(t *testing.T) {
	_, err := Export("", nameSplit(t))
	assert.Error(t, err)
}

func TestSnapshotGolden(t *testing.T) {
	tf, err := ir.NewTransform(
		[]ir.IOSpec{ir.MustIOSpec("CDS", "6.0.2", "participant", "age_at_enrollment")},
		[]ir.IOSpec{ir.MustIOSpec("CCDI", "2.1.0", "participant", "age_in_years")},
		[]ir.TfStepSpec{
			mustStep(t, "arith.days_to_years", map[string]any{"divisor": 365, "precision": 2}),
			ir.IdentityStep(),
		},
	)
	require.NoError(t, err)

	g, err := Export("age_days_to_years", tf)
	require.NoError(t, err)
	snapshot, err := g.Snapshot()
	require.NoError(t, err)

	gd := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gd.Assert(t, "age_days_to_years", snapshot)
}
