package convert

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gsa-map-porter/internal/gsa"
	"gsa-map-porter/internal/scene"
)

const townGSA = `<?xml version="1.0" encoding="utf-8"?>
<GSA>
  <ENTITIES>
    <ENTITY Name="Tree" Class="GeneralEntity" Type="Object" LinkID="10">
      <COMPONENT RefLinkID="100"/>
      <COMPONENT RefLinkID="101"/>
    </ENTITY>
    <ENTITY Name="Tree01" Class="GeneralEntity" Type="Object" LinkID="20" MasterLinkID="10">
      <COMPONENT RefLinkID="200"/>
    </ENTITY>
    <ENTITY Name="Tree02" Class="GeneralEntity" Type="Object" LinkID="21" MasterLinkID="10"/>
    <ENTITY Name="Ghost" Class="GeneralEntity" Type="Object" LinkID="22" MasterLinkID="404"/>
    <ENTITY Name="Portal" Class="GeneralEntity" Type="Telejump" LinkID="23" MasterLinkID="10">
      <COMPONENT Class="NiPortalComponent" Name="Portal" LinkID="600"/>
    </ENTITY>
  </ENTITIES>
  <COMPONENTS>
    <COMPONENT Class="NiTransformationComponent" Name="Transformation" LinkID="100">
      <PROPERTY Name="Translation" Class="Point3">1, 2, 3</PROPERTY>
      <PROPERTY Name="Rotation" Class="Matrix3">
        <ROW>1, 0, 0</ROW>
        <ROW>0, 1, 0</ROW>
        <ROW>0, 0, 1</ROW>
      </PROPERTY>
    </COMPONENT>
    <COMPONENT Class="NiSceneGraphComponent" Name="Scene Graph" LinkID="101">
      <PROPERTY Name="NIF File Path" Class="String">..\..\00_Object\tree.nif</PROPERTY>
    </COMPONENT>
    <COMPONENT Class="NiTransformationComponent" Name="Transformation" LinkID="200" MasterLinkID="100">
      <PROPERTY Name="Scale" Class="Float">2.0</PROPERTY>
    </COMPONENT>
  </COMPONENTS>
</GSA>`

type tree struct {
	src, dst, doc string
}

func writeScene(t *testing.T, body string) tree {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "Client")
	doc := filepath.Join(src, "Data", "3_World", "01_Town", "town.gsa")
	require.NoError(t, os.MkdirAll(filepath.Dir(doc), 0755))
	require.NoError(t, os.WriteFile(doc, []byte(body), 0644))
	return tree{src: src, dst: filepath.Join(root, "out"), doc: doc}
}

func (tr tree) job() Job {
	return Job{Document: tr.doc, SourceRoot: tr.src, TargetRoot: tr.dst, Format: scene.FormatJSON}
}

func TestConvert_InstancesOnly(t *testing.T) {
	tr := writeScene(t, townGSA)

	doc, rep, err := Convert(context.Background(), tr.job(), zaptest.NewLogger(t))
	require.NoError(t, err)

	names := make([]string, 0, len(doc.Entities))
	for _, e := range doc.Entities {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Tree01", "Tree02", "Portal"}, names)

	assert.Equal(t, 1, rep.Templates)
	assert.Equal(t, 4, rep.Components, "three top-level plus one inline definition")
	assert.Equal(t, 3, rep.Entities)
	assert.Equal(t, 1, rep.Dropped)
	assert.Equal(t, 1, rep.Diagnostics["template_not_found"])
	assert.Equal(t, 3, rep.PeakLive, "template Tree with its two references")
	assert.NotEmpty(t, rep.RunID)
}

func TestConvert_OverrideAndInheritance(t *testing.T) {
	tr := writeScene(t, townGSA)

	doc, _, err := Convert(context.Background(), tr.job(), nil)
	require.NoError(t, err)
	require.Len(t, doc.Entities, 3)

	t1, t2 := doc.Entities[0], doc.Entities[1]
	x1, ok := t1.FindClass("NiTransformationComponent")
	require.True(t, ok)
	assert.Equal(t, "200", x1.LinkID)
	assert.Equal(t, 2.0, x1.Attrs["scale"])
	assert.Equal(t, []float64{1, 2, 3}, x1.Attrs["translation"])

	x2, ok := t2.FindClass("NiTransformationComponent")
	require.True(t, ok)
	assert.Equal(t, "100", x2.LinkID)
	assert.Equal(t, 1.0, x2.Attrs["scale"])

	sg, ok := t1.FindClass("NiSceneGraphComponent")
	require.True(t, ok)
	assert.Equal(t, "/Game/00_Object/tree", sg.Attrs["unreal_path"])
	assert.Equal(t, "10", t1.TemplateID)
	assert.Equal(t, "20", t1.InstanceID)
}

func TestConvert_ReportsUnhandledClasses(t *testing.T) {
	tr := writeScene(t, townGSA)

	_, rep, err := Convert(context.Background(), tr.job(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"NiPortalComponent::Portal"}, rep.Unhandled)
}

const nestedGSA = `<GSA>
  <ENTITY Name="Tree" Class="GeneralEntity" Type="Object" LinkID="10">
    <COMPONENT RefLinkID="100"/>
    <COMPONENT RefLinkID="101"/>
  </ENTITY>
  <ENTITY Name="Group" Class="GeneralEntity" Type="Object" LinkID="30" MasterLinkID="10">
    <ENTITY Name="Child" Class="GeneralEntity" Type="Object" LinkID="31" MasterLinkID="10"/>
  </ENTITY>
  <ENTITY Name="Holder" Class="GeneralEntity" Type="Light" LinkID="40" MasterLinkID="10">
    <COMPONENTS>
      <COMPONENT Class="NiLightComponent" Name="Light" LinkID="102">
        <PROPERTY Name="Light Type" Class="String">Point</PROPERTY>
      </COMPONENT>
    </COMPONENTS>
    <COMPONENT RefLinkID="102"/>
  </ENTITY>
  <COMPONENT Class="NiTransformationComponent" Name="Transformation" LinkID="100">
    <PROPERTY Name="Translation" Class="Point3">1, 2, 3</PROPERTY>
  </COMPONENT>
  <COMPONENT Class="NiSceneGraphComponent" Name="Scene Graph" LinkID="101">
    <PROPERTY Name="NIF File Path" Class="String">..\..\00_Object\tree.nif</PROPERTY>
  </COMPONENT>
</GSA>`

func TestConvert_NestedEntitiesAndWrappedDefinitions(t *testing.T) {
	tr := writeScene(t, nestedGSA)

	doc, rep, err := Convert(context.Background(), tr.job(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(doc.Entities))
	for _, e := range doc.Entities {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Child", "Group", "Holder"}, names, "inner entities close first")
	assert.Zero(t, rep.Diagnostics["component_not_found"])
	assert.Zero(t, rep.Dropped)

	holder := doc.Entities[2]
	require.Len(t, holder.Components, 3)
	light, ok := holder.FindClass("NiLightComponent")
	require.True(t, ok)
	assert.Equal(t, "Point", light.Attrs["light_type"])
}

func TestRun_NonFiniteAttributesAreDropped(t *testing.T) {
	tr := writeScene(t, `<GSA>
  <ENTITY Name="Lamp" Class="GeneralEntity" Type="Light" LinkID="10">
    <COMPONENT RefLinkID="100"/>
    <COMPONENT RefLinkID="102"/>
  </ENTITY>
  <ENTITY Name="Lamp01" Class="GeneralEntity" Type="Light" LinkID="20" MasterLinkID="10"/>
  <ENTITY Name="Lamp02" Class="GeneralEntity" Type="Light" LinkID="21" MasterLinkID="10"/>
  <COMPONENT Class="NiTransformationComponent" Name="Transformation" LinkID="100">
    <PROPERTY Name="Translation" Class="Point3">1, Inf, 3</PROPERTY>
    <PROPERTY Name="Scale" Class="Float">2</PROPERTY>
  </COMPONENT>
  <COMPONENT Class="NiLightComponent" Name="Light" LinkID="102">
    <PROPERTY Name="Dimmer" Class="Float">NaN</PROPERTY>
    <PROPERTY Name="Diffuse Color" Class="Color (RGB)">1, -Infinity, 0</PROPERTY>
    <PROPERTY Name="Light Type" Class="String">Point</PROPERTY>
  </COMPONENT>
</GSA>`)

	rep, err := Run(context.Background(), tr.job(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Entities)
	assert.Equal(t, 3, rep.Diagnostics["attribute_parse"])

	doc, err := scene.Load(rep.Output)
	require.NoError(t, err)
	require.Len(t, doc.Entities, 2)

	xf, ok := doc.Entities[0].FindClass("NiTransformationComponent")
	require.True(t, ok)
	assert.False(t, xf.Has("translation"))
	assert.Equal(t, 2.0, xf.Attrs["scale"])

	light, ok := doc.Entities[0].FindClass("NiLightComponent")
	require.True(t, ok)
	assert.False(t, light.Has("dimmer"))
	assert.False(t, light.Has("diffuse_color"))
	assert.Equal(t, "Point", light.Attrs["light_type"])
}

func TestConvert_AssetPathIgnoresWorkingDirectory(t *testing.T) {
	work := filepath.Join(t.TempDir(), "Data", "work")
	doc := filepath.Join("Client", "Data", "3_World", "01_Town", "town.gsa")
	require.NoError(t, os.MkdirAll(filepath.Join(work, filepath.Dir(doc)), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(work, doc), []byte(townGSA), 0644))
	t.Chdir(work)

	job := Job{Document: doc, SourceRoot: "Client", TargetRoot: "out", Format: scene.FormatJSON}
	out, _, err := Convert(context.Background(), job, nil)
	require.NoError(t, err)
	require.NotEmpty(t, out.Entities)

	sg, ok := out.Entities[0].FindClass("NiSceneGraphComponent")
	require.True(t, ok)
	assert.Equal(t, "/Game/00_Object/tree", sg.Attrs["unreal_path"])
}

func TestRun_WritesMirroredOutput(t *testing.T) {
	tr := writeScene(t, townGSA)

	rep, err := Run(context.Background(), tr.job(), nil)
	require.NoError(t, err)

	want := filepath.Join(tr.dst, "Data", "3_World", "01_Town", "town.json")
	assert.Equal(t, want, rep.Output)

	doc, err := scene.Load(want)
	require.NoError(t, err)
	assert.Len(t, doc.Entities, 3)
}

func TestRun_Idempotent(t *testing.T) {
	tr := writeScene(t, townGSA)

	rep, err := Run(context.Background(), tr.job(), nil)
	require.NoError(t, err)
	first, err := os.ReadFile(rep.Output)
	require.NoError(t, err)

	rep, err = Run(context.Background(), tr.job(), nil)
	require.NoError(t, err)
	second, err := os.ReadFile(rep.Output)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestRun_YAMLOutput(t *testing.T) {
	tr := writeScene(t, townGSA)
	job := tr.job()
	job.Format = scene.FormatYAML

	rep, err := Run(context.Background(), job, nil)
	require.NoError(t, err)
	assert.Equal(t, ".yaml", filepath.Ext(rep.Output))
	assert.FileExists(t, rep.Output)
}

func TestRun_InputNotFound(t *testing.T) {
	tr := writeScene(t, townGSA)
	job := tr.job()
	job.Document = filepath.Join(tr.src, "missing.gsa")

	_, err := Run(context.Background(), job, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputNotFound)
	assert.NoDirExists(t, tr.dst)
}

func TestRun_MalformedDocumentWritesNothing(t *testing.T) {
	tr := writeScene(t, `<GSA><ENTITIES><ENTITY Name="A" LinkID="1">`)

	_, err := Run(context.Background(), tr.job(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	var syn *xml.SyntaxError
	assert.ErrorAs(t, err, &syn)
	assert.NoDirExists(t, tr.dst)
}

func TestRun_StrictDuplicateLinkID(t *testing.T) {
	tr := writeScene(t, `<GSA>
  <COMPONENT Class="NiGeneralComponent" Name="A" LinkID="1"/>
  <COMPONENT Class="NiGeneralComponent" Name="B" LinkID="1"/>
</GSA>`)
	job := tr.job()
	job.Strict = true

	_, err := Run(context.Background(), job, nil)
	assert.ErrorIs(t, err, gsa.ErrDuplicateLinkID)

	job.Strict = false
	_, err = Run(context.Background(), job, nil)
	assert.NoError(t, err)
}

func TestConvert_Cancelled(t *testing.T) {
	tr := writeScene(t, townGSA)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Convert(ctx, tr.job(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputPath(t *testing.T) {
	got, err := OutputPath("/src/Data/3_World/01_Town/town.gsa", "/src", "/dst", ".json")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/dst/Data/3_World/01_Town/town.json"), got)

	_, err = OutputPath("/elsewhere/town.gsa", "/src", "/dst", ".json")
	assert.ErrorIs(t, err, ErrOutsideSourceRoot)
}
