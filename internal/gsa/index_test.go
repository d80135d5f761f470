package gsa

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/korean"
)

const sampleGSA = `<?xml version="1.0" encoding="utf-8"?>
<GSA Version="1">
  <ENTITIES>
    <ENTITY Name="Tree" Class="GeneralEntity" Type="Object" LinkID="10">
      <COMPONENT RefLinkID="100"/>
      <COMPONENT RefLinkID="101"/>
    </ENTITY>
    <ENTITY Name="Tree01" Class="GeneralEntity" Type="Object" LinkID="20" MasterLinkID="10">
      <COMPONENT RefLinkID="200"/>
    </ENTITY>
    <ENTITY Name="Orphan" LinkID="21" MasterLinkID="">
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
    <COMPONENT Class="NiGeneralComponent" Name="No Link"/>
  </COMPONENTS>
</GSA>`

func TestBuildIndex_ComponentsAndTemplates(t *testing.T) {
	idx, err := BuildIndex(strings.NewReader(sampleGSA), IndexOptions{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	assert.Len(t, idx.Components, 3)
	assert.Len(t, idx.Templates, 1)

	tmpl, ok := idx.Template("10")
	require.True(t, ok)
	assert.Equal(t, "Tree", tmpl.Name())
	require.Len(t, tmpl.Components(), 2)
	assert.Equal(t, "100", tmpl.Components()[0].RefID())
	assert.Equal(t, "101", tmpl.Components()[1].RefID())

	_, ok = idx.Template("20")
	assert.False(t, ok, "instance entities must not be indexed as templates")
	_, ok = idx.Template("21")
	assert.False(t, ok, "an empty MasterLinkID still marks an instance")

	comp, ok := idx.Component("200")
	require.True(t, ok)
	master, hasMaster := comp.MasterLinkID()
	assert.True(t, hasMaster)
	assert.Equal(t, "100", master)

	assert.Equal(t, 1, idx.Stats.Skipped)
	assert.Equal(t, 4, idx.Stats.Retained)
}

func TestBuildIndex_RetainsPropertySubtree(t *testing.T) {
	idx, err := BuildIndex(strings.NewReader(sampleGSA), IndexOptions{})
	require.NoError(t, err)

	comp, ok := idx.Component("100")
	require.True(t, ok)

	rot, ok := comp.Property("Rotation")
	require.True(t, ok)
	require.Len(t, rot.Rows, 3)
	assert.Equal(t, "0, 1, 0", strings.TrimSpace(rot.Rows[1].Text))

	tr, ok := comp.Property("Translation")
	require.True(t, ok)
	assert.Equal(t, "1, 2, 3", tr.Value())
}

func TestBuildIndex_DuplicateLinkID(t *testing.T) {
	doc := `<GSA>
  <COMPONENT Class="A" Name="first" LinkID="1"/>
  <COMPONENT Class="A" Name="second" LinkID="1"/>
</GSA>`

	t.Run("later element wins", func(t *testing.T) {
		idx, err := BuildIndex(strings.NewReader(doc), IndexOptions{})
		require.NoError(t, err)
		comp, ok := idx.Component("1")
		require.True(t, ok)
		assert.Equal(t, "second", comp.Name())
		assert.Equal(t, 1, idx.Duplicates)
	})

	t.Run("strict mode rejects", func(t *testing.T) {
		_, err := BuildIndex(strings.NewReader(doc), IndexOptions{Strict: true})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateLinkID)
	})
}

func TestBuildIndex_InlineComponentDefinitions(t *testing.T) {
	doc := `<GSA>
  <ENTITY Name="Lamp" LinkID="5">
    <COMPONENT Class="NiLightComponent" Name="Light" LinkID="50">
      <PROPERTY Name="Dimmer" Class="Float">0.5</PROPERTY>
    </COMPONENT>
  </ENTITY>
</GSA>`

	idx, err := BuildIndex(strings.NewReader(doc), IndexOptions{})
	require.NoError(t, err)

	comp, ok := idx.Component("50")
	require.True(t, ok)
	assert.Equal(t, "NiLightComponent", comp.Class())

	tmpl, ok := idx.Template("5")
	require.True(t, ok)
	assert.Equal(t, "50", tmpl.Components()[0].RefID(), "inline definitions are referenced by their own LinkID")
}

func TestBuildIndex_MalformedDocument(t *testing.T) {
	_, err := BuildIndex(strings.NewReader(`<GSA><ENTITY LinkID="1"></GSA>`), IndexOptions{})
	require.Error(t, err)

	var syntaxErr *xml.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func instanceDoc(n int) string {
	var b strings.Builder
	b.WriteString(`<GSA><ENTITY Name="Tmpl" LinkID="1"><COMPONENT RefLinkID="100"/></ENTITY>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<ENTITY Name="e%d" LinkID="%d" MasterLinkID="1"><COMPONENT RefLinkID="100"/></ENTITY>`, i, i+2)
	}
	b.WriteString(`<COMPONENT Class="NiGeneralComponent" Name="Shared" LinkID="100"/></GSA>`)
	return b.String()
}

func TestBuildIndex_RetainedIndependentOfInstanceCount(t *testing.T) {
	for _, n := range []int{10, 5000} {
		idx, err := BuildIndex(strings.NewReader(instanceDoc(n)), IndexOptions{})
		require.NoError(t, err)

		// One template, one component; instances are seen and dropped.
		assert.Equal(t, 2, idx.Stats.Retained, "n=%d", n)
		assert.Equal(t, len(idx.Components)+len(idx.Templates), idx.Stats.Retained)
		assert.Equal(t, 2*(n+1)+1, idx.Stats.Decoded, "n=%d", n)
		assert.Equal(t, idx.Stats.Decoded, idx.Stats.Released)
		assert.Equal(t, 2, idx.Stats.PeakLive, "an entity and its reference, n=%d", n)
	}
}

func TestScan_ReleasesEverySubtree(t *testing.T) {
	const n = 5000

	seen := 0
	stats, err := Scan(strings.NewReader(instanceDoc(n)), []string{TagEntity}, func(el *Element) error {
		seen++
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, n+1, seen)
	assert.Equal(t, n+1, stats.Decoded)
	assert.Equal(t, 0, stats.Live())
	assert.Equal(t, 1, stats.PeakLive)
}

func TestScan_NestedMatchesChildFirst(t *testing.T) {
	doc := `<GSA>
  <ENTITY Name="Group" LinkID="30" MasterLinkID="10">
    <COMPONENT RefLinkID="100"/>
    <ENTITY Name="Child" LinkID="31" MasterLinkID="10">
      <ENTITY Name="Grandchild" LinkID="32" MasterLinkID="10"/>
    </ENTITY>
  </ENTITY>
  <ENTITY Name="Next" LinkID="33" MasterLinkID="10"/>
</GSA>`

	var names []string
	stats, err := Scan(strings.NewReader(doc), []string{TagEntity}, func(el *Element) error {
		names = append(names, el.Name())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Grandchild", "Child", "Group", "Next"}, names)
	assert.Equal(t, 3, stats.PeakLive)
}

func TestBuildIndex_WrappedInlineDefinition(t *testing.T) {
	doc := `<GSA>
  <ENTITY Name="Holder" LinkID="40">
    <COMPONENTS>
      <COMPONENT Class="NiSceneGraphComponent" Name="Scene Graph" LinkID="101"/>
    </COMPONENTS>
    <COMPONENT RefLinkID="102"/>
  </ENTITY>
  <COMPONENT Class="NiGeneralComponent" Name="Extra" LinkID="102"/>
</GSA>`

	idx, err := BuildIndex(strings.NewReader(doc), IndexOptions{Strict: true})
	require.NoError(t, err)

	comp, ok := idx.Component("101")
	require.True(t, ok)
	assert.Equal(t, "NiSceneGraphComponent", comp.Class())
	assert.Len(t, idx.Components, 2)
	assert.Equal(t, 0, idx.Stats.Skipped, "references are not definitions")

	tmpl, ok := idx.Template("40")
	require.True(t, ok)
	require.Len(t, tmpl.Components(), 1, "wrapped definitions are not direct components")
	assert.Equal(t, "102", tmpl.Components()[0].RefID())
}

func TestScan_LegacyCharset(t *testing.T) {
	name, err := korean.EUCKR.NewEncoder().String("나무")
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="euc-kr"?><GSA><ENTITY Name="`)
	buf.WriteString(name)
	buf.WriteString(`" LinkID="1"/></GSA>`)

	var got string
	_, err = Scan(&buf, []string{TagEntity}, func(el *Element) error {
		got = el.Name()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "나무", got)
}
