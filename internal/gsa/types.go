package gsa

import (
	"encoding/xml"
	"strings"
)

// Tag names the stream cares about.
const (
	TagEntity    = "ENTITY"
	TagComponent = "COMPONENT"
)

// Attribute names used for linking.
const (
	AttrClass        = "Class"
	AttrName         = "Name"
	AttrType         = "Type"
	AttrLinkID       = "LinkID"
	AttrMasterLinkID = "MasterLinkID"
	AttrRefLinkID    = "RefLinkID"
)

// Element is one ENTITY or COMPONENT subtree from a GSA file.
// Children holds every nested element other than PROPERTY, in document order.
type Element struct {
	XMLName    xml.Name
	Attrs      []xml.Attr `xml:",any,attr"`
	Properties []Property `xml:"PROPERTY"`
	Children   []Element  `xml:",any"`
}

// Property is a PROPERTY child. Matrix values carry ROW children,
// pointer lists carry ITEM children.
type Property struct {
	Name  string `xml:"Name,attr"`
	Class string `xml:"Class,attr"`
	Text  string `xml:",chardata"`
	Rows  []Row  `xml:"ROW"`
	Items []Item `xml:"ITEM"`
}

// Row is one row of a matrix-valued property.
type Row struct {
	Text string `xml:",chardata"`
}

// Item is one entry of a list-valued property.
type Item struct {
	RefLinkID string `xml:"RefLinkID,attr"`
}

// Tag returns the element's tag name.
func (e *Element) Tag() string {
	return e.XMLName.Local
}

// Attr looks up an attribute by local name. ok reports presence,
// so an empty MasterLinkID is distinguishable from a missing one.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Get returns the attribute value or "".
func (e *Element) Get(name string) string {
	v, _ := e.Attr(name)
	return v
}

func (e *Element) Class() string  { return e.Get(AttrClass) }
func (e *Element) Name() string   { return e.Get(AttrName) }
func (e *Element) LinkID() string { return e.Get(AttrLinkID) }

// MasterLinkID returns the master link and whether the attribute exists.
func (e *Element) MasterLinkID() (string, bool) {
	return e.Attr(AttrMasterLinkID)
}

// IsTemplate reports whether an ENTITY has no master-entity link.
func (e *Element) IsTemplate() bool {
	_, ok := e.Attr(AttrMasterLinkID)
	return !ok
}

// RefID returns the link ID a child COMPONENT points at: its RefLinkID,
// or its own LinkID for inline definitions.
func (e *Element) RefID() string {
	if ref := strings.TrimSpace(e.Get(AttrRefLinkID)); ref != "" {
		return ref
	}
	return strings.TrimSpace(e.LinkID())
}

// Components returns the direct COMPONENT children. Components under a
// wrapper element are not part of this element.
func (e *Element) Components() []*Element {
	var out []*Element
	for i := range e.Children {
		if e.Children[i].Tag() == TagComponent {
			out = append(out, &e.Children[i])
		}
	}
	return out
}

// Property returns the first property with the given name.
func (e *Element) Property(name string) (*Property, bool) {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return &e.Properties[i], true
		}
	}
	return nil, false
}

// Value returns the trimmed text payload.
func (p *Property) Value() string {
	return strings.TrimSpace(p.Text)
}
