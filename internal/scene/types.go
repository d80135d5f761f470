package scene

import "maps"

// Keys every normalized component carries.
const (
	KeyLinkID = "link_id"
	KeyClass  = "class"
	KeyName   = "name"
)

// Component is a normalized component: the base triple plus class-specific
// attributes. Attribute values are float64, string, []float64, [][]float64
// or []string.
type Component struct {
	LinkID string
	Class  string
	Name   string
	Attrs  map[string]any
}

// Entity is one placed instance with its template resolved.
type Entity struct {
	Name       string      `json:"name" yaml:"name"`
	Class      string      `json:"class" yaml:"class"`
	Type       string      `json:"type" yaml:"type"`
	TemplateID string      `json:"template_id" yaml:"template_id"`
	InstanceID string      `json:"instance_id" yaml:"instance_id"`
	Components []Component `json:"components" yaml:"components"`
}

// Document is the converter output: instance entities in source order.
type Document struct {
	Entities []Entity `json:"entities" yaml:"entities"`
}

// NewDocument returns a document that serializes with an empty entity list
// rather than null.
func NewDocument() *Document {
	return &Document{Entities: []Entity{}}
}

// isBaseKey reports whether key is reserved for the base triple.
func isBaseKey(key string) bool {
	return key == KeyLinkID || key == KeyClass || key == KeyName
}

// Set stores an attribute. Base keys are ignored so a property can never
// rename a component.
func (c *Component) Set(key string, v any) bool {
	if isBaseKey(key) {
		return false
	}
	if c.Attrs == nil {
		c.Attrs = make(map[string]any)
	}
	c.Attrs[key] = v
	return true
}

// Get returns an attribute value.
func (c Component) Get(key string) (any, bool) {
	v, ok := c.Attrs[key]
	return v, ok
}

// Has reports whether the attribute is present.
func (c Component) Has(key string) bool {
	_, ok := c.Attrs[key]
	return ok
}

// Overlay returns base with c's triple and attributes applied on top:
// attributes c defines replace base's, the rest are inherited.
func (c Component) Overlay(base Component) Component {
	out := Component{
		LinkID: c.LinkID,
		Class:  c.Class,
		Name:   c.Name,
		Attrs:  make(map[string]any, len(base.Attrs)+len(c.Attrs)),
	}
	maps.Copy(out.Attrs, base.Attrs)
	maps.Copy(out.Attrs, c.Attrs)
	return out
}

// Float returns a numeric attribute.
func (c Component) Float(key string) (float64, bool) {
	f, ok := c.Attrs[key].(float64)
	return f, ok
}

// String returns a text attribute.
func (c Component) String(key string) (string, bool) {
	s, ok := c.Attrs[key].(string)
	return s, ok
}

// Floats returns a vector attribute.
func (c Component) Floats(key string) ([]float64, bool) {
	v, ok := c.Attrs[key].([]float64)
	return v, ok
}

// Matrix returns a matrix attribute.
func (c Component) Matrix(key string) ([][]float64, bool) {
	m, ok := c.Attrs[key].([][]float64)
	return m, ok
}

// Strings returns a reference list attribute.
func (c Component) Strings(key string) ([]string, bool) {
	s, ok := c.Attrs[key].([]string)
	return s, ok
}

// FindClass returns the first component of the given class.
func (e Entity) FindClass(class string) (Component, bool) {
	for _, c := range e.Components {
		if c.Class == class {
			return c, true
		}
	}
	return Component{}, false
}
