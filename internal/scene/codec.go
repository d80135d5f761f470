package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// attrKeys returns attribute keys in output order.
func (c Component) attrKeys() []string {
	keys := make([]string, 0, len(c.Attrs))
	for k := range c.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// MarshalJSON writes the base triple first, then attributes sorted by key,
// so identical input always yields identical bytes.
func (c Component) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')

	write := func(i int, key string, v any) error {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("scene: marshal %s: %w", key, err)
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
		return nil
	}

	if err := write(0, KeyLinkID, c.LinkID); err != nil {
		return nil, err
	}
	if err := write(1, KeyClass, c.Class); err != nil {
		return nil, err
	}
	if err := write(2, KeyName, c.Name); err != nil {
		return nil, err
	}
	for i, k := range c.attrKeys() {
		if err := write(i+3, k, c.Attrs[k]); err != nil {
			return nil, err
		}
	}

	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON restores typed attribute values from a written document.
func (c *Component) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Component{Attrs: make(map[string]any, len(raw))}
	for k, v := range raw {
		switch k {
		case KeyLinkID:
			c.LinkID = asString(v)
		case KeyClass:
			c.Class = asString(v)
		case KeyName:
			c.Name = asString(v)
		default:
			c.Attrs[k] = typed(v)
		}
	}
	return nil
}

// MarshalYAML builds a mapping node with the same key order as MarshalJSON.
func (c Component) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, v any) error {
		var val yaml.Node
		if err := val.Encode(v); err != nil {
			return fmt.Errorf("scene: marshal %s: %w", key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, &val)
		return nil
	}

	if err := add(KeyLinkID, c.LinkID); err != nil {
		return nil, err
	}
	if err := add(KeyClass, c.Class); err != nil {
		return nil, err
	}
	if err := add(KeyName, c.Name); err != nil {
		return nil, err
	}
	for _, k := range c.attrKeys() {
		if err := add(k, c.Attrs[k]); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// typed converts generic JSON values back into the attribute value types.
func typed(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	if len(list) == 0 {
		return []float64{}
	}

	switch list[0].(type) {
	case float64:
		out := make([]float64, 0, len(list))
		for _, x := range list {
			f, ok := x.(float64)
			if !ok {
				return list
			}
			out = append(out, f)
		}
		return out
	case string:
		out := make([]string, 0, len(list))
		for _, x := range list {
			s, ok := x.(string)
			if !ok {
				return list
			}
			out = append(out, s)
		}
		return out
	case []any:
		out := make([][]float64, 0, len(list))
		for _, x := range list {
			row, ok := typed(x).([]float64)
			if !ok {
				return list
			}
			out = append(out, row)
		}
		return out
	}
	return list
}
