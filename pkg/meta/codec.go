package meta

import (
	"bytes"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/json"
)

// MarshalJSON encodes the tree as a JSON object in insertion order
func (m *Meta) MarshalJSON() ([]byte, error) {
	w := json.NewObjectWriter()
	for _, item := range m.Items() {
		var err error
		if item.IsNode() {
			var raw []byte
			raw, err = item.Meta.MarshalJSON()
			if err == nil {
				err = w.WriteRawField(item.Key, raw)
			}
		} else {
			err = w.WriteField(item.Key, item.Value)
		}
		if err != nil {
			w.Bytes()
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order. Numbers and
// booleans become their literal text; null members are skipped.
func (m *Meta) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to read metadata")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New(errors.ErrorTypeData, "metadata must be a JSON object")
	}

	decoded, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

func decodeObject(dec *json.Decoder) (*Meta, error) {
	m := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read metadata key")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "unexpected metadata token %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read metadata value").
				WithDetail("key", key)
		}
		switch v := tok.(type) {
		case json.Delim:
			if v != '{' {
				return nil, errors.Newf(errors.ErrorTypeData, "metadata key %q holds an array", key)
			}
			child, err := decodeObject(dec)
			if err != nil {
				return nil, err
			}
			m.put(key, &entry{child: child})
		case string:
			m.put(key, &entry{value: v})
		case bool:
			m.put(key, &entry{value: strconv.FormatBool(v)})
		case float64:
			m.put(key, &entry{value: strconv.FormatFloat(v, 'g', -1, 64)})
		case nil:
		default:
			// json.Number
			if s, ok := v.(interface{ String() string }); ok {
				m.put(key, &entry{value: s.String()})
				continue
			}
			return nil, errors.Newf(errors.ErrorTypeData, "unsupported metadata value %T", v).
				WithDetail("key", key)
		}
	}

	// closing '}'
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "unterminated metadata object")
	}
	return m, nil
}

// MarshalYAML encodes the tree as an ordered YAML mapping
func (m *Meta) MarshalYAML() (interface{}, error) {
	return m.yamlNode(), nil
}

func (m *Meta) yamlNode() *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, item := range m.Items() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item.Key}
		var val *yaml.Node
		if item.IsNode() {
			val = item.Meta.yamlNode()
		} else {
			val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item.Value}
		}
		node.Content = append(node.Content, key, val)
	}
	return node
}

// UnmarshalYAML decodes an ordered YAML mapping. Scalars keep their literal
// text.
func (m *Meta) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := fromYAML(node)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

func fromYAML(node *yaml.Node) (*Meta, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	m := New()
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return m, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.Newf(errors.ErrorTypeData, "metadata must be a mapping, line %d", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		switch val.Kind {
		case yaml.MappingNode:
			child, err := fromYAML(val)
			if err != nil {
				return nil, err
			}
			m.put(key, &entry{child: child})
		case yaml.ScalarNode:
			if val.Tag == "!!null" {
				continue
			}
			m.put(key, &entry{value: val.Value})
		default:
			return nil, errors.Newf(errors.ErrorTypeData, "unsupported metadata value for %q, line %d", key, val.Line)
		}
	}
	return m, nil
}
