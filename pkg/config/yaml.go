package config

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ParseYAML reads a YAML (or JSON) document whose top level maps section names
// to mappings. Nested mappings are flattened with '.' and sequences become
// comma separated values; document order is preserved.
func ParseYAML(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Err: errors.Wrap(ErrSyntax, err.Error())}
	}
	f := NewFile()
	if doc.Kind == 0 {
		return f, nil
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Line: root.Line, Err: errors.Wrap(ErrSyntax, "top level must be a mapping of sections")}
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i], root.Content[i+1]
		sec, err := f.AddSection(name.Value)
		if err != nil {
			return nil, &ParseError{Section: name.Value, Line: name.Line, Err: err}
		}
		if body.Kind == yaml.ScalarNode && body.Tag == "!!null" {
			continue
		}
		if body.Kind != yaml.MappingNode {
			return nil, &ParseError{Section: name.Value, Line: body.Line, Err: errors.Wrap(ErrSyntax, "section must be a mapping")}
		}
		if err := flattenYAML(sec, "", body); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func flattenYAML(sec *Section, prefix string, node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		key := k.Value
		if prefix != "" {
			key = prefix + "." + key
		}
		if v.Kind == yaml.AliasNode {
			v = v.Alias
		}
		if v.Kind == yaml.MappingNode {
			if err := flattenYAML(sec, key, v); err != nil {
				return err
			}
			continue
		}
		value, err := yamlScalar(v)
		if err != nil {
			return &ParseError{Section: sec.Name, Key: key, Line: v.Line, Err: err}
		}
		if err := sec.Set(key, value); err != nil {
			return &ParseError{Section: sec.Name, Key: key, Line: k.Line, Err: err}
		}
	}
	return nil
}

func yamlScalar(node *yaml.Node) (string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return "", nil
		}
		return node.Value, nil
	case yaml.SequenceNode:
		parts := make([]string, len(node.Content))
		for i, item := range node.Content {
			s, err := yamlScalar(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ", "), nil
	case yaml.AliasNode:
		return yamlScalar(node.Alias)
	default:
		return "", errors.Wrapf(ErrUnsupportedValue, "yaml node kind %d", node.Kind)
	}
}
