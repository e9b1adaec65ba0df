// Package specyaml reads spec files written in YAML into spec.File values.
//
// A document is a mapping with the optional keys namespace, include,
// options, enums, definitions, constants and services. Mappings are walked
// as yaml.Node values so declaration order survives parsing.
//
//	namespace: Shop
//	include: [common.spec]
//	definitions:
//	  Order:
//	    properties:
//	      id: int
//	      color: { type: Color, default: Red }
package specyaml

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"specgen/cmd/specgen/spec"
)

var (
	ErrUnknownKey = errors.New("unknown key")
	ErrShape      = errors.New("wrong value shape")
)

// Parse reads one document. name becomes the file name used in every
// breadcrumb. An empty document yields an empty file.
func Parse(name string, in []byte) (*spec.File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(in, &doc); err != nil {
		return nil, fmt.Errorf("phase=parse path=%s: %w", name, err)
	}
	if len(doc.Content) == 0 || isNull(doc.Content[0]) {
		return spec.NewFile(name, ""), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, shapeErr(name, root, "document must be a mapping")
	}

	nsNode := lookup(root, "namespace")
	ns := ""
	if nsNode != nil {
		var err error
		if ns, err = scalar(name, nsNode); err != nil {
			return nil, err
		}
	}
	f := spec.NewFile(name, ns)

	err := eachPair(root, func(key string, val *yaml.Node) error {
		switch key {
		case "namespace":
			return nil
		case "include", "includes":
			inc, err := stringList(name+":include", val)
			f.Includes = append(f.Includes, inc...)
			return err
		case "options":
			raw, err := parseOptions(name, val)
			f.RawOptions = raw
			return err
		case "enums":
			return section(name+":"+key, val, func(k string, v *yaml.Node) error { return parseEnum(f, k, v) })
		case "definitions":
			return section(name+":"+key, val, func(k string, v *yaml.Node) error { return parseDefinition(f, k, v) })
		case "constants":
			return section(name+":"+key, val, func(k string, v *yaml.Node) error { return parseConstant(f, k, v) })
		case "services":
			return section(name+":"+key, val, func(k string, v *yaml.Node) error { return parseService(f, k, v) })
		default:
			return unknownKey(name, val, key)
		}
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func parseEnum(f *spec.File, name string, n *yaml.Node) error {
	path := f.Name + ":" + name
	var (
		desc   string
		flags  bool
		values *yaml.Node
	)
	switch {
	case n.Kind == yaml.SequenceNode:
		values = n
	case n.Kind == yaml.MappingNode && lookup(n, "values") != nil:
		err := eachPair(n, func(key string, val *yaml.Node) (err error) {
			switch key {
			case "description":
				desc, err = scalar(path, val)
			case "flags":
				flags, err = boolean(path, val)
			case "values":
				values = val
			default:
				err = unknownKey(path, val, key)
			}
			return err
		})
		if err != nil {
			return err
		}
	case n.Kind == yaml.MappingNode:
		values = n
	default:
		return shapeErr(path, n, "enum must be a mapping or a list of labels")
	}

	e, err := f.AddEnum(name, desc, flags)
	if err != nil {
		return err
	}
	switch values.Kind {
	case yaml.SequenceNode:
		if flags && len(values.Content) > maxFlagLabels {
			return shapeErr(path, values, fmt.Sprintf("flags enum has %d labels, at most %d fit in 64 bits", len(values.Content), maxFlagLabels))
		}
		for i, item := range values.Content {
			label, err := scalar(path, item)
			if err != nil {
				return err
			}
			v := int64(i)
			if flags {
				v = int64(1) << i
			}
			if err := e.AddValue(label, v); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		return eachPair(values, func(label string, val *yaml.Node) error {
			s, err := scalar(path+":"+label, val)
			if err != nil {
				return err
			}
			v, err := strconv.ParseInt(s, 0, 64)
			if err != nil {
				return shapeErr(path+":"+label, val, "enum value must be an integer")
			}
			return e.AddValue(label, v)
		})
	default:
		return shapeErr(path, values, "enum values must be a mapping or a list")
	}
	return nil
}

func parseDefinition(f *spec.File, name string, n *yaml.Node) error {
	path := f.Name + ":" + name
	if !isNull(n) && n.Kind != yaml.MappingNode {
		return shapeErr(path, n, "definition must be a mapping")
	}
	var (
		desc  string
		raw   spec.RawOptions
		props *yaml.Node
	)
	err := eachPair(n, func(key string, val *yaml.Node) (err error) {
		switch key {
		case "description":
			desc, err = scalar(path, val)
		case "options":
			raw, err = parseOptions(path, val)
		case "properties":
			props = val
		default:
			err = unknownKey(path, val, key)
		}
		return err
	})
	if err != nil {
		return err
	}

	d, err := f.AddDefinition(name, desc)
	if err != nil {
		return err
	}
	d.RawOptions = raw
	if props == nil {
		return nil
	}
	return section(path+":properties", props, func(pname string, val *yaml.Node) error {
		return parseProperty(d, pname, val)
	})
}

// parseProperty accepts the short form "name: type" and the full mapping with
// type, description, default and options.
func parseProperty(d *spec.Definition, name string, n *yaml.Node) error {
	path := d.FullName() + ":" + name
	if n.Kind == yaml.ScalarNode {
		_, err := d.AddProperty(name, "", n.Value, nil)
		return err
	}
	if n.Kind != yaml.MappingNode {
		return shapeErr(path, n, "property must be a type name or a mapping")
	}
	var (
		typeRef, desc string
		value         *spec.Value
		raw           spec.RawOptions
	)
	err := eachPair(n, func(key string, val *yaml.Node) (err error) {
		switch key {
		case "type":
			typeRef, err = scalar(path, val)
		case "description":
			desc, err = scalar(path, val)
		case "default":
			value, err = parseValue(path, val)
		case "options":
			raw, err = parseOptions(path, val)
		default:
			err = unknownKey(path, val, key)
		}
		return err
	})
	if err != nil {
		return err
	}
	prop, err := d.AddProperty(name, desc, typeRef, value)
	if err != nil {
		return err
	}
	prop.RawOptions = raw
	return nil
}

func parseConstant(f *spec.File, name string, n *yaml.Node) error {
	path := f.Name + ":" + name
	if n.Kind != yaml.MappingNode {
		return shapeErr(path, n, "constant must be a mapping with type and value")
	}
	var (
		typeRef, desc string
		value         *spec.Value
	)
	err := eachPair(n, func(key string, val *yaml.Node) (err error) {
		switch key {
		case "type":
			typeRef, err = scalar(path, val)
		case "description":
			desc, err = scalar(path, val)
		case "value":
			value, err = parseValue(path, val)
		default:
			err = unknownKey(path, val, key)
		}
		return err
	})
	if err != nil {
		return err
	}
	if typeRef == "" {
		return fmt.Errorf("phase=parse path=%s: %w: type", path, spec.ErrMissingToken)
	}
	if value == nil {
		return fmt.Errorf("phase=parse path=%s: %w: value", path, spec.ErrMissingToken)
	}
	_, err = f.AddConstant(name, desc, typeRef, value)
	return err
}

func parseService(f *spec.File, name string, n *yaml.Node) error {
	path := f.Name + ":" + name
	if !isNull(n) && n.Kind != yaml.MappingNode {
		return shapeErr(path, n, "service must be a mapping")
	}
	var (
		desc      string
		raw       spec.RawOptions
		endpoints *yaml.Node
	)
	err := eachPair(n, func(key string, val *yaml.Node) (err error) {
		switch key {
		case "description":
			desc, err = scalar(path, val)
		case "options":
			raw, err = parseOptions(path, val)
		case "endpoints":
			endpoints = val
		default:
			err = unknownKey(path, val, key)
		}
		return err
	})
	if err != nil {
		return err
	}
	s, err := f.AddService(name, desc)
	if err != nil {
		return err
	}
	s.RawOptions = raw
	if endpoints == nil {
		return nil
	}
	return section(path+":endpoints", endpoints, func(ename string, val *yaml.Node) error {
		return parseEndpoint(s, ename, val)
	})
}

func parseEndpoint(s *spec.Service, name string, n *yaml.Node) error {
	path := s.FullName() + ":" + name
	if n.Kind != yaml.MappingNode {
		return shapeErr(path, n, "endpoint must be a mapping")
	}
	var method, route, req, resp, desc string
	err := eachPair(n, func(key string, val *yaml.Node) (err error) {
		switch key {
		case "method":
			method, err = scalar(path, val)
		case "path":
			route, err = scalar(path, val)
		case "requestType":
			req, err = scalar(path, val)
		case "responseType":
			resp, err = scalar(path, val)
		case "description":
			desc, err = scalar(path, val)
		default:
			err = unknownKey(path, val, key)
		}
		return err
	})
	if err != nil {
		return err
	}
	if route == "" {
		return fmt.Errorf("phase=parse path=%s: %w: path", path, spec.ErrMissingToken)
	}
	_, err = s.AddEndpoint(name, method, route, req, resp, desc)
	return err
}

// parseOptions reads a block keyed by backend name. Values stay raw; each
// backend decodes its own block.
func parseOptions(path string, n *yaml.Node) (spec.RawOptions, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, shapeErr(path, n, "options must be a mapping keyed by backend")
	}
	out := spec.RawOptions{}
	err := eachPair(n, func(backend string, val *yaml.Node) error {
		if isNull(val) {
			out[backend] = map[string]any{}
			return nil
		}
		if val.Kind != yaml.MappingNode {
			return shapeErr(path+":options:"+backend, val, "backend options must be a mapping")
		}
		raw, err := rawValue(val)
		if err != nil {
			return fmt.Errorf("phase=parse path=%s:options:%s: %w", path, backend, err)
		}
		out[backend] = raw.(map[string]any)
		return nil
	})
	return out, err
}

func parseValue(path string, n *yaml.Node) (*spec.Value, error) {
	raw, err := rawValue(n)
	if err != nil {
		return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
	}
	v, err := spec.NewValue(raw)
	if err != nil {
		return nil, fmt.Errorf("phase=parse path=%s: %w", path, err)
	}
	return v, nil
}

func scalar(path string, n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", shapeErr(path, n, "expected a scalar")
	}
	return n.Value, nil
}

func boolean(path string, n *yaml.Node) (bool, error) {
	var b bool
	if n.Kind != yaml.ScalarNode || n.Decode(&b) != nil {
		return false, shapeErr(path, n, "expected true or false")
	}
	return b, nil
}

// stringList accepts a single scalar or a sequence of scalars.
func stringList(path string, n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			s, err := scalar(path, item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, shapeErr(path, n, "expected a string or a list of strings")
}

// rawValue converts a node into the nil/bool/int64/float64/string/[]any/
// map[string]any tree spec.NewValue accepts. Scalars are typed by their
// resolved YAML tag, so timestamps stay strings.
func rawValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return rawValue(n.Alias)
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool":
			var b bool
			err := n.Decode(&b)
			return b, err
		case "!!int":
			var i int64
			err := n.Decode(&i)
			return i, err
		case "!!float":
			var f float64
			err := n.Decode(&f)
			return f, err
		default:
			return n.Value, nil
		}
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := rawValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		err := eachPair(n, func(key string, val *yaml.Node) error {
			v, err := rawValue(val)
			out[key] = v
			return err
		})
		return out, err
	}
	return nil, fmt.Errorf("%w: yaml kind %d", ErrShape, n.Kind)
}

// eachPair walks a mapping in source order. A null node is an empty
// mapping.
func eachPair(n *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping", ErrShape, n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// section walks a top-level mapping such as "definitions".
func section(path string, n *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	if !isNull(n) && n.Kind != yaml.MappingNode {
		return shapeErr(path, n, "expected a mapping keyed by name")
	}
	return eachPair(n, fn)
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// maxFlagLabels is the number of bits a list-form flags enum can number
// without reaching the int64 sign bit.
const maxFlagLabels = 63

func shapeErr(path string, n *yaml.Node, msg string) error {
	return fmt.Errorf("phase=parse path=%s: %w: line %d: %s", path, ErrShape, n.Line, msg)
}

func unknownKey(path string, n *yaml.Node, key string) error {
	return fmt.Errorf("phase=parse path=%s: %w: line %d: %q", path, ErrUnknownKey, n.Line, key)
}
