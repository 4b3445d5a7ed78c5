// Package knowledge loads the school knowledge document and flattens it into
// breadcrumb-annotated text fragments.
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxDecodeDepth bounds container nesting while decoding.
const MaxDecodeDepth = 512

type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

// Node is an ordered document tree. Mapping fields keep document order.
type Node struct {
	Kind   Kind
	Value  string
	Items  []*Node
	Fields []Field
}

type Field struct {
	Key   string
	Value *Node
}

func Scalar(v string) *Node { return &Node{Kind: KindScalar, Value: v} }

func Sequence(items ...*Node) *Node { return &Node{Kind: KindSequence, Items: items} }

func Mapping(fields ...Field) *Node { return &Node{Kind: KindMapping, Fields: fields} }

// Get returns the value of a mapping field, or nil.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

var errTooDeep = errors.New("knowledge: document nesting exceeds limit")

// DecodeJSON parses a JSON document into an ordered Node tree.
func DecodeJSON(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	root, err := decodeJSONValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, errors.New("knowledge: unexpected data after top-level value")
		}
		return nil, err
	}
	return root, nil
}

func decodeJSONValue(dec *json.Decoder, depth int) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if depth >= MaxDecodeDepth {
			return nil, errTooDeep
		}
		switch t {
		case '{':
			n := &Node{Kind: KindMapping}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("knowledge: object key is %T", keyTok)
				}
				val, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				n.Fields = append(n.Fields, Field{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{Kind: KindSequence}
			for dec.More() {
				val, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		default:
			return nil, fmt.Errorf("knowledge: unexpected delimiter %q", t)
		}
	case nil:
		return &Node{Kind: KindNull}, nil
	case string:
		return Scalar(t), nil
	case json.Number:
		return Scalar(t.String()), nil
	case bool:
		if t {
			return Scalar("true"), nil
		}
		return Scalar("false"), nil
	default:
		return nil, fmt.Errorf("knowledge: unexpected token %T", tok)
	}
}

// DecodeYAML parses a YAML document into an ordered Node tree.
func DecodeYAML(r io.Reader) (*Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Node{Kind: KindNull}, nil
		}
		return nil, err
	}
	return fromYAML(&doc, 0)
}

func fromYAML(y *yaml.Node, depth int) (*Node, error) {
	if y == nil {
		return &Node{Kind: KindNull}, nil
	}
	if depth >= MaxDecodeDepth {
		return nil, errTooDeep
	}
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return &Node{Kind: KindNull}, nil
		}
		return fromYAML(y.Content[0], depth)
	case yaml.AliasNode:
		return fromYAML(y.Alias, depth+1)
	case yaml.ScalarNode:
		if y.Tag == "!!null" {
			return &Node{Kind: KindNull}, nil
		}
		return Scalar(y.Value), nil
	case yaml.SequenceNode:
		n := &Node{Kind: KindSequence}
		for _, c := range y.Content {
			item, err := fromYAML(c, depth+1)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, item)
		}
		return n, nil
	case yaml.MappingNode:
		n := &Node{Kind: KindMapping}
		for i := 0; i+1 < len(y.Content); i += 2 {
			val, err := fromYAML(y.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			n.Fields = append(n.Fields, Field{Key: y.Content[i].Value, Value: val})
		}
		return n, nil
	default:
		return nil, fmt.Errorf("knowledge: unsupported yaml node kind %d", y.Kind)
	}
}

// Decode picks the decoder from the source name's extension.
func Decode(name string, r io.Reader) (*Node, error) {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return DecodeYAML(r)
	}
	return DecodeJSON(r)
}
