package opcount

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// RootComponent is the name every mapping path starts with
const RootComponent = "system"

// Attribute is one key/value pair of a component
type Attribute struct {
	Key   string
	Value interface{}
}

// Attributes keep their insertion order when encoded as a YAML mapping
type Attributes []Attribute

// MarshalYAML encodes the pairs as a mapping node in order
func (a Attributes) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, attr := range a {
		var key, value yaml.Node
		if err := key.Encode(attr.Key); err != nil {
			return nil, err
		}
		if err := value.Encode(attr.Value); err != nil {
			return nil, fmt.Errorf("attribute %s: %w", attr.Key, err)
		}
		node.Content = append(node.Content, &key, &value)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping node without losing key order
func (a *Attributes) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("attributes must be a mapping, got line %d", node.Line)
	}
	out := make(Attributes, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var attr Attribute
		if err := node.Content[i].Decode(&attr.Key); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&attr.Value); err != nil {
			return err
		}
		out = append(out, attr)
	}
	*a = out
	return nil
}

// Get returns the value stored under key
func (a Attributes) Get(key string) (interface{}, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return nil, false
}

// SystemAttributes describe the whole system and are inherited by every component
type SystemAttributes struct {
	Technology string
	DataWidth  int
	DeviceType string
	ClockMHz   int
}

// Validate rejects attributes the energy estimator cannot use
func (s SystemAttributes) Validate() error {
	if s.Technology == "" {
		return fmt.Errorf("technology is required")
	}
	if s.DataWidth <= 0 {
		return fmt.Errorf("datawidth must be positive, got %d", s.DataWidth)
	}
	if s.DeviceType == "" {
		return fmt.Errorf("device_type is required")
	}
	if s.ClockMHz <= 0 {
		return fmt.Errorf("clock_mhz must be positive, got %d", s.ClockMHz)
	}
	return nil
}

func (s SystemAttributes) attributes() Attributes {
	return Attributes{
		{Key: "technology", Value: s.Technology},
		{Key: "datawidth", Value: s.DataWidth},
		{Key: "device_type", Value: s.DeviceType},
		{Key: "clockrate", Value: s.ClockMHz},
	}
}

// ArchDocument is the top-level architecture file
type ArchDocument struct {
	Architecture ArchSection `yaml:"architecture"`
}

// ArchSection holds the versioned component tree
type ArchSection struct {
	Version float64 `yaml:"version"`
	Subtree []*Node `yaml:"subtree"`
}

// Node is a level of the hierarchy. Leaf components live in Local.
type Node struct {
	Name       string      `yaml:"name"`
	Attributes Attributes  `yaml:"attributes,omitempty"`
	Local      []Component `yaml:"local,omitempty"`
	Subtree    []*Node     `yaml:"subtree,omitempty"`
}

// Component is a leaf with an energy-model class
type Component struct {
	Name       string     `yaml:"name"`
	Class      string     `yaml:"class"`
	Attributes Attributes `yaml:"attributes,omitempty"`
}

func (n *Node) child(name string) *Node {
	for _, c := range n.Subtree {
		if c.Name == name {
			return c
		}
	}
	c := &Node{Name: name}
	n.Subtree = append(n.Subtree, c)
	return c
}

// Architecture builds the component tree the mappings describe. Each mapping
// path is split into its parent levels and a leaf name; levels shared between
// mappings are created once, in first-seen order.
func Architecture(sys SystemAttributes, mappings []Mapping) (*ArchDocument, error) {
	if err := sys.Validate(); err != nil {
		return nil, fmt.Errorf("invalid system attributes: %w", err)
	}

	root := &Node{Name: RootComponent, Attributes: sys.attributes()}
	for _, m := range mappings {
		names := strings.Split(m.Path, ".")
		if len(names) < 2 || names[0] != RootComponent {
			return nil, fmt.Errorf("component path %q must start with %s and name a component", m.Path, RootComponent)
		}
		if m.Class == "" {
			return nil, fmt.Errorf("component %s has no class", m.Path)
		}

		parent := root
		for _, name := range names[1 : len(names)-1] {
			if name == "" {
				return nil, fmt.Errorf("component path %q has an empty level", m.Path)
			}
			parent = parent.child(name)
		}
		leaf := names[len(names)-1]
		if leaf == "" {
			return nil, fmt.Errorf("component path %q has an empty name", m.Path)
		}
		for _, c := range parent.Local {
			if c.Name == leaf {
				return nil, fmt.Errorf("component %s is mapped twice", m.Path)
			}
		}

		var attrs Attributes
		if len(m.Constants) > 0 {
			attrs = append(attrs, m.Constants...)
		}
		parent.Local = append(parent.Local, Component{Name: leaf, Class: m.Class, Attributes: attrs})
	}

	return &ArchDocument{
		Architecture: ArchSection{
			Version: FormatVersion,
			Subtree: []*Node{root},
		},
	}, nil
}

// Marshal encodes the document as YAML with two-space indentation
func (d *ArchDocument) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode architecture: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode architecture: %w", err)
	}
	return buf.Bytes(), nil
}
