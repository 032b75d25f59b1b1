package parser

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// document is one declaration file
type document struct {
	Package      string           `yaml:"package"`
	Imports      []string         `yaml:"imports"`
	Declarations []declarationDoc `yaml:"declarations"`
}

// declarationDoc is a class-like declaration as written in a document
type declarationDoc struct {
	Name         string           `yaml:"name"`
	Kind         string           `yaml:"kind"`
	Visibility   string           `yaml:"visibility"`
	Abstract     bool             `yaml:"abstract"`
	Inner        bool             `yaml:"inner"`
	Extends      string           `yaml:"extends"`
	TypeParams   []typeParamDoc   `yaml:"type_params"`
	Annotations  []string         `yaml:"annotations"`
	Retention    string           `yaml:"retention"`
	AliasOf      string           `yaml:"alias_of"`
	Constructors []constructorDoc `yaml:"constructors"`
	Fields       []fieldDoc       `yaml:"fields"`
	Methods      []methodDoc      `yaml:"methods"`
	Nested       []declarationDoc `yaml:"nested"`

	Line int `yaml:"-"`
}

// UnmarshalYAML records the line of the declaration
func (d *declarationDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain declarationDoc
	if err := node.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Line = node.Line
	return nil
}

// typeParamDoc accepts either `T` or `{name: T, bounds: [...]}`
type typeParamDoc struct {
	Name   string   `yaml:"name"`
	Bounds []string `yaml:"bounds"`
}

// UnmarshalYAML accepts the scalar shorthand
func (p *typeParamDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Name = node.Value
		return nil
	}
	type plain typeParamDoc
	return node.Decode((*plain)(p))
}

type paramDoc struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Annotations []string `yaml:"annotations"`
}

type constructorDoc struct {
	Visibility  string     `yaml:"visibility"`
	Annotations []string   `yaml:"annotations"`
	Params      []paramDoc `yaml:"params"`
	Throws      []string   `yaml:"throws"`

	Line int `yaml:"-"`
}

// UnmarshalYAML records the line of the constructor
func (c *constructorDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain constructorDoc
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	c.Line = node.Line
	return nil
}

type fieldDoc struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Visibility  string   `yaml:"visibility"`
	Annotations []string `yaml:"annotations"`

	Line int `yaml:"-"`
}

// UnmarshalYAML records the line of the field
func (f *fieldDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain fieldDoc
	if err := node.Decode((*plain)(f)); err != nil {
		return err
	}
	f.Line = node.Line
	return nil
}

type methodDoc struct {
	Name        string     `yaml:"name"`
	Visibility  string     `yaml:"visibility"`
	Annotations []string   `yaml:"annotations"`
	Params      []paramDoc `yaml:"params"`
	Throws      []string   `yaml:"throws"`

	Line int `yaml:"-"`
}

// UnmarshalYAML records the line of the method
func (m *methodDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain methodDoc
	if err := node.Decode((*plain)(m)); err != nil {
		return err
	}
	m.Line = node.Line
	return nil
}

// decodeDocuments decodes every YAML document of data
func decodeDocuments(data []byte) ([]document, error) {
	var root yaml.Node
	var docs []document

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for {
		root = yaml.Node{}
		if err := decoder.Decode(&root); err != nil {
			if err == io.EOF {
				return docs, nil
			}
			return nil, err
		}
		var doc document
		if err := root.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.Package == "" && len(doc.Declarations) == 0 {
			continue
		}
		if doc.Package == "" {
			return nil, fmt.Errorf("line %d: document has declarations but no package", root.Line)
		}
		docs = append(docs, doc)
	}
}
