package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awantoch/flowviz/constants"
	"gopkg.in/yaml.v3"
)

// Format names the markup a flow document is written in.
type Format string

const (
	FormatAuto Format = "auto"
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// rootElement is the flow element. In YAML it is unwrapped when it is the
// only top-level key; an XML document rooted elsewhere has no flow content.
const rootElement = "Flow"

// DocumentParseError reports malformed document markup.
type DocumentParseError struct {
	Format Format
	Err    error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf(constants.ErrDocumentParse, e.Format, e.Err)
}

func (e *DocumentParseError) Unwrap() error {
	return e.Err
}

// ParseFile reads a flow document from disk and parses it.
func ParseFile(path string, format Format) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data, format)
}

// ParseDocument converts raw markup into a tree of mapping, sequence and
// scalar nodes rooted at the flow element. Child elements that occur once
// are not wrapped in a sequence.
func ParseDocument(data []byte, format Format) (*yaml.Node, error) {
	if format == "" || format == FormatAuto {
		format = Sniff(data)
	}
	var (
		root *yaml.Node
		err  error
	)
	switch format {
	case FormatXML:
		root, err = parseXML(data)
	case FormatYAML:
		root, err = parseYAML(data)
	default:
		return nil, &DocumentParseError{Format: format, Err: fmt.Errorf(constants.ErrUnsupportedFormat, format)}
	}
	if err != nil {
		return nil, &DocumentParseError{Format: format, Err: err}
	}
	return root, nil
}

// Sniff guesses the document format from its first non-space byte.
func Sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return FormatXML
	}
	return FormatYAML
}

type xmlFrame struct {
	name     string
	node     *yaml.Node
	index    map[string]int
	text     strings.Builder
	children bool
}

func parseXML(data []byte) (*yaml.Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		stack    []*xmlFrame
		root     *yaml.Node
		rootName string
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil {
				return nil, fmt.Errorf("unexpected element <%s> after root element", t.Name.Local)
			}
			stack = append(stack, &xmlFrame{
				name:  t.Name.Local,
				node:  &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"},
				index: make(map[string]int),
			})
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			value := f.value()
			if len(stack) == 0 {
				root, rootName = value, f.name
				continue
			}
			stack[len(stack)-1].attach(f.name, value)
		}
	}
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].name)
	}
	if rootName != rootElement {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	return root, nil
}

func (f *xmlFrame) value() *yaml.Node {
	if f.children {
		return f.node
	}
	return scalarNode(strings.TrimSpace(f.text.String()))
}

// attach adds a child value. A repeated tag turns the first value into a
// sequence at its original position.
func (f *xmlFrame) attach(name string, value *yaml.Node) {
	f.children = true
	if i, ok := f.index[name]; ok {
		existing := f.node.Content[i]
		if existing.Kind == yaml.SequenceNode {
			existing.Content = append(existing.Content, value)
			return
		}
		f.node.Content[i] = &yaml.Node{
			Kind:    yaml.SequenceNode,
			Tag:     "!!seq",
			Content: []*yaml.Node{existing, value},
		}
		return
	}
	f.node.Content = append(f.node.Content, scalarNode(name), value)
	f.index[name] = len(f.node.Content) - 1
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func parseYAML(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	root := resolve(doc.Content[0])
	if root.Kind == yaml.MappingNode && len(root.Content) == 2 && root.Content[0].Value == rootElement {
		if inner := resolve(root.Content[1]); inner.Kind == yaml.MappingNode {
			return inner, nil
		}
	}
	return root, nil
}
