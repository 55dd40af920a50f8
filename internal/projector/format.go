package projector

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/emitter"
)

// Format selects the output syntax.
type Format string

const (
	FormatOctave   Format = "octave"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists every format in display order.
var Formats = []Format{FormatOctave, FormatJSON, FormatYAML, FormatMarkdown}

// ParseFormat resolves a format name. The empty string is octave.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatOctave, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Render projects doc for mode and writes it in format.
func Render(doc *ast.Document, mode Mode, format Format) (Result, error) {
	res, err := Project(doc, mode)
	if err != nil {
		return Result{}, err
	}
	switch format {
	case FormatOctave:
	case FormatJSON:
		data, err := ast.MarshalDocument(res.Document)
		if err != nil {
			return Result{}, fmt.Errorf("render json: %w", err)
		}
		res.Output = string(data)
	case FormatYAML:
		out, err := RenderYAML(res.Document)
		if err != nil {
			return Result{}, err
		}
		res.Output = out
	case FormatMarkdown:
		res.Output = RenderMarkdown(res.Document)
	default:
		return Result{}, fmt.Errorf("unknown output format %q", format)
	}
	return res, nil
}

// RenderYAML writes doc as a YAML mapping in document order.
func RenderYAML(doc *ast.Document) (string, error) {
	node := yamlNode(ast.DocumentValue(doc))
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("render yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render yaml: %w", err)
	}
	return buf.String(), nil
}

func yamlNode(v ast.Value) *yaml.Node {
	switch val := v.(type) {
	case nil, ast.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case ast.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(val))}
	case ast.Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: ast.Text(val)}
	case ast.Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ast.Text(val)}
	case ast.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(val)}
	case ast.List:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			n.Content = append(n.Content, yamlNode(item))
		}
		return n
	case ast.InlineMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range val {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
				yamlNode(e.Value))
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: ast.Text(v)}
}

// RenderMarkdown writes doc as a Markdown outline: the envelope name as the
// title, META as a bullet list, top-level assignments as bullets and each
// block or division as a second-level heading.
func RenderMarkdown(doc *ast.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", doc.Name)

	if doc.Meta.Len() > 0 {
		b.WriteString("\n## META\n\n")
		for _, e := range doc.Meta.Entries() {
			markdownValue(&b, 0, e.Key, e.Value)
		}
	}

	pendingList := false
	for _, s := range doc.Sections {
		switch n := s.(type) {
		case *ast.Assignment:
			if !pendingList {
				b.WriteString("\n")
				pendingList = true
			}
			markdownValue(&b, 0, n.Key, n.Value)
		case *ast.Block:
			fmt.Fprintf(&b, "\n## %s\n\n", n.Key)
			markdownChildren(&b, 0, n.Children)
			pendingList = false
		case *ast.Division:
			fmt.Fprintf(&b, "\n## %s\n\n", n.Label())
			markdownChildren(&b, 0, n.Children)
			pendingList = false
		}
	}
	return b.String()
}

func markdownChildren(b *strings.Builder, depth int, children []ast.Section) {
	for _, s := range children {
		switch n := s.(type) {
		case *ast.Assignment:
			markdownValue(b, depth, n.Key, n.Value)
		case *ast.Block:
			fmt.Fprintf(b, "%s- **%s**\n", indent(depth), n.Key)
			markdownChildren(b, depth+1, n.Children)
		case *ast.Division:
			fmt.Fprintf(b, "%s- **%s**\n", indent(depth), n.Label())
			markdownChildren(b, depth+1, n.Children)
		}
	}
}

func markdownValue(b *strings.Builder, depth int, key string, v ast.Value) {
	if m, ok := v.(ast.InlineMap); ok {
		fmt.Fprintf(b, "%s- **%s**\n", indent(depth), key)
		for _, e := range m {
			markdownValue(b, depth+1, e.Key, e.Value)
		}
		return
	}
	fmt.Fprintf(b, "%s- **%s**: `%s`\n", indent(depth), key, emitter.FormatValue(v))
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
