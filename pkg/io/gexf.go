package io

import (
	"encoding/xml"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/graph"
)

const gexfNamespace = "http://www.gexf.net/1.2draft"

type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	Xmlns   string    `xml:"xmlns,attr,omitempty"`
	Version string    `xml:"version,attr,omitempty"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfGraph struct {
	DefaultEdgeType string           `xml:"defaultedgetype,attr,omitempty"`
	Attributes      []gexfAttributes `xml:"attributes"`
	Nodes           []gexfNode       `xml:"nodes>node"`
	Edges           []gexfEdge       `xml:"edges>edge"`
}

type gexfAttributes struct {
	Class     string          `xml:"class,attr"`
	Attribute []gexfAttribute `xml:"attribute"`
}

type gexfAttribute struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type gexfNode struct {
	ID        string         `xml:"id,attr"`
	Label     string         `xml:"label,attr,omitempty"`
	AttValues []gexfAttValue `xml:"attvalues>attvalue"`
}

type gexfEdge struct {
	ID        string         `xml:"id,attr,omitempty"`
	Source    string         `xml:"source,attr"`
	Target    string         `xml:"target,attr"`
	Label     string         `xml:"label,attr,omitempty"`
	Weight    string         `xml:"weight,attr,omitempty"`
	AttValues []gexfAttValue `xml:"attvalues>attvalue"`
}

// gexfAttValue accepts "for" (GEXF 1.1+) and "id" (GEXF 1.0).
type gexfAttValue struct {
	For   string `xml:"for,attr,omitempty"`
	ID    string `xml:"id,attr,omitempty"`
	Value string `xml:"value,attr"`
}

func (v gexfAttValue) key() string {
	if v.For != "" {
		return v.For
	}
	return v.ID
}

// attrDecl resolves an attvalue reference to its title and type.
type attrDecl map[string]gexfAttribute

func (d attrDecl) convert(v gexfAttValue) (string, any) {
	decl, ok := d[v.key()]
	name := v.key()
	if ok && decl.Title != "" {
		name = decl.Title
	}
	return name, typedValue(v.Value, decl.Type)
}

func typedValue(s, typ string) any {
	switch typ {
	case "integer", "long":
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	case "float", "double":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}

func parseGEXF(data []byte) (*graph.Graph, error) {
	var doc gexfDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "Invalid GEXF file")
	}

	nodeDecl, edgeDecl := attrDecl{}, attrDecl{}
	for _, block := range doc.Graph.Attributes {
		into := nodeDecl
		if block.Class == "edge" {
			into = edgeDecl
		}
		for _, a := range block.Attribute {
			into[a.ID] = a
		}
	}

	g := &graph.Graph{
		Nodes: make([]graph.Node, len(doc.Graph.Nodes)),
		Links: make([]graph.Edge, len(doc.Graph.Edges)),
	}
	for i, n := range doc.Graph.Nodes {
		attrs := make(map[string]any, len(n.AttValues)+1)
		for _, v := range n.AttValues {
			k, val := nodeDecl.convert(v)
			attrs[k] = val
		}
		if n.Label != "" {
			attrs["name"] = n.Label
		}
		delete(attrs, graph.KeyID)
		g.Nodes[i] = graph.Node{ID: n.ID, Attrs: nilIfEmpty(attrs)}
	}
	for i, e := range doc.Graph.Edges {
		attrs := make(map[string]any, len(e.AttValues)+2)
		for _, v := range e.AttValues {
			k, val := edgeDecl.convert(v)
			attrs[k] = val
		}
		if e.Label != "" {
			attrs["label"] = e.Label
		}
		if e.Weight != "" {
			attrs["weight"] = typedValue(e.Weight, "double")
		}
		for _, k := range []string{graph.KeyID, graph.KeySource, graph.KeyTarget, graph.KeyCurvature} {
			delete(attrs, k)
		}
		g.Links[i] = graph.Edge{ID: e.ID, Source: e.Source, Target: e.Target, Attrs: nilIfEmpty(attrs)}
	}
	return g, nil
}

func nilIfEmpty(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}

// WriteGEXF encodes g as GEXF 1.2. Every attribute key is declared once per
// class; keys whose values are all numeric are declared as doubles.
func WriteGEXF(g *graph.Graph, w io.Writer) error {
	schema := g.Schema()
	doc := gexfDoc{
		Xmlns:   gexfNamespace,
		Version: "1.2",
		Graph: gexfGraph{
			DefaultEdgeType: "directed",
			Attributes: []gexfAttributes{
				declare("node", schema.Node),
				declare("edge", schema.Edge),
			},
			Nodes: make([]gexfNode, len(g.Nodes)),
			Edges: make([]gexfEdge, len(g.Links)),
		},
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		doc.Graph.Nodes[i] = gexfNode{
			ID:        n.ID,
			Label:     n.Label(),
			AttValues: attValues(n.Attrs),
		}
	}
	for i := range g.Links {
		e := &g.Links[i]
		out := gexfEdge{
			ID:        e.ID,
			Source:    e.Source,
			Target:    e.Target,
			AttValues: attValues(e.Attrs),
		}
		if v, ok := e.Attr("label"); ok {
			out.Label, _ = graph.Text(v)
		}
		doc.Graph.Edges[i] = out
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode GEXF")
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func declare(class string, keys map[string]graph.AttrInfo) gexfAttributes {
	block := gexfAttributes{Class: class}
	for _, k := range slices.Sorted(maps.Keys(keys)) {
		typ := "string"
		if keys[k].IsNumeric() {
			typ = "double"
		}
		block.Attribute = append(block.Attribute, gexfAttribute{ID: k, Title: k, Type: typ})
	}
	return block
}

func attValues(attrs map[string]any) []gexfAttValue {
	var out []gexfAttValue
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		if s, ok := graph.Text(attrs[k]); ok {
			out = append(out, gexfAttValue{For: k, Value: s})
		}
	}
	return out
}
