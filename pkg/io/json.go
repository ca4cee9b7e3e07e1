package io

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/graph"
)

// nameSources are the graphology attributes consulted, in order, for a
// node's display name.
var nameSources = []string{"legal_name", "trade_name"}

func parseJSON(data []byte) (*graph.Graph, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "Invalid JSON file: %v", err)
	}

	_, hasNodes := top["nodes"]
	_, hasEdges := top["edges"]
	_, hasLinks := top["links"]

	switch {
	case hasNodes && hasEdges:
		return parseGraphology(top["nodes"], top["edges"])
	case hasNodes && hasLinks:
		g, err := graph.UnmarshalGraph(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "Invalid JSON file: %v", err)
		}
		return g, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidUpload, "Invalid JSON file: Invalid JSON format")
}

type graphologyNode struct {
	Key        any            `json:"key"`
	Attributes map[string]any `json:"attributes"`
}

func parseGraphology(rawNodes, rawEdges json.RawMessage) (*graph.Graph, error) {
	var nodes []graphologyNode
	if err := decodeNumbers(rawNodes, &nodes); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "Invalid JSON file: nodes: %v", err)
	}
	var edges []map[string]any
	if err := decodeNumbers(rawEdges, &edges); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "Invalid JSON file: edges: %v", err)
	}

	g := &graph.Graph{
		Nodes: make([]graph.Node, len(nodes)),
		Links: make([]graph.Edge, len(edges)),
	}

	for i, n := range nodes {
		id, _ := graph.Identifier(graph.NormalizeValue(n.Key))
		attrs := make(map[string]any, len(n.Attributes)+1)
		attrs["name"] = id
		for _, k := range nameSources {
			if s, ok := graph.Text(n.Attributes[k]); ok {
				attrs["name"] = s
				break
			}
		}
		for k, v := range n.Attributes {
			attrs[k] = graph.NormalizeValue(v)
		}
		delete(attrs, graph.KeyID)
		g.Nodes[i] = graph.Node{ID: id, Attrs: attrs}
	}

	for i, raw := range edges {
		e := graph.Edge{}
		e.Source, _ = graph.Identifier(graph.NormalizeValue(raw[graph.KeySource]))
		e.Target, _ = graph.Identifier(graph.NormalizeValue(raw[graph.KeyTarget]))
		e.ID, _ = graph.Identifier(graph.NormalizeValue(raw["key"]))

		attrs := make(map[string]any)
		if nested, ok := raw["attributes"].(map[string]any); ok {
			for k, v := range nested {
				attrs[k] = graph.NormalizeValue(v)
			}
		}
		for k, v := range raw {
			switch k {
			case "key", "attributes", graph.KeySource, graph.KeyTarget:
				continue
			}
			attrs[k] = graph.NormalizeValue(v)
		}
		delete(attrs, graph.KeyID)
		delete(attrs, graph.KeyCurvature)
		if len(attrs) > 0 {
			e.Attrs = attrs
		}
		g.Links[i] = e
	}
	return g, nil
}

func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
