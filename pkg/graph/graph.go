package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph decodes JSON bytes into a graph and assigns edge IDs.
func UnmarshalGraph(data []byte) (*Graph, error) {
	return ReadGraph(bytes.NewReader(data))
}

// WriteGraph writes g as JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes a {"nodes", "links"} JSON document from r.
// Edge IDs are assigned but the graph is not validated.
func ReadGraph(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	g.AssignEdgeIDs()
	return &g, nil
}

// ReadGraphFile reads a JSON graph file.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// WriteGraphFile writes g to path as JSON.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// =============================================================================
// Flattened Element Encoding
// =============================================================================

// MarshalJSON flattens attributes next to "id".
func (n Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Attrs)+1)
	maps.Copy(out, n.Attrs)
	out[KeyID] = n.ID
	return json.Marshal(out)
}

// UnmarshalJSON splits "id" from the remaining attribute keys.
func (n *Node) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	id, _ := Identifier(raw[KeyID])
	delete(raw, KeyID)
	n.ID = id
	n.Attrs = nilIfEmpty(raw)
	return nil
}

// MarshalJSON flattens attributes next to the structural keys.
// Curvature is emitted only when non-zero.
func (e Edge) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Attrs)+4)
	maps.Copy(out, e.Attrs)
	delete(out, KeyCurvature)
	if e.ID != "" {
		out[KeyID] = e.ID
	}
	out[KeySource] = e.Source
	out[KeyTarget] = e.Target
	if e.Curvature != 0 {
		out[KeyCurvature] = e.Curvature
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts endpoint identifiers as strings, numbers, or node
// objects carrying an "id".
func (e *Edge) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	e.Source, _ = Identifier(raw[KeySource])
	e.Target, _ = Identifier(raw[KeyTarget])
	e.ID, _ = Identifier(raw[KeyID])
	e.Curvature, _ = Number(raw[KeyCurvature])
	for _, k := range []string{KeySource, KeyTarget, KeyID, KeyCurvature} {
		delete(raw, k)
	}
	e.Attrs = nilIfEmpty(raw)
	return nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	for k, v := range raw {
		raw[k] = NormalizeValue(v)
	}
	return raw, nil
}

func nilIfEmpty(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}

// SortedNodeIDs returns every node ID in lexicographic order.
func (g *Graph) SortedNodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	slices.Sort(ids)
	return ids
}
