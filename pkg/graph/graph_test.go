package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUnmarshalGraph(t *testing.T) {
	data := []byte(`{
		"nodes": [
			{"id": "A", "name": "Acme Corp", "division": "Finance", "revenue": 12.5},
			{"id": 2, "division": ""},
			{"id": "C", "revenue": null}
		],
		"links": [
			{"source": "A", "target": "2", "color": "red"},
			{"source": {"id": "2", "x": 4}, "target": {"id": "C"}, "id": "e-1", "curvature": 0.3}
		]
	}`)

	g, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph() error: %v", err)
	}

	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("counts = %d/%d, want 3/2", g.NodeCount(), g.EdgeCount())
	}
	if g.Nodes[1].ID != "2" {
		t.Errorf("numeric id = %q, want %q", g.Nodes[1].ID, "2")
	}
	if v := g.Nodes[0].Attrs["revenue"]; v != 12.5 {
		t.Errorf("revenue = %#v, want 12.5", v)
	}
	if _, ok := g.Nodes[0].Attrs[KeyID]; ok {
		t.Error("id should not be kept as an attribute")
	}
	if _, ok := g.Nodes[2].Attr("revenue"); ok {
		t.Error("null attribute should be absent")
	}

	e := g.Links[1]
	if e.Source != "2" || e.Target != "C" {
		t.Errorf("object endpoints = %s->%s, want 2->C", e.Source, e.Target)
	}
	if e.ID != "e-1" {
		t.Errorf("supplied id = %q, want e-1", e.ID)
	}
	if e.Curvature != 0.3 {
		t.Errorf("curvature = %v, want 0.3", e.Curvature)
	}
	if g.Links[0].ID != "A___2#0" {
		t.Errorf("synthesized id = %q, want A___2#0", g.Links[0].ID)
	}
}

func TestMarshalGraphFlattensAttributes(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "a", Attrs: map[string]any{"division": "Ops", "id": "shadow"}}},
		Links: []Edge{{ID: "e", Source: "a", Target: "a", Curvature: 0.4, Attrs: map[string]any{"w": 2}}},
	}

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error: %v", err)
	}

	var raw struct {
		Nodes []map[string]any `json:"nodes"`
		Links []map[string]any `json:"links"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if raw.Nodes[0]["id"] != "a" {
		t.Errorf("structural id should win over attribute, got %v", raw.Nodes[0]["id"])
	}
	if raw.Nodes[0]["division"] != "Ops" {
		t.Errorf("division = %v, want Ops", raw.Nodes[0]["division"])
	}
	if raw.Links[0]["curvature"] != 0.4 {
		t.Errorf("curvature = %v, want 0.4", raw.Links[0]["curvature"])
	}
	if raw.Links[0]["w"] != float64(2) {
		t.Errorf("w = %v, want 2", raw.Links[0]["w"])
	}
}

func TestAssignEdgeIDs(t *testing.T) {
	g := &Graph{Links: []Edge{
		{Source: "A", Target: "B"},
		{Source: "A", Target: "B"},
		{Source: "B", Target: "A"},
		{ID: "x", Source: "A", Target: "B"},
		{ID: "x", Source: "B", Target: "A"},
	}}
	g.AssignEdgeIDs()

	want := []string{"A___B#0", "A___B#1", "B___A#0", "x", "x#1"}
	for i, w := range want {
		if g.Links[i].ID != w {
			t.Errorf("edge %d id = %q, want %q", i, g.Links[i].ID, w)
		}
	}
	if g.Links[0].PairKey() != g.Links[1].PairKey() {
		t.Error("parallel edges should share a pair key")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		g       Graph
		wantErr string
	}{
		{
			name: "valid",
			g: Graph{
				Nodes: []Node{{ID: "a"}, {ID: "b"}},
				Links: []Edge{{Source: "a", Target: "b"}},
			},
		},
		{
			name:    "missing id",
			g:       Graph{Nodes: []Node{{ID: ""}}},
			wantErr: "missing id",
		},
		{
			name:    "duplicate id",
			g:       Graph{Nodes: []Node{{ID: "a"}, {ID: "a"}}},
			wantErr: "duplicate",
		},
		{
			name: "dangling target",
			g: Graph{
				Nodes: []Node{{ID: "a"}},
				Links: []Edge{{Source: "a", Target: "zz"}},
			},
			wantErr: "unknown target",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{3.5, 3.5, true},
		{int64(7), 7, true},
		{42, 42, true},
		{json.Number("1e3"), 1000, true},
		{" 12 ", 12, true},
		{"abc", 0, false},
		{"", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := Number(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Number(%#v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		in     any
		want   string
		wantOK bool
	}{
		{"Finance", "Finance", true},
		{"", "", false},
		{nil, "", false},
		{int64(3), "3", true},
		{2.5, "2.5", true},
		{false, "false", true},
	}

	for _, tt := range tests {
		got, ok := Text(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Text(%#v) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSchema(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "a", Attrs: map[string]any{"revenue": 1.0, "division": "X"}},
			{ID: "b", Attrs: map[string]any{"revenue": "2", "division": nil}},
			{ID: "c", Attrs: map[string]any{"revenue": "n/a"}},
		},
		Links: []Edge{{Source: "a", Target: "b", Attrs: map[string]any{"weight": int64(4)}}},
	}
	s := g.Schema()

	if !s.HasNode("division") || !s.HasEdge("weight") {
		t.Fatal("schema should include observed keys")
	}
	if s.HasNode("weight") {
		t.Error("edge key should not appear in node schema")
	}
	if s.Node["revenue"].IsNumeric() {
		t.Error("revenue has a non-numeric value, should not be numeric")
	}
	if s.Node["revenue"].Numeric != 2 {
		t.Errorf("revenue numeric count = %d, want 2", s.Node["revenue"].Numeric)
	}
	if !s.Edge["weight"].IsNumeric() {
		t.Error("weight should be numeric")
	}
	if s.Node["division"].Present != 1 {
		t.Errorf("division present = %d, want 1", s.Node["division"].Present)
	}
}

func TestNodeLabelAndMatches(t *testing.T) {
	n := Node{ID: "n-17", Attrs: map[string]any{"name": "Acme Holdings", "ticker": "ACM"}}

	if got := n.Label(); got != "Acme Holdings" {
		t.Errorf("Label() = %q, want Acme Holdings", got)
	}
	if got := n.Label("ticker"); got != "ACM" {
		t.Errorf("Label(ticker) = %q, want ACM", got)
	}
	if got := (&Node{ID: "bare"}).Label(); got != "bare" {
		t.Errorf("Label() fallback = %q, want bare", got)
	}

	if !n.Matches("acme") {
		t.Error("should match name case-insensitively")
	}
	if !n.Matches("n-1") {
		t.Error("should match id substring")
	}
	if n.Matches("acm") && !n.Matches("acm", "ticker") {
		t.Error("extra keys should only widen matching")
	}
	if n.Matches("zzz") {
		t.Error("should not match unrelated term")
	}
}

func TestIndex(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		Links: []Edge{
			{Source: "A", Target: "B"},
			{Source: "B", Target: "A"},
			{Source: "B", Target: "C"},
			{Source: "C", Target: "C"},
		},
	}
	g.AssignEdgeIDs()
	ix := NewIndex(g)

	if ix.Degree("B") != 3 {
		t.Errorf("Degree(B) = %d, want 3", ix.Degree("B"))
	}
	if ix.Degree("C") != 2 {
		t.Errorf("Degree(C) = %d, want 2 (self-loop counted once)", ix.Degree("C"))
	}
	if _, ok := ix.Node("missing"); ok {
		t.Error("Node(missing) should not be found")
	}
	e, ok := ix.Edge("B___C#0")
	if !ok || e.Target != "C" {
		t.Fatalf("Edge(B___C#0) = %v, %v", e, ok)
	}

	var others []string
	ix.Incident("A", func(e *Edge) { others = append(others, e.Other("A")) })
	if len(others) != 2 || others[0] != "B" || others[1] != "B" {
		t.Errorf("Incident(A) others = %v, want [B B]", others)
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "a", Attrs: map[string]any{"k": "v"}}, {ID: "b"}},
		Links: []Edge{{Source: "a", Target: "b"}},
	}
	g.AssignEdgeIDs()

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile() error: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile() error: %v", err)
	}
	if got.Nodes[0].Attrs["k"] != "v" || got.Links[0].ID != g.Links[0].ID {
		t.Errorf("round trip mismatch: %+v", got)
	}

	data, _ := os.ReadFile(path)
	if !bytes.Contains(data, []byte(`"links"`)) {
		t.Error("file should use the links key")
	}
}

func TestClone(t *testing.T) {
	g := &Graph{Nodes: []Node{{ID: "a", Attrs: map[string]any{"k": "v"}}}}
	c := g.Clone()
	c.Nodes[0].Attrs["k"] = "changed"
	if g.Nodes[0].Attrs["k"] != "v" {
		t.Error("Clone should copy attribute maps")
	}
}
