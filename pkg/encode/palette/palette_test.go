package palette

import (
	"encoding/json"
	"fmt"
	"maps"
	"testing"
)

func TestBuildPermutationInvariant(t *testing.T) {
	a := Build([]string{"b", "a"})
	b := Build([]string{"a", "b"})
	if !maps.Equal(a, b) {
		t.Fatalf("Build is order dependent: %v vs %v", a, b)
	}
	if a["a"] != Palette[0] || a["b"] != Palette[1] {
		t.Errorf("sorted assignment mismatch: a=%v b=%v", a["a"], a["b"])
	}
}

func TestBuildDeduplicatesAndSkipsEmpty(t *testing.T) {
	m := Build([]string{"Ops", "", "Finance", "Ops", ""})
	if len(m) != 2 {
		t.Fatalf("len = %d, want 2", len(m))
	}
	if _, ok := m[""]; ok {
		t.Error("empty value should not get a palette slot")
	}
	if m["Finance"] != Palette[0] || m["Ops"] != Palette[1] {
		t.Errorf("unexpected assignment: %v", m)
	}
}

func TestBuildCyclesPalette(t *testing.T) {
	values := make([]string, 12)
	for i := range values {
		values[i] = fmt.Sprintf("v%02d", i)
	}
	m := Build(values)
	if m["v10"] != Palette[0] || m["v11"] != Palette[1] {
		t.Errorf("palette should repeat cyclically: v10=%v v11=%v", m["v10"], m["v11"])
	}
}

func TestLookup(t *testing.T) {
	m := Build([]string{"x"})
	if got := m.Lookup("x", NodeFallback); got != Palette[0] {
		t.Errorf("Lookup(x) = %v", got)
	}
	if got := m.Lookup("", NodeFallback); got != NodeFallback {
		t.Errorf("Lookup(empty) = %v, want fallback", got)
	}
	if got := m.Lookup("unknown", EdgeFallback); got != EdgeFallback {
		t.Errorf("Lookup(unknown) = %v, want fallback", got)
	}
}

func TestColorString(t *testing.T) {
	tests := []struct {
		c    Color
		want string
	}{
		{Palette[0], "#1f77b4"},
		{NodeFallback, "rgba(173, 216, 230, 0.75)"},
		{DimmedNode, "rgba(100, 100, 100, 0.1)"},
		{DimmedEdge, "rgba(100, 100, 100, 0.05)"},
		{Palette[3].WithAlpha(0.5), "rgba(214, 39, 40, 0.5)"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestColorMarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Color{"c": Palette[2]})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `{"c":"#2ca02c"}` {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestParseHex(t *testing.T) {
	if _, err := ParseHex("not-a-color"); err == nil {
		t.Error("ParseHex should reject malformed input")
	}
	c, err := ParseHex("#17becf")
	if err != nil || c != Palette[9] {
		t.Errorf("ParseHex(#17becf) = %v, %v", c, err)
	}
}

func TestEntries(t *testing.T) {
	entries := Build([]string{"z", "a", "m"}).Entries()
	if len(entries) != 3 || entries[0].Value != "a" || entries[2].Value != "z" {
		t.Errorf("Entries() = %v", entries)
	}
}

func TestColorHexA(t *testing.T) {
	tests := []struct {
		c    Color
		want string
	}{
		{Palette[0], "#1f77b4ff"},
		{DimmedNode, "#6464641a"},
		{NodeFallback, "#add8e6bf"},
		{Palette[0].WithAlpha(0), "#1f77b400"},
	}
	for _, tt := range tests {
		if got := tt.c.HexA(); got != tt.want {
			t.Errorf("HexA(%s) = %s, want %s", tt.c, got, tt.want)
		}
	}
}
