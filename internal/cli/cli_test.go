package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/highlight"
)

const companiesJSON = `{
  "nodes": [
    {"id": "acme", "name": "Acme Corp", "division": "Finance", "revenue": 12},
    {"id": "globex", "name": "Globex", "division": "Ops", "revenue": 30},
    {"id": "initech", "name": "Initech", "division": "Finance", "revenue": 5},
    {"id": "umbrella", "name": "Umbrella", "division": "Ops", "revenue": 8}
  ],
  "links": [
    {"source": "acme", "target": "globex", "color": "supplier"},
    {"source": "globex", "target": "initech", "color": "customer"}
  ]
}`

// testEnv isolates config and cache directories and writes the fixture
// graph. It returns the graph path and a config path that does not exist.
func testEnv(t *testing.T) (graphPath, configPath string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))

	graphPath = filepath.Join(dir, "companies.json")
	if err := os.WriteFile(graphPath, []byte(companiesJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return graphPath, filepath.Join(dir, "linkscope.toml")
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

type snapshotOut struct {
	Mode        string `json:"mode"`
	Highlighted struct {
		Nodes int `json:"nodes"`
		Edges int `json:"edges"`
	} `json:"highlighted"`
	Nodes []struct {
		ID           string  `json:"id"`
		Label        string  `json:"label"`
		Color        string  `json:"color"`
		Size         float64 `json:"size"`
		LabelVisible bool    `json:"label_visible"`
		Highlighted  bool    `json:"highlighted"`
	} `json:"nodes"`
	Links []struct {
		ID string `json:"id"`
	} `json:"links"`
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"serve", "encode", "render", "explore", "config", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestEncodeCommand(t *testing.T) {
	graphPath, configPath := testEnv(t)

	tests := []struct {
		name      string
		args      []string
		mode      string
		highlight int
	}{
		{"idle", nil, "idle", 0},
		{"select", []string{"--select", "acme"}, "selected", 2},
		{"search", []string{"--search", "glob"}, "searched", 1},
		{"filter", []string{"--filter", "division=Ops"}, "filtered", 2},
		{"search wins over filter", []string{"--filter", "division=Ops", "--search", "acme"}, "searched", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"encode", graphPath, "--config", configPath}, tt.args...)
			stdout, _, err := execute(t, args...)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			var snap snapshotOut
			if err := json.Unmarshal([]byte(stdout), &snap); err != nil {
				t.Fatalf("invalid JSON: %v\n%s", err, stdout)
			}
			if snap.Mode != tt.mode {
				t.Errorf("mode = %q, want %q", snap.Mode, tt.mode)
			}
			if snap.Highlighted.Nodes != tt.highlight {
				t.Errorf("highlighted nodes = %d, want %d", snap.Highlighted.Nodes, tt.highlight)
			}
			if len(snap.Nodes) != 4 || len(snap.Links) != 2 {
				t.Errorf("got %d nodes, %d links", len(snap.Nodes), len(snap.Links))
			}
		})
	}
}

func TestEncodeCommandSizeBy(t *testing.T) {
	graphPath, configPath := testEnv(t)

	stdout, _, err := execute(t, "encode", graphPath, "--config", configPath, "--size-by", "revenue")
	if err != nil {
		t.Fatal(err)
	}
	var snap snapshotOut
	if err := json.Unmarshal([]byte(stdout), &snap); err != nil {
		t.Fatal(err)
	}
	size := map[string]float64{}
	for _, n := range snap.Nodes {
		size[n.ID] = n.Size
	}
	if size["initech"] != 4 || size["globex"] != 12 {
		t.Errorf("sizes = %v, want initech 4 and globex 12", size)
	}
}

func TestEncodeCommandOutputFile(t *testing.T) {
	graphPath, configPath := testEnv(t)
	out := filepath.Join(t.TempDir(), "legend.json")

	stdout, _, err := execute(t, "encode", graphPath, "--config", configPath, "--legend", "-o", out)
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want nothing", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var legend struct {
		NodeAttribute string `json:"node_attribute"`
	}
	if err := json.Unmarshal(data, &legend); err != nil {
		t.Fatal(err)
	}
	if legend.NodeAttribute != "division" {
		t.Errorf("legend attribute = %q", legend.NodeAttribute)
	}
}

func TestEncodeCommandErrors(t *testing.T) {
	graphPath, configPath := testEnv(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown attribute", []string{graphPath, "--color-by", "nope"}, errors.ErrCodeInvalidAttribute},
		{"bad density", []string{graphPath, "--density", "2"}, errors.ErrCodeInvalidConfig},
		{"unknown node", []string{graphPath, "--select", "nope"}, errors.ErrCodeNotFound},
		{"bad filter", []string{graphPath, "--filter", "division"}, errors.ErrCodeInvalidInput},
		{"missing file", []string{filepath.Join(t.TempDir(), "missing.json")}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"encode", "--config", configPath}, tt.args...)
			_, _, err := execute(t, args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRenderCommandDOT(t *testing.T) {
	graphPath, configPath := testEnv(t)
	out := filepath.Join(t.TempDir(), "acme.dot")

	_, stderr, err := execute(t, "render", graphPath, "--config", configPath, "--select", "acme", "-o", out)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("output is not DOT:\n%s", data)
	}
	if !strings.Contains(stderr, out) {
		t.Errorf("stderr does not name the output file:\n%s", stderr)
	}
}

func TestRenderCommandStdoutAndCache(t *testing.T) {
	graphPath, configPath := testEnv(t)

	first, _, err := execute(t, "render", graphPath, "--config", configPath, "-f", "json", "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := execute(t, "render", graphPath, "--config", configPath, "-f", "json", "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	if first != second || !strings.Contains(first, `"mode": "idle"`) {
		t.Errorf("cached render differs or is not a snapshot:\n%s\n%s", first, second)
	}

	dir, _ := cacheDir()
	if entries, _ := os.ReadDir(dir); len(entries) == 0 {
		t.Error("render did not populate the cache")
	}
}

func TestRenderCommandGEXF(t *testing.T) {
	graphPath, configPath := testEnv(t)
	out := filepath.Join(t.TempDir(), "companies.gexf")

	if _, _, err := execute(t, "render", graphPath, "--config", configPath, "-o", out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<gexf") || !strings.Contains(string(data), `label="Acme Corp"`) {
		t.Errorf("unexpected GEXF:\n%s", data)
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		flag, output, want string
		wantErr            bool
	}{
		{"", "", "svg", false},
		{"", "-", "svg", false},
		{"", "out.PNG", "png", false},
		{"dot", "out.svg", "dot", false},
		{"", "graph.gexf", "gexf", false},
		{"", "out.txt", "", true},
		{"bmp", "", "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.flag, tt.output)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, %v; want %q", tt.flag, tt.output, got, err, tt.want)
		}
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in   string
		want highlight.Filter
	}{
		{"division=Ops", highlight.Filter{Kind: highlight.NodeKind, Attribute: "division", Value: "Ops"}},
		{"edge:color=red", highlight.Filter{Kind: highlight.EdgeKind, Attribute: "color", Value: "red"}},
		{"url=http://x", highlight.Filter{Kind: highlight.NodeKind, Attribute: "url", Value: "http://x"}},
	}
	for _, tt := range tests {
		got, err := parseFilter(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseFilter(%q) = %+v, %v; want %+v", tt.in, got, err, tt.want)
		}
	}
	if _, err := parseFilter("=x"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty attribute error = %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	graphPath, configPath := testEnv(t)

	stdout, _, err := execute(t, "cache", "clear")
	if err != nil || !strings.Contains(stdout, "Cache is empty") {
		t.Fatalf("clear on empty cache = %q, %v", stdout, err)
	}

	if _, _, err := execute(t, "render", graphPath, "--config", configPath, "-f", "dot", "-o", "-"); err != nil {
		t.Fatal(err)
	}
	stdout, _, err = execute(t, "cache", "clear")
	if err != nil || !strings.Contains(stdout, "Cleared") {
		t.Fatalf("clear = %q, %v", stdout, err)
	}

	dir, _ := cacheDir()
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("%d entries left after clear", len(entries))
	}

	stdout, _, err = execute(t, "cache", "path")
	if err != nil || strings.TrimSpace(stdout) != dir {
		t.Errorf("cache path = %q, %v; want %q", stdout, err, dir)
	}
}

func TestCompletionCommand(t *testing.T) {
	stdout, _, err := execute(t, "completion", "bash")
	if err != nil || !strings.Contains(stdout, "linkscope") {
		t.Errorf("bash completion = %v, output %d bytes", err, len(stdout))
	}
	stdout, _, err = execute(t, "completion", "zsh", "--no-descriptions")
	if err != nil || !strings.Contains(stdout, "#compdef linkscope") {
		t.Errorf("zsh completion = %v, output %d bytes", err, len(stdout))
	}
	if _, _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("invalid shell accepted")
	}
}
