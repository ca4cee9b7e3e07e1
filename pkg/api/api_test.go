package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linkscope/pkg/cache"
	"github.com/matzehuels/linkscope/pkg/httputil"
	"github.com/matzehuels/linkscope/pkg/pipeline"
	"github.com/matzehuels/linkscope/pkg/session"
	"github.com/matzehuels/linkscope/pkg/storage"
)

const companiesJSON = `{
  "nodes": [
    {"id": "acme", "name": "Acme Corp", "division": "Finance", "revenue": 12},
    {"id": "globex", "name": "Globex", "division": "Ops", "revenue": 30},
    {"id": "initech", "name": "Initech", "division": "Finance", "revenue": 5}
  ],
  "links": [
    {"source": "acme", "target": "globex", "color": "supplier"},
    {"source": "acme", "target": "globex", "color": "customer"},
    {"source": "globex", "target": "initech"}
  ]
}`

const personsGEXF = `<gexf><graph><nodes>
  <node id="ann" label="Ann"/><node id="bob" label="Bob"/>
</nodes><edges><edge source="ann" target="bob"/></edges></graph></gexf>`

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(discard{})
	runner := pipeline.NewRunner(c, nil, storage.NewMemoryStore(), logger)
	t.Cleanup(func() { runner.Close() })
	opts.Runner = runner
	opts.Sessions = session.NewManager(nil, runner, time.Hour, logger)
	opts.Logger = logger
	return New(opts)
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, s *Server, path, field, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, field, filename, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[httputil.ErrorBody](t, rec).Error
}

type sessionBody struct {
	ID         string `json:"id"`
	GraphID    string `json:"graph_id"`
	Generation uint64 `json:"generation"`
	Config     struct {
		NodeColorBy  string  `json:"node_color_by"`
		LabelDensity float64 `json:"label_density"`
	} `json:"config"`
	Snapshot struct {
		Mode        string `json:"mode"`
		Highlighted struct {
			Nodes int `json:"nodes"`
			Edges int `json:"edges"`
		} `json:"highlighted"`
		Nodes []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"nodes"`
	} `json:"snapshot"`
	Effect *struct {
		ShowInfo struct {
			ID string `json:"id"`
		} `json:"show_info"`
		CloseInfo bool `json:"close_info"`
	} `json:"effect"`
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestUpload(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := upload(t, s, "/api/upload", "file", "companies.json", companiesJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Graph-ID") == "" || rec.Header().Get("X-Graph-Hash") == "" {
		t.Errorf("headers = %v", rec.Header())
	}

	body := decode[struct {
		Nodes []map[string]any `json:"nodes"`
		Links []map[string]any `json:"links"`
	}](t, rec)
	if len(body.Nodes) != 3 || len(body.Links) != 3 {
		t.Fatalf("counts = %d/%d", len(body.Nodes), len(body.Links))
	}
	if body.Links[0]["id"] == body.Links[1]["id"] {
		t.Errorf("parallel edges share ID %v", body.Links[0]["id"])
	}
	if body.Links[0]["curvature"] == nil {
		t.Errorf("curvature missing: %v", body.Links[0])
	}

	again := upload(t, s, "/api/upload", "file", "companies.json", companiesJSON)
	if again.Header().Get("X-Graph-ID") != rec.Header().Get("X-Graph-ID") {
		t.Error("identical upload stored a second document")
	}
}

func TestUploadErrors(t *testing.T) {
	s := newTestServer(t, Options{})
	tests := []struct {
		name     string
		field    string
		filename string
		content  string
		status   int
		message  string
	}{
		{"no file part", "document", "g.json", companiesJSON, 400, "No file part"},
		{"empty filename", "file", "", companiesJSON, 400, "No selected file"},
		{"unsupported", "file", "g.csv", "a,b", 400, "Unsupported file type"},
		{"parse failure", "file", "g.json", `{"nodes": [`, 500, "Invalid JSON file"},
		{"invalid graph", "file", "g.json", `{"nodes": [], "links": [{"source": "a", "target": "b"}]}`, 400, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, s, "/api/upload", tt.field, tt.filename, tt.content)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if msg := errorMessage(t, rec); !strings.HasPrefix(msg, tt.message) || msg == "" {
				t.Errorf("error = %q, want prefix %q", msg, tt.message)
			}
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/api/upload", `{"nodes": []}`)
		if rec.Code != http.StatusBadRequest || errorMessage(t, rec) != "No file part" {
			t.Errorf("got %d %s", rec.Code, rec.Body.String())
		}
	})
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer(t, Options{MaxUploadBytes: 64})
	rec := upload(t, s, "/api/upload", "file", "g.json", companiesJSON)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUploadRateLimit(t *testing.T) {
	s := newTestServer(t, Options{UploadLimiter: httputil.NewLimiter(0.001, 1)})
	first := upload(t, s, "/api/upload", "file", "g.json", companiesJSON)
	second := upload(t, s, "/api/upload", "file", "g.json", companiesJSON)
	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Errorf("codes = %d, %d", first.Code, second.Code)
	}
}

func TestGetGraph(t *testing.T) {
	s := newTestServer(t, Options{})
	id := upload(t, s, "/api/upload", "file", "g.json", companiesJSON).Header().Get("X-Graph-ID")

	rec := do(t, s, http.MethodGet, "/api/graphs/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := decode[struct {
		ID    string `json:"id"`
		Nodes int    `json:"node_count"`
	}](t, rec)
	if doc.ID != id || doc.Nodes != 3 {
		t.Errorf("doc = %+v", doc)
	}

	if rec := do(t, s, http.MethodGet, "/api/graphs/unknown", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown graph status = %d", rec.Code)
	}
}

func createSession(t *testing.T, s *Server) sessionBody {
	t.Helper()
	id := upload(t, s, "/api/upload", "file", "g.json", companiesJSON).Header().Get("X-Graph-ID")
	rec := do(t, s, http.MethodPost, "/api/sessions", `{"graph_id": "`+id+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session = %d %s", rec.Code, rec.Body.String())
	}
	return decode[sessionBody](t, rec)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, Options{})
	sess := createSession(t, s)
	base := "/api/sessions/" + sess.ID

	if sess.Generation != 1 || sess.Snapshot.Mode != "idle" || sess.Config.NodeColorBy != "division" {
		t.Errorf("created = %+v", sess)
	}

	rec := do(t, s, http.MethodPost, base+"/events", `{"type": "click", "kind": "node", "id": "initech"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("event = %d %s", rec.Code, rec.Body.String())
	}
	ev := decode[sessionBody](t, rec)
	if ev.Snapshot.Mode != "selected" || ev.Snapshot.Highlighted.Nodes != 2 || ev.Snapshot.Highlighted.Edges != 1 {
		t.Errorf("after click: %+v", ev.Snapshot)
	}
	if ev.Effect == nil || ev.Effect.ShowInfo.ID != "initech" {
		t.Errorf("effect = %+v", ev.Effect)
	}

	rec = do(t, s, http.MethodGet, base+"/frame", "")
	if fr := decode[sessionBody](t, rec); fr.Snapshot.Mode != "selected" {
		t.Errorf("frame mode = %q", fr.Snapshot.Mode)
	}

	rec = do(t, s, http.MethodPut, base+"/config", `{"label_density": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("config = %d %s", rec.Code, rec.Body.String())
	}
	cfg := decode[sessionBody](t, rec)
	if cfg.Config.LabelDensity != 1 || cfg.Config.NodeColorBy != "division" {
		t.Errorf("partial config update: %+v", cfg.Config)
	}
	if cfg.Snapshot.Mode != "selected" {
		t.Error("reconfigure reset the highlight")
	}

	if rec := do(t, s, http.MethodDelete, base, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, s, http.MethodGet, base+"/frame", ""); rec.Code != http.StatusNotFound {
		t.Errorf("frame after delete = %d", rec.Code)
	}
}

func TestSessionErrors(t *testing.T) {
	s := newTestServer(t, Options{})
	sess := createSession(t, s)
	base := "/api/sessions/" + sess.ID

	tests := []struct {
		name, method, path, body string
		status                   int
	}{
		{"unknown graph", http.MethodPost, "/api/sessions", `{"graph_id": "nope"}`, 404},
		{"missing graph id", http.MethodPost, "/api/sessions", `{}`, 400},
		{"bad body", http.MethodPost, "/api/sessions", `{"graph": 1}`, 400},
		{"unknown session", http.MethodGet, "/api/sessions/nope/frame", "", 404},
		{"unknown event", http.MethodPost, base + "/events", `{"type": "drag"}`, 400},
		{"filter without attribute", http.MethodPost, base + "/events", `{"type": "filter"}`, 400},
		{"unknown attribute", http.MethodPut, base + "/config", `{"node_size_by": "headcount"}`, 400},
		{"bad density", http.MethodPut, base + "/config", `{"label_density": 3}`, 400},
		{"bad zoom", http.MethodGet, base + "/frame?zoom=-1", "", 400},
		{"nan zoom", http.MethodGet, base + "/frame?zoom=NaN", "", 400},
		{"inf zoom", http.MethodGet, base + "/frame?zoom=%2BInf", "", 400},
		{"bad snapshot format", http.MethodGet, base + "/snapshot.bmp", "", 400},
		{"bad engine", http.MethodGet, base + "/snapshot.dot?engine=twopi", "", 400},
		{"bad scale", http.MethodGet, base + "/snapshot.png?scale=zero", "", 400},
		{"delete unknown", http.MethodDelete, "/api/sessions/nope", "", 404},
		{"no route", http.MethodGet, "/api/nothing", "", 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if errorMessage(t, rec) == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestSessionUploadReplacesGraph(t *testing.T) {
	s := newTestServer(t, Options{})
	sess := createSession(t, s)
	base := "/api/sessions/" + sess.ID

	do(t, s, http.MethodPost, base+"/events", `{"type": "click", "kind": "node", "id": "acme"}`)

	rec := upload(t, s, base+"/upload", "file", "people.gexf", personsGEXF)
	if rec.Code != http.StatusOK {
		t.Fatalf("session upload = %d %s", rec.Code, rec.Body.String())
	}
	got := decode[sessionBody](t, rec)
	if got.Generation != 2 || got.GraphID == sess.GraphID {
		t.Errorf("after replace: generation %d graph %s", got.Generation, got.GraphID)
	}
	if got.Snapshot.Mode != "idle" || len(got.Snapshot.Nodes) != 2 {
		t.Errorf("snapshot = %+v", got.Snapshot)
	}
	if got.Effect == nil || !got.Effect.CloseInfo {
		t.Errorf("effect = %+v", got.Effect)
	}

	stale := do(t, s, http.MethodPost, base+"/events", `{"type": "click", "kind": "node", "id": "acme", "generation": 1}`)
	if stale.Code != http.StatusConflict {
		t.Errorf("stale event = %d %s", stale.Code, stale.Body.String())
	}

	bad := upload(t, s, base+"/upload", "file", "broken.gexf", "<gexf><graph>")
	if bad.Code != http.StatusInternalServerError {
		t.Errorf("broken upload = %d", bad.Code)
	}
	rec = do(t, s, http.MethodGet, base+"/frame", "")
	if fr := decode[sessionBody](t, rec); fr.Generation != 2 || len(fr.Snapshot.Nodes) != 2 {
		t.Errorf("failed upload changed the session: %+v", fr)
	}
}

func TestSnapshot(t *testing.T) {
	s := newTestServer(t, Options{})
	sess := createSession(t, s)
	path := "/api/sessions/" + sess.ID + "/snapshot.dot"

	first := do(t, s, http.MethodGet, path, "")
	if first.Code != http.StatusOK {
		t.Fatalf("snapshot = %d %s", first.Code, first.Body.String())
	}
	if ct := first.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(first.Body.String(), "digraph") {
		t.Errorf("body = %q", first.Body.String())
	}
	if first.Header().Get("X-Cache") != "miss" {
		t.Errorf("first X-Cache = %q", first.Header().Get("X-Cache"))
	}

	second := do(t, s, http.MethodGet, path, "")
	if second.Header().Get("X-Cache") != "hit" || second.Body.String() != first.Body.String() {
		t.Errorf("second X-Cache = %q", second.Header().Get("X-Cache"))
	}

	refreshed := do(t, s, http.MethodGet, path+"?refresh=true", "")
	if refreshed.Header().Get("X-Cache") != "miss" {
		t.Error("refresh served from cache")
	}

	do(t, s, http.MethodPost, "/api/sessions/"+sess.ID+"/events", `{"type": "search", "term": "acme"}`)
	searched := do(t, s, http.MethodGet, path, "")
	if searched.Header().Get("X-Cache") != "miss" {
		t.Error("highlight change served a stale snapshot")
	}

	js := do(t, s, http.MethodGet, "/api/sessions/"+sess.ID+"/snapshot.json", "")
	if js.Code != http.StatusOK || !strings.Contains(js.Body.String(), `"mode": "searched"`) {
		t.Errorf("json snapshot = %d %s", js.Code, js.Body.String())
	}
}
