package cache

// Keyer derives cache keys.
type Keyer interface {
	// GraphKey addresses a parsed graph by the hash of its source bytes.
	GraphKey(contentHash string, format string) string

	// SnapshotKey addresses a rendered snapshot of a graph.
	SnapshotKey(graphHash string, opts SnapshotKeyOpts) string
}

// SnapshotKeyOpts lists everything a static render depends on besides the
// graph itself.
type SnapshotKeyOpts struct {
	Format string   `json:"format"`
	Config any      `json:"config"`
	Nodes  []string `json:"nodes,omitempty"`
	Edges  []string `json:"edges,omitempty"`
}

// DefaultKeyer produces "graph:<hash>" and "snapshot:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(contentHash string, format string) string {
	return hashKey("graph", contentHash, format)
}

// SnapshotKey implements Keyer.
func (DefaultKeyer) SnapshotKey(graphHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", graphHash, opts)
}
