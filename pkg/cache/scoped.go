package cache

// ScopedKeyer prefixes every key of an inner Keyer. Deployments sharing one
// Redis instance use it to keep their entries apart:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "linkscope:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey implements Keyer.
func (k *ScopedKeyer) GraphKey(contentHash string, format string) string {
	return k.prefix + k.inner.GraphKey(contentHash, format)
}

// SnapshotKey implements Keyer.
func (k *ScopedKeyer) SnapshotKey(graphHash string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(graphHash, opts)
}
