package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "spacecol:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// TreeKey generates a prefixed tree key.
func (k *ScopedKeyer) TreeKey(opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(opts)
}

// ArtifactKey generates a prefixed artifact key. The tree key is passed
// through unchanged.
func (k *ScopedKeyer) ArtifactKey(treeKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(treeKey, opts)
}
