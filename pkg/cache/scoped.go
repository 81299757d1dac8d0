package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects or working
// directories can share one cache directory without key collisions.
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
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DocumentKey generates a prefixed key for document-derived data.
func (k *ScopedKeyer) DocumentKey(fileHash string) string {
	return k.prefix + k.inner.DocumentKey(fileHash)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(docHash string, characterID uint16, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(docHash, characterID, opts)
}
