package cache

// ScopedKeyer wraps a Keyer with a prefix. The CLI and server scope keys by
// release so an upgraded engine never reuses rankings computed by an older
// one.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.4.0:")
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

// RankingKey generates a prefixed key for optimizer results.
func (k *ScopedKeyer) RankingKey(matrixHash string, opts RankingKeyOpts) string {
	return k.prefix + k.inner.RankingKey(matrixHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(resultHash, opts)
}
