package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several panel deployments share one Redis instance.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// ImageKey generates a prefixed key for embedded image caching.
func (k *ScopedKeyer) ImageKey(url string) string {
	return k.prefix + k.inner.ImageKey(url)
}

// ChartKey generates a prefixed key for chart image caching.
func (k *ScopedKeyer) ChartKey(optsHash string) string {
	return k.prefix + k.inner.ChartKey(optsHash)
}
