package cache

// ScopedKeyer wraps a Keyer with a prefix so that each user's artifacts live
// in their own namespace.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "user:"+userID+":")
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

// MosaicKey generates a prefixed key for a rendered mosaic.
func (k *ScopedKeyer) MosaicKey(contentHash string, opts MosaicKeyOpts) string {
	return k.prefix + k.inner.MosaicKey(contentHash, opts)
}
