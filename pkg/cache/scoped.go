package cache

// ScopedKeyer prefixes every key of an inner Keyer. The server scopes keys by
// deployment so several instances can share one Redis or MongoDB backend:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "barrace:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) FrameKey(inputHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(inputHash, opts)
}

func (k *ScopedKeyer) PlanKey(opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(opts)
}
