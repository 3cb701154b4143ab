package cache

import "time"

// Dedup remembers recently claimed keys, such as message ids, so repeated
// deliveries can be skipped.
type Dedup struct {
	seen *LRU[struct{}]
}

func NewDedup(size int, ttl time.Duration) *Dedup {
	return &Dedup{seen: NewLRU[struct{}](size, ttl)}
}

// Claim reports whether key is new, marking it seen if so.
func (d *Dedup) Claim(key string) bool {
	return d.seen.Add(key, struct{}{})
}

// Release forgets key so a later delivery is processed again.
func (d *Dedup) Release(key string) {
	d.seen.Delete(key)
}
