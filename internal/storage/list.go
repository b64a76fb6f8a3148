package storage

import (
	"encoding/json"
	"log"
)

// List is an ordered, indexed collection persisted as one JSON array blob
// under a namespaced key. Every mutation goes through GetAll, a reindex pass
// and exactly one SaveAll, so readers never observe a partially written
// collection and index fields always match iteration order.
type List[T any] struct {
	ns      Namespace
	name    string
	reindex func(item *T, i int)
}

// NewList creates a List stored under name within ns. reindex is called for
// every element after each mutation with its final position.
func NewList[T any](ns Namespace, name string, reindex func(item *T, i int)) *List[T] {
	return &List[T]{ns: ns, name: name, reindex: reindex}
}

// GetAll reads the full collection. A missing key, a read error or a
// malformed payload all degrade to an empty slice; corruption is logged but
// never surfaced.
func (l *List[T]) GetAll() []T {
	raw, ok, err := l.ns.Get(l.name)
	if err != nil {
		log.Printf("storage: read %q failed: %v", l.name, err)
		return nil
	}
	if !ok {
		return nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("storage: corrupt payload for %q, treating as empty: %v", l.name, err)
		return nil
	}
	return items
}

// SaveAll reindexes every element and overwrites the durable representation
// with the full sequence. This is the single write path.
func (l *List[T]) SaveAll(items []T) error {
	if l.reindex != nil {
		for i := range items {
			l.reindex(&items[i], i)
		}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return l.ns.Put(l.name, raw)
}

// Clear deletes the durable key entirely; subsequent GetAll returns empty.
func (l *List[T]) Clear() error {
	return l.ns.Delete(l.name)
}
