package resolve

import "fmt"

// Kind selects one of the cache's independent namespaces.
type Kind int

const (
	KindLanguage Kind = iota
	KindFeature
	KindPhoneme
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindLanguage:
		return "language"
	case KindFeature:
		return "feature"
	case KindPhoneme:
		return "phoneme"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Cache maps (kind, natural key) to a surrogate id for the lifetime of one
// import run. It never evicts and is not safe for concurrent use.
type Cache struct {
	ids [numKinds]map[string]int64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	for i := range c.ids {
		c.ids[i] = make(map[string]int64)
	}
	return c
}

// Get returns the cached id for key in kind's namespace.
func (c *Cache) Get(kind Kind, key string) (int64, bool) {
	if kind < 0 || kind >= numKinds {
		return 0, false
	}
	id, ok := c.ids[kind][key]
	return id, ok
}

// Put records id for key in kind's namespace.
func (c *Cache) Put(kind Kind, key string, id int64) {
	if kind < 0 || kind >= numKinds {
		panic(fmt.Sprintf("resolve: invalid cache kind %d", int(kind)))
	}
	c.ids[kind][key] = id
}

// Len returns the number of keys cached for kind.
func (c *Cache) Len(kind Kind) int {
	if kind < 0 || kind >= numKinds {
		return 0
	}
	return len(c.ids[kind])
}
