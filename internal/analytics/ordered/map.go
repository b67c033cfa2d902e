// Package ordered provides an insertion-ordered map used by the analytics
// accumulators so that grouped results iterate deterministically.
package ordered

// Map is a map that remembers the order in which keys were first inserted.
// The zero value is not usable; create one with New.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// New creates an empty Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{values: make(map[K]V)}
}

// Get returns the value stored for key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key. Existing keys keep their original position.
func (m *Map[K, V]) Set(key K, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Update applies fn to the current value for key (the zero value if absent) and stores the result.
func (m *Map[K, V]) Update(key K, fn func(V) V) {
	v := m.values[key]
	m.Set(key, fn(v))
}

// Len returns the number of keys.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Each calls fn for every entry in insertion order.
func (m *Map[K, V]) Each(fn func(key K, value V)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}
