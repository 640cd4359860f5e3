package fetch

// OrderedMap is the output container for keyed and grouped modes. Keys
// iterate in first-appearance order; setting an existing key replaces its
// value without moving it. A plain map would drop the ordering contract.
type OrderedMap struct {
	keys []any
	vals map[any]any
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{vals: make(map[any]any)}
}

func (m *OrderedMap) Set(key, value any) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = value
}

func (m *OrderedMap) Get(key any) (any, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in first-appearance order.
func (m *OrderedMap) Keys() []any {
	keys := make([]any, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Each visits entries in key order until fn returns false.
func (m *OrderedMap) Each(fn func(key, value any) bool) {
	for _, k := range m.keys {
		if !fn(k, m.vals[k]) {
			return
		}
	}
}
