package util

// OrderedMap is a string-keyed map that remembers insertion order.
// It backs attribute maps and the children of tree groups.  The zero value
// is not usable; start from EmptyMap.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

// EmptyMap returns an OrderedMap with nothing in it.
func EmptyMap() *OrderedMap {
	return &OrderedMap{values: map[string]any{}}
}

// Add appends name, or replaces its value in place if it is already present.
func (om *OrderedMap) Add(name string, val any) {
	if _, has := om.values[name]; !has {
		om.keys = append(om.keys, name)
	}
	om.values[name] = val
}

// AddFirst adds name only if it is not already present and reports whether
// it did.  HDF4 allows duplicate attribute names; the first one wins.
func (om *OrderedMap) AddFirst(name string, val any) bool {
	if _, has := om.values[name]; has {
		return false
	}
	om.Add(name, val)
	return true
}

func (om *OrderedMap) Get(key string) (val any, has bool) {
	val, has = om.values[key]
	return
}

// Delete removes key, keeping the order of the others.
func (om *OrderedMap) Delete(key string) {
	if _, has := om.values[key]; !has {
		return
	}
	delete(om.values, key)
	for i, k := range om.keys {
		if k == key {
			om.keys = append(om.keys[:i:i], om.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.  The slice must not be modified.
func (om *OrderedMap) Keys() []string {
	return om.keys
}

func (om *OrderedMap) Len() int {
	return len(om.keys)
}
