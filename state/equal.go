package state

import "reflect"

// Same reports whether two section values are the same value.
//
// Reference kinds (maps, slices, pointers, channels, funcs) compare by
// identity, so a reducer that returns a freshly built map is seen as a change
// even when its contents are equal. Comparable values compare with ==. Values
// that are neither fall back to deep equality. Same never panics.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// Equal reports whether two states are structurally equal: the same set of
// sections with deeply equal values. Section order is ignored. A nil State
// equals an empty one.
func Equal(a, b *State) bool {
	if a == b {
		return true
	}
	if a.Len() != b.Len() {
		return false
	}
	for _, name := range a.Keys() {
		av, _ := a.Get(name)
		bv, exists := b.Get(name)
		if !exists {
			return false
		}
		if Same(av, bv) {
			continue
		}
		if !reflect.DeepEqual(av, bv) {
			return false
		}
	}
	return true
}
