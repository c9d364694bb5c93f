// Package dvm implements the Dynamic Value Model: a finitely recursive
// tagged value used for content-addressable metadata that the canister's
// statically typed method arguments don't cover. It is deliberately kept
// separate from the strongly typed per-method payloads consumed by
// pkg/rule — see the design notes in SPEC_FULL.md for why the two are
// never merged.
package dvm

import "fmt"

// Tag identifies the outermost shape of a Value.
type Tag string

const (
	TagInt      Tag = "int"
	TagNat      Tag = "nat"
	TagBool     Tag = "bool"
	TagFloat    Tag = "float"
	TagText     Tag = "text"
	TagBlob     Tag = "blob"
	TagNull     Tag = "null"
	TagArray    Tag = "array"
	TagMap      Tag = "map"
	TagValueMap Tag = "valuemap"
	TagClass    Tag = "class"
	TagOptional Tag = "optional"
)

// MapEntry is one (text-key, value) pair of a Map, in insertion order.
type MapEntry struct {
	Key   string
	Value Value
}

// ValueMapEntry is one (key, value) pair of a ValueMap; the key may be any
// Value, not just text.
type ValueMapEntry struct {
	Key   Value
	Value Value
}

// Property is one named, optionally-immutable field of a Class.
type Property struct {
	Name      string
	Value     Value
	Immutable bool
}

// Value is the Dynamic Value Model's tagged union. The zero Value is the
// null leaf. Values are immutable once constructed; composites hold their
// own copies of child slices, so sharing a Value across goroutines is safe.
type Value struct {
	tag Tag

	i      int64
	n      uint64
	b      bool
	f      float64
	text   string
	blob   []byte
	array  []Value
	mp     []MapEntry
	vmap   []ValueMapEntry
	class  []Property
	optval *Value
}

// Tag returns the outermost variant of v.
func (v Value) Tag() Tag {
	if v.tag == "" {
		return TagNull
	}
	return v.tag
}

// ── Constructors ─────────────────────────────────────────────

func Int(i int64) Value   { return Value{tag: TagInt, i: i} }
func Nat(n uint64) Value  { return Value{tag: TagNat, n: n} }
func Bool(b bool) Value   { return Value{tag: TagBool, b: b} }
func Float(f float64) Value { return Value{tag: TagFloat, f: f} }
func Text(s string) Value { return Value{tag: TagText, text: s} }
func Blob(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{tag: TagBlob, blob: cp}
}
func Null() Value { return Value{tag: TagNull} }

func Array(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{tag: TagArray, array: cp}
}

func Map(entries ...MapEntry) Value {
	cp := make([]MapEntry, len(entries))
	copy(cp, entries)
	return Value{tag: TagMap, mp: cp}
}

func NewValueMap(entries ...ValueMapEntry) Value {
	cp := make([]ValueMapEntry, len(entries))
	copy(cp, entries)
	return Value{tag: TagValueMap, vmap: cp}
}

func NewClass(props ...Property) Value {
	cp := make([]Property, len(props))
	copy(cp, props)
	return Value{tag: TagClass, class: cp}
}

// Optional wraps v, or represents "none" when v is nil.
func Optional(v *Value) Value {
	if v == nil {
		return Value{tag: TagOptional, optval: nil}
	}
	inner := *v
	return Value{tag: TagOptional, optval: &inner}
}

// ── Accessors ────────────────────────────────────────────────

func (v Value) AsInt() (int64, bool) {
	if v.Tag() != TagInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) AsNat() (uint64, bool) {
	if v.Tag() != TagNat {
		return 0, false
	}
	return v.n, true
}

func (v Value) AsBool() (bool, bool) {
	if v.Tag() != TagBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsFloat() (float64, bool) {
	if v.Tag() != TagFloat {
		return 0, false
	}
	return v.f, true
}

func (v Value) AsText() (string, bool) {
	if v.Tag() != TagText {
		return "", false
	}
	return v.text, true
}

func (v Value) AsBlob() ([]byte, bool) {
	if v.Tag() != TagBlob {
		return nil, false
	}
	return v.blob, true
}

// Items returns the elements of an Array.
func (v Value) Items() ([]Value, bool) {
	if v.Tag() != TagArray {
		return nil, false
	}
	return v.array, true
}

// Entries returns the (key, value) pairs of a Map, in insertion order.
func (v Value) Entries() ([]MapEntry, bool) {
	if v.Tag() != TagMap {
		return nil, false
	}
	return v.mp, true
}

// ValueMapEntries returns the (key, value) pairs of a ValueMap.
func (v Value) ValueMapEntries() ([]ValueMapEntry, bool) {
	if v.Tag() != TagValueMap {
		return nil, false
	}
	return v.vmap, true
}

// Properties returns the fields of a Class, in declaration order.
func (v Value) Properties() ([]Property, bool) {
	if v.Tag() != TagClass {
		return nil, false
	}
	return v.class, true
}

// Inner returns the wrapped value of an Optional, or ok=false if it is the
// "none" case (or v is not an Optional at all).
func (v Value) Inner() (Value, bool) {
	if v.Tag() != TagOptional || v.optval == nil {
		return Value{}, false
	}
	return *v.optval, true
}

// ── Structural helpers ───────────────────────────────────────

// IsComposite reports whether v's tag is one that can hold children
// (Array, Map, ValueMap, Class, Optional). Leaves do not count toward
// depth; see internal/structwalk.
func (v Value) IsComposite() bool {
	switch v.Tag() {
	case TagArray, TagMap, TagValueMap, TagClass, TagOptional:
		return true
	default:
		return false
	}
}

// Property looks up a named field on a Class. ok is false if v is not a
// Class or the property is absent.
func (v Value) Property(name string) (Property, bool) {
	if v.Tag() != TagClass {
		return Property{}, false
	}
	for _, p := range v.class {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// MapGet looks up a text key on a Map.
func (v Value) MapGet(key string) (Value, bool) {
	if v.Tag() != TagMap {
		return Value{}, false
	}
	for _, e := range v.mp {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// ValueMapGet looks up an arbitrary-key entry on a ValueMap by structural
// equality.
func (v Value) ValueMapGet(key Value) (Value, bool) {
	if v.Tag() != TagValueMap {
		return Value{}, false
	}
	for _, e := range v.vmap {
		if Equal(e.Key, key) {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Len returns the leaf/collection length CandySize and friends operate on:
// character count for text, byte count for blob, element count for
// Array/Map/ValueMap/Class. ok is false for scalar leaves (int/nat/bool/
// float/null) and Optional, which have no well-defined "length".
func (v Value) Len() (int, bool) {
	switch v.Tag() {
	case TagText:
		return len([]rune(v.text)), true
	case TagBlob:
		return len(v.blob), true
	case TagArray:
		return len(v.array), true
	case TagMap:
		return len(v.mp), true
	case TagValueMap:
		return len(v.vmap), true
	case TagClass:
		return len(v.class), true
	default:
		return 0, false
	}
}

// Equal reports deep structural equality between two Values, used for
// ValueMap key lookup and by tests.
func Equal(a, b Value) bool {
	if a.Tag() != b.Tag() {
		return false
	}
	switch a.Tag() {
	case TagInt:
		return a.i == b.i
	case TagNat:
		return a.n == b.n
	case TagBool:
		return a.b == b.b
	case TagFloat:
		return a.f == b.f
	case TagText:
		return a.text == b.text
	case TagBlob:
		if len(a.blob) != len(b.blob) {
			return false
		}
		for i := range a.blob {
			if a.blob[i] != b.blob[i] {
				return false
			}
		}
		return true
	case TagNull:
		return true
	case TagArray:
		if len(a.array) != len(b.array) {
			return false
		}
		for i := range a.array {
			if !Equal(a.array[i], b.array[i]) {
				return false
			}
		}
		return true
	case TagMap:
		if len(a.mp) != len(b.mp) {
			return false
		}
		for i := range a.mp {
			if a.mp[i].Key != b.mp[i].Key || !Equal(a.mp[i].Value, b.mp[i].Value) {
				return false
			}
		}
		return true
	case TagValueMap:
		if len(a.vmap) != len(b.vmap) {
			return false
		}
		for i := range a.vmap {
			if !Equal(a.vmap[i].Key, b.vmap[i].Key) || !Equal(a.vmap[i].Value, b.vmap[i].Value) {
				return false
			}
		}
		return true
	case TagClass:
		if len(a.class) != len(b.class) {
			return false
		}
		for i := range a.class {
			if a.class[i].Name != b.class[i].Name || a.class[i].Immutable != b.class[i].Immutable ||
				!Equal(a.class[i].Value, b.class[i].Value) {
				return false
			}
		}
		return true
	case TagOptional:
		ai, aok := a.Inner()
		bi, bok := b.Inner()
		if aok != bok {
			return false
		}
		if !aok {
			return true
		}
		return Equal(ai, bi)
	default:
		return false
	}
}

// String renders a bounded, content-free description of v's shape — used
// in error messages so the structural validator never leaks offending
// values, only their type and size (spec's "information non-leakage").
func (v Value) String() string {
	switch v.Tag() {
	case TagText:
		n, _ := v.Len()
		return fmt.Sprintf("text(len=%d)", n)
	case TagBlob:
		n, _ := v.Len()
		return fmt.Sprintf("blob(len=%d)", n)
	case TagArray:
		n, _ := v.Len()
		return fmt.Sprintf("array(len=%d)", n)
	case TagMap:
		n, _ := v.Len()
		return fmt.Sprintf("map(len=%d)", n)
	case TagValueMap:
		n, _ := v.Len()
		return fmt.Sprintf("valuemap(len=%d)", n)
	case TagClass:
		n, _ := v.Len()
		return fmt.Sprintf("class(fields=%d)", n)
	case TagOptional:
		if _, ok := v.Inner(); ok {
			return "optional(some)"
		}
		return "optional(none)"
	default:
		return string(v.Tag())
	}
}
