package rule

import (
	"github.com/icdevs/inspect-mo-sub000/pkg/dvm"
	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/ierr"
	"github.com/icdevs/inspect-mo-sub000/internal/structwalk"
)

func structLimits(ec *ictx.EvalContext, maxDepth int) structwalk.Limits {
	d := ec.Limits.MaxDepth
	if maxDepth > 0 {
		d = maxDepth
	}
	return structwalk.Limits{MaxDepth: d, MaxSize: ec.Limits.MaxSize}
}

// ── CandyType ────────────────────────────────────────────────

type candyType[M any] struct {
	accessor func(M) dvm.Value
	expected dvm.Tag
}

// CandyType fails unless accessor(payload)'s outermost tag equals expected.
func CandyType[M any](accessor func(M) dvm.Value, expected dvm.Tag) Rule[M] {
	return candyType[M]{accessor: accessor, expected: expected}
}

func (candyType[M]) isGate() bool { return false }
func (candyType[M]) kind() string { return "candy_type" }
func (r candyType[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	if v.Tag() != r.expected {
		return newErr(ierr.KindType, r.kind(), "expected %s, got %s", r.expected, v.Tag())
	}
	return nil
}

// ── CandySize ────────────────────────────────────────────────

type candySize[M any] struct {
	accessor func(M) dvm.Value
	min, max *int
}

// CandySize fails if the value's length (text/blob: rune/byte count) or,
// for composites (array/map/valuemap/class), its estimated byte footprint
// falls outside [min, max]. Composites always walk via structwalk.Validate
// rather than using their element count, so a field holding a handful of
// oversized elements can't slip under a byte-oriented max just because it
// has few top-level entries.
func CandySize[M any](accessor func(M) dvm.Value, min, max *int) Rule[M] {
	return candySize[M]{accessor: accessor, min: min, max: max}
}

func (candySize[M]) isGate() bool { return false }
func (candySize[M]) kind() string { return "candy_size" }
func (r candySize[M]) evaluate(ec *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)

	var n int
	switch v.Tag() {
	case dvm.TagText, dvm.TagBlob:
		direct, _ := v.Len()
		n = direct
	default:
		limits := structLimits(ec, 0)
		maxSize := limits.MaxSize
		if r.max != nil {
			maxSize = int64(*r.max)
		}
		estimate, err := structwalk.Validate(v, structwalk.Limits{MaxDepth: limits.MaxDepth, MaxSize: maxSize})
		if err != nil {
			return err
		}
		n = int(estimate)
	}

	if r.min != nil && n < *r.min {
		return newErr(ierr.KindSize, r.kind(), "size %d below minimum %d", n, *r.min)
	}
	if r.max != nil && n > *r.max {
		return newErr(ierr.KindSize, r.kind(), "size %d above maximum %d", n, *r.max)
	}
	return nil
}

// ── CandyDepth ───────────────────────────────────────────────

type candyDepth[M any] struct {
	accessor func(M) dvm.Value
	maxDepth int
}

// CandyDepth fails if any path from accessor(payload)'s root exceeds
// maxDepth, in time proportional to maxDepth rather than the input's
// actual depth (spec.md §8 invariant 4 / S3). A maxDepth of 0 falls back
// to the EvalContext's StructuralLimits.MaxDepth.
func CandyDepth[M any](accessor func(M) dvm.Value, maxDepth int) Rule[M] {
	return candyDepth[M]{accessor: accessor, maxDepth: maxDepth}
}

func (candyDepth[M]) isGate() bool { return false }
func (candyDepth[M]) kind() string { return "candy_depth" }
func (r candyDepth[M]) evaluate(ec *ictx.EvalContext, payload M) error {
	return structwalk.CheckDepth(r.accessor(payload), structLimits(ec, r.maxDepth).MaxDepth)
}

// ── CandyPattern ─────────────────────────────────────────────

type candyPattern[M any] struct {
	accessor func(M) dvm.Value
	kind_    dvm.PatternKind
}

// CandyPattern applies one of the finite named pattern kinds to a text
// leaf. Anything beyond this fixed set is a CustomCheck, per spec.md §4.2.
func CandyPattern[M any](accessor func(M) dvm.Value, pattern dvm.PatternKind) Rule[M] {
	return candyPattern[M]{accessor: accessor, kind_: pattern}
}

func (candyPattern[M]) isGate() bool { return false }
func (candyPattern[M]) kind() string { return "candy_pattern" }
func (r candyPattern[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	s, ok := v.AsText()
	if !ok {
		return newErr(ierr.KindType, r.kind(), "candy_pattern requires text, got %s", v.Tag())
	}
	if !dvm.MatchPattern(r.kind_, s) {
		return newErr(ierr.KindStructure, r.kind(), "text does not match pattern %q", r.kind_)
	}
	return nil
}

// ── CandyRange ───────────────────────────────────────────────

type candyRange[M any] struct {
	accessor func(M) dvm.Value
	min, max *float64
}

// CandyRange compares a numeric DVM leaf (int/nat/float) to bounds;
// non-numeric leaves fail with a type mismatch.
func CandyRange[M any](accessor func(M) dvm.Value, min, max *float64) Rule[M] {
	return candyRange[M]{accessor: accessor, min: min, max: max}
}

func (candyRange[M]) isGate() bool { return false }
func (candyRange[M]) kind() string { return "candy_range" }
func (r candyRange[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	var n float64
	switch v.Tag() {
	case dvm.TagInt:
		i, _ := v.AsInt()
		n = float64(i)
	case dvm.TagNat:
		u, _ := v.AsNat()
		n = float64(u)
	case dvm.TagFloat:
		n, _ = v.AsFloat()
	default:
		return newErr(ierr.KindType, r.kind(), "type mismatch")
	}
	if r.min != nil && n < *r.min {
		return newErr(ierr.KindRange, r.kind(), "value %g below minimum %g", n, *r.min)
	}
	if r.max != nil && n > *r.max {
		return newErr(ierr.KindRange, r.kind(), "value %g above maximum %g", n, *r.max)
	}
	return nil
}

// ── Property rules (Class) ───────────────────────────────────

type propertyExists[M any] struct {
	accessor func(M) dvm.Value
	name     string
}

// PropertyExists requires the outer DVM to be Class and to have name.
func PropertyExists[M any](accessor func(M) dvm.Value, name string) Rule[M] {
	return propertyExists[M]{accessor: accessor, name: name}
}

func (propertyExists[M]) isGate() bool { return false }
func (propertyExists[M]) kind() string { return "property_exists" }
func (r propertyExists[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	if v.Tag() != dvm.TagClass {
		return newErr(ierr.KindStructure, r.kind(), "expected class, got %s", v.Tag())
	}
	if _, ok := v.Property(r.name); !ok {
		return newErr(ierr.KindStructure, r.kind(), "missing property %q", r.name)
	}
	return nil
}

type propertyType[M any] struct {
	accessor func(M) dvm.Value
	name     string
	expected dvm.Tag
}

// PropertyType requires property name to exist and have tag expected.
func PropertyType[M any](accessor func(M) dvm.Value, name string, expected dvm.Tag) Rule[M] {
	return propertyType[M]{accessor: accessor, name: name, expected: expected}
}

func (propertyType[M]) isGate() bool { return false }
func (propertyType[M]) kind() string { return "property_type" }
func (r propertyType[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	if v.Tag() != dvm.TagClass {
		return newErr(ierr.KindStructure, r.kind(), "expected class, got %s", v.Tag())
	}
	p, ok := v.Property(r.name)
	if !ok {
		return newErr(ierr.KindStructure, r.kind(), "missing property %q", r.name)
	}
	if p.Value.Tag() != r.expected {
		return newErr(ierr.KindType, r.kind(), "property %q: expected %s, got %s", r.name, r.expected, p.Value.Tag())
	}
	return nil
}

type propertySize[M any] struct {
	accessor func(M) dvm.Value
	name     string
	min, max *int
}

// PropertySize requires property name to exist and have a length within
// [min, max] (same length semantics as CandySize).
func PropertySize[M any](accessor func(M) dvm.Value, name string, min, max *int) Rule[M] {
	return propertySize[M]{accessor: accessor, name: name, min: min, max: max}
}

func (propertySize[M]) isGate() bool { return false }
func (propertySize[M]) kind() string { return "property_size" }
func (r propertySize[M]) evaluate(ec *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	if v.Tag() != dvm.TagClass {
		return newErr(ierr.KindStructure, r.kind(), "expected class, got %s", v.Tag())
	}
	p, ok := v.Property(r.name)
	if !ok {
		return newErr(ierr.KindStructure, r.kind(), "missing property %q", r.name)
	}
	inner := candySize[M]{accessor: func(M) dvm.Value { return p.Value }, min: r.min, max: r.max}
	return inner.evaluate(ec, payload)
}

// ── Array rules ──────────────────────────────────────────────

type arrayLength[M any] struct {
	accessor func(M) dvm.Value
	min, max *int
}

// ArrayLength requires the outer DVM to be Array with element count in
// [min, max].
func ArrayLength[M any](accessor func(M) dvm.Value, min, max *int) Rule[M] {
	return arrayLength[M]{accessor: accessor, min: min, max: max}
}

func (arrayLength[M]) isGate() bool { return false }
func (arrayLength[M]) kind() string { return "array_length" }
func (r arrayLength[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	items, ok := v.Items()
	if !ok {
		return newErr(ierr.KindStructure, r.kind(), "expected array, got %s", v.Tag())
	}
	n := len(items)
	if r.min != nil && n < *r.min {
		return newErr(ierr.KindSize, r.kind(), "length %d below minimum %d", n, *r.min)
	}
	if r.max != nil && n > *r.max {
		return newErr(ierr.KindSize, r.kind(), "length %d above maximum %d", n, *r.max)
	}
	return nil
}

type arrayItemType[M any] struct {
	accessor func(M) dvm.Value
	expected dvm.Tag
}

// ArrayItemType requires every element of accessor(payload) to have tag
// expected.
func ArrayItemType[M any](accessor func(M) dvm.Value, expected dvm.Tag) Rule[M] {
	return arrayItemType[M]{accessor: accessor, expected: expected}
}

func (arrayItemType[M]) isGate() bool { return false }
func (arrayItemType[M]) kind() string { return "array_item_type" }
func (r arrayItemType[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	items, ok := v.Items()
	if !ok {
		return newErr(ierr.KindStructure, r.kind(), "expected array, got %s", v.Tag())
	}
	for i, item := range items {
		if item.Tag() != r.expected {
			return newErr(ierr.KindType, r.kind(), "element %d: expected %s, got %s", i, r.expected, item.Tag())
		}
	}
	return nil
}

// ── Map / ValueMap rules ─────────────────────────────────────

type mapKeyExists[M any] struct {
	accessor func(M) dvm.Value
	key      string
}

// MapKeyExists requires the outer DVM to be Map and contain key.
func MapKeyExists[M any](accessor func(M) dvm.Value, key string) Rule[M] {
	return mapKeyExists[M]{accessor: accessor, key: key}
}

func (mapKeyExists[M]) isGate() bool { return false }
func (mapKeyExists[M]) kind() string { return "map_key_exists" }
func (r mapKeyExists[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	if v.Tag() != dvm.TagMap {
		return newErr(ierr.KindStructure, r.kind(), "expected map, got %s", v.Tag())
	}
	if _, ok := v.MapGet(r.key); !ok {
		return newErr(ierr.KindStructure, r.kind(), "missing key %q", r.key)
	}
	return nil
}

type mapSize[M any] struct {
	accessor func(M) dvm.Value
	min, max *int
}

// MapSize requires the outer DVM to be Map with entry count in [min, max].
func MapSize[M any](accessor func(M) dvm.Value, min, max *int) Rule[M] {
	return mapSize[M]{accessor: accessor, min: min, max: max}
}

func (mapSize[M]) isGate() bool { return false }
func (mapSize[M]) kind() string { return "map_size" }
func (r mapSize[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	entries, ok := v.Entries()
	if !ok {
		return newErr(ierr.KindStructure, r.kind(), "expected map, got %s", v.Tag())
	}
	n := len(entries)
	if r.min != nil && n < *r.min {
		return newErr(ierr.KindSize, r.kind(), "size %d below minimum %d", n, *r.min)
	}
	if r.max != nil && n > *r.max {
		return newErr(ierr.KindSize, r.kind(), "size %d above maximum %d", n, *r.max)
	}
	return nil
}

type valueMapKeyExists[M any] struct {
	accessor func(M) dvm.Value
	key      dvm.Value
}

// ValueMapKeyExists is MapKeyExists' analogue for ValueMap, whose keys may
// be any DVM value.
func ValueMapKeyExists[M any](accessor func(M) dvm.Value, key dvm.Value) Rule[M] {
	return valueMapKeyExists[M]{accessor: accessor, key: key}
}

func (valueMapKeyExists[M]) isGate() bool { return false }
func (valueMapKeyExists[M]) kind() string { return "value_map_key_exists" }
func (r valueMapKeyExists[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	if v.Tag() != dvm.TagValueMap {
		return newErr(ierr.KindStructure, r.kind(), "expected valuemap, got %s", v.Tag())
	}
	if _, ok := v.ValueMapGet(r.key); !ok {
		return newErr(ierr.KindStructure, r.kind(), "missing key %s", r.key)
	}
	return nil
}

type valueMapSize[M any] struct {
	accessor func(M) dvm.Value
	min, max *int
}

// ValueMapSize is MapSize's analogue for ValueMap.
func ValueMapSize[M any](accessor func(M) dvm.Value, min, max *int) Rule[M] {
	return valueMapSize[M]{accessor: accessor, min: min, max: max}
}

func (valueMapSize[M]) isGate() bool { return false }
func (valueMapSize[M]) kind() string { return "value_map_size" }
func (r valueMapSize[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	entries, ok := v.ValueMapEntries()
	if !ok {
		return newErr(ierr.KindStructure, r.kind(), "expected valuemap, got %s", v.Tag())
	}
	n := len(entries)
	if r.min != nil && n < *r.min {
		return newErr(ierr.KindSize, r.kind(), "size %d below minimum %d", n, *r.min)
	}
	if r.max != nil && n > *r.max {
		return newErr(ierr.KindSize, r.kind(), "size %d above maximum %d", n, *r.max)
	}
	return nil
}

// ── NestedValidation ─────────────────────────────────────────

type nestedValidation[M any] struct {
	accessor func(M) dvm.Value
	path     []dvm.PathStep
	inner    []Rule[dvm.Value]
}

// NestedValidation walks path against accessor(payload) step by step —
// each step a property name (Class), a key (Map), a DVM-key (ValueMap),
// or an index (Array) — then applies inner in declared order with
// short-circuit against the resolved subtree.
func NestedValidation[M any](accessor func(M) dvm.Value, path []dvm.PathStep, inner []Rule[dvm.Value]) Rule[M] {
	return nestedValidation[M]{accessor: accessor, path: path, inner: inner}
}

func (nestedValidation[M]) isGate() bool { return false }
func (nestedValidation[M]) kind() string { return "nested_validation" }
func (r nestedValidation[M]) evaluate(ec *ictx.EvalContext, payload M) error {
	root := r.accessor(payload)
	sub, err := dvm.Resolve(root, r.path)
	if err != nil {
		return ierr.WrapError(ierr.KindStructure, r.kind(), err)
	}
	for _, ir := range r.inner {
		if err := Evaluate(ir, ec, sub); err != nil {
			return err
		}
	}
	return nil
}
