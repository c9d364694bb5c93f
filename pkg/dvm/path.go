package dvm

import "fmt"

// StepKind identifies which composite a PathStep indexes into.
type StepKind int

const (
	StepProperty StepKind = iota // Class field by name
	StepMapKey                   // Map entry by text key
	StepValueKey                 // ValueMap entry by arbitrary Value key
	StepIndex                    // Array element by position
)

// PathStep is one hop of a NestedValidation path: a property name for
// Class, a key for Map, a Value key for ValueMap, or an integer index for
// Array, per spec.md §4.2.
type PathStep struct {
	Kind  StepKind
	Name  string // StepProperty, StepMapKey
	Key   Value  // StepValueKey
	Index int    // StepIndex
}

func PropStep(name string) PathStep { return PathStep{Kind: StepProperty, Name: name} }
func MapKey(key string) PathStep    { return PathStep{Kind: StepMapKey, Name: key} }
func ValueKey(key Value) PathStep   { return PathStep{Kind: StepValueKey, Key: key} }
func Index(i int) PathStep          { return PathStep{Kind: StepIndex, Index: i} }

func (s PathStep) String() string {
	switch s.Kind {
	case StepProperty:
		return "." + s.Name
	case StepMapKey:
		return "{" + s.Name + "}"
	case StepValueKey:
		return fmt.Sprintf("{%s}", s.Key)
	case StepIndex:
		return fmt.Sprintf("[%d]", s.Index)
	default:
		return "?"
	}
}

// Resolve walks path from root step by step, returning the subtree at the
// end of the path. It fails with a structural error (never reachable as a
// panic) the moment a step doesn't apply to the current node's shape.
func Resolve(root Value, path []PathStep) (Value, error) {
	cur := root
	for i, step := range path {
		var ok bool
		switch step.Kind {
		case StepProperty:
			var prop Property
			prop, ok = cur.Property(step.Name)
			if ok {
				cur = prop.Value
			}
		case StepMapKey:
			cur, ok = cur.MapGet(step.Name)
		case StepValueKey:
			cur, ok = cur.ValueMapGet(step.Key)
		case StepIndex:
			var items []Value
			items, ok = cur.Items()
			if ok {
				if step.Index < 0 || step.Index >= len(items) {
					ok = false
				} else {
					cur = items[step.Index]
				}
			}
		}
		if !ok {
			return Value{}, fmt.Errorf("structure: path step %d (%s) not resolvable against %s", i, step, cur)
		}
	}
	return cur, nil
}
