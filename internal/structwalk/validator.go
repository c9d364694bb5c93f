// Package structwalk implements the depth-bounded, size-bounded DVM
// traversal described in spec.md §4.4: the Structural Validator. It walks
// a dvm.Value under hard depth/size caps, aborting the instant either cap
// is breached (first-failure short-circuit, never after building the
// whole cost), and never includes offending content in its error paths —
// only shape and size (spec's "information non-leakage").
package structwalk

import (
	"fmt"
	"strings"

	"github.com/icdevs/inspect-mo-sub000/pkg/dvm"
	"github.com/icdevs/inspect-mo-sub000/pkg/ierr"
)

// Limits bounds one traversal. A zero value for either field means "no
// bound" for that dimension; callers that need a hard ceiling must set it
// explicitly — this package never invents a default.
type Limits struct {
	MaxDepth int
	MaxSize  int64
}

// Validate walks root under limits, returning the accumulated estimated
// byte size (per the §4.4 estimator: bool=1, numeric=8, float=8,
// text=4·chars, blob=bytes, composites=sum of children + per-entry
// overhead) or the first depth/size violation encountered. Entering any
// composite increments depth by one; leaves do not.
func Validate(root dvm.Value, limits Limits) (int64, error) {
	var total int64
	if err := walk(root, limits, 0, nil, &total); err != nil {
		return total, err
	}
	return total, nil
}

// CheckDepth is a convenience wrapper for CandyDepth: fail the instant any
// path from root exceeds maxDepth, visiting at most the nodes reachable
// within maxDepth+1 levels (spec.md §8 invariant 4).
func CheckDepth(root dvm.Value, maxDepth int) error {
	_, err := Validate(root, Limits{MaxDepth: maxDepth})
	return err
}

// EstimateSize is a convenience wrapper for CandySize on composite values:
// returns the accumulated size, failing fast if it exceeds maxSize before
// the whole tree is summed. maxSize<=0 means "no cap" (only meaningful
// when the caller already bounded depth independently).
func EstimateSize(root dvm.Value, maxSize int64) (int64, error) {
	return Validate(root, Limits{MaxSize: maxSize})
}

func joinPath(path []string) string {
	if len(path) == 0 {
		return "root"
	}
	return "root" + strings.Join(path, "")
}

func depthErr(path []string) error {
	return ierr.NewError(ierr.KindDepth, "candy_depth", "maximum depth exceeded at %s", joinPath(path))
}

func sizeErr(path []string) error {
	return ierr.NewError(ierr.KindSize, "candy_size", "estimated size exceeds maximum at %s", joinPath(path))
}

func addCost(total *int64, limits Limits, path []string, n int64) error {
	*total += n
	if limits.MaxSize > 0 && *total > limits.MaxSize {
		return sizeErr(path)
	}
	return nil
}

func withSeg(path []string, seg string) []string {
	next := make([]string, len(path)+1)
	copy(next, path)
	next[len(path)] = seg
	return next
}

func checkDepth(limits Limits, depth int, path []string) error {
	if limits.MaxDepth > 0 && depth > limits.MaxDepth {
		return depthErr(path)
	}
	return nil
}

func walk(v dvm.Value, limits Limits, depth int, path []string, total *int64) error {
	switch v.Tag() {
	case dvm.TagBool:
		return addCost(total, limits, path, 1)
	case dvm.TagInt, dvm.TagNat, dvm.TagFloat:
		return addCost(total, limits, path, 8)
	case dvm.TagNull:
		return nil
	case dvm.TagText:
		s, _ := v.AsText()
		return addCost(total, limits, path, 4*int64(len([]rune(s))))
	case dvm.TagBlob:
		b, _ := v.AsBlob()
		return addCost(total, limits, path, int64(len(b)))
	case dvm.TagArray:
		nd := depth + 1
		if err := checkDepth(limits, nd, path); err != nil {
			return err
		}
		items, _ := v.Items()
		for i, item := range items {
			p := withSeg(path, fmt.Sprintf("[%d]", i))
			if err := walk(item, limits, nd, p, total); err != nil {
				return err
			}
		}
		return nil
	case dvm.TagMap:
		nd := depth + 1
		if err := checkDepth(limits, nd, path); err != nil {
			return err
		}
		entries, _ := v.Entries()
		for _, e := range entries {
			p := withSeg(path, "."+e.Key)
			if err := addCost(total, limits, p, int64(len(e.Key))); err != nil {
				return err
			}
			if err := walk(e.Value, limits, nd, p, total); err != nil {
				return err
			}
		}
		return nil
	case dvm.TagValueMap:
		nd := depth + 1
		if err := checkDepth(limits, nd, path); err != nil {
			return err
		}
		entries, _ := v.ValueMapEntries()
		for i, e := range entries {
			keyPath := withSeg(path, fmt.Sprintf("<key%d>", i))
			if err := walk(e.Key, limits, nd, keyPath, total); err != nil {
				return err
			}
			valPath := withSeg(path, fmt.Sprintf("<val%d>", i))
			if err := walk(e.Value, limits, nd, valPath, total); err != nil {
				return err
			}
		}
		return nil
	case dvm.TagClass:
		nd := depth + 1
		if err := checkDepth(limits, nd, path); err != nil {
			return err
		}
		props, _ := v.Properties()
		for _, p := range props {
			pp := withSeg(path, "."+p.Name)
			if err := addCost(total, limits, pp, int64(len(p.Name))); err != nil {
				return err
			}
			if err := walk(p.Value, limits, nd, pp, total); err != nil {
				return err
			}
		}
		return nil
	case dvm.TagOptional:
		nd := depth + 1
		if err := checkDepth(limits, nd, path); err != nil {
			return err
		}
		inner, ok := v.Inner()
		if !ok {
			return nil
		}
		return walk(inner, limits, nd, withSeg(path, ".?"), total)
	default:
		return nil
	}
}
