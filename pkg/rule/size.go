package rule

import (
	"unicode/utf8"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/ierr"
)

// ── TextSize ─────────────────────────────────────────────────

type textSize[M any] struct {
	accessor func(M) string
	min, max *int
}

// TextSize fails if the character count (not byte length) of
// accessor(payload) falls outside [min, max]. Either bound may be nil.
func TextSize[M any](accessor func(M) string, min, max *int) Rule[M] {
	return textSize[M]{accessor: accessor, min: min, max: max}
}

func (r textSize[M]) isGate() bool { return false }
func (r textSize[M]) kind() string { return "text_size" }
func (r textSize[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	s := r.accessor(payload)
	n := utf8.RuneCountInString(s)
	if r.min != nil && n < *r.min {
		return newErr(ierr.KindSize, r.kind(), "text shorter than minimum %d characters (got %d)", *r.min, n)
	}
	if r.max != nil && n > *r.max {
		return newErr(ierr.KindSize, r.kind(), "text longer than maximum %d characters (got %d)", *r.max, n)
	}
	return nil
}

// ── BlobSize ─────────────────────────────────────────────────

type blobSize[M any] struct {
	accessor func(M) []byte
	min, max *int
}

// BlobSize fails if len(accessor(payload)) falls outside [min, max].
func BlobSize[M any](accessor func(M) []byte, min, max *int) Rule[M] {
	return blobSize[M]{accessor: accessor, min: min, max: max}
}

func (r blobSize[M]) isGate() bool { return false }
func (r blobSize[M]) kind() string { return "blob_size" }
func (r blobSize[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	b := r.accessor(payload)
	n := len(b)
	if r.min != nil && n < *r.min {
		return newErr(ierr.KindSize, r.kind(), "blob shorter than minimum %d bytes (got %d)", *r.min, n)
	}
	if r.max != nil && n > *r.max {
		return newErr(ierr.KindSize, r.kind(), "blob longer than maximum %d bytes (got %d)", *r.max, n)
	}
	return nil
}

// ── NatValue ─────────────────────────────────────────────────

type natValue[M any] struct {
	accessor func(M) uint64
	min, max *uint64
}

// NatValue fails if accessor(payload) falls outside [min, max] (inclusive).
func NatValue[M any](accessor func(M) uint64, min, max *uint64) Rule[M] {
	return natValue[M]{accessor: accessor, min: min, max: max}
}

func (r natValue[M]) isGate() bool { return false }
func (r natValue[M]) kind() string { return "nat_value" }
func (r natValue[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	if r.min != nil && v < *r.min {
		return newErr(ierr.KindRange, r.kind(), "value %d below minimum %d", v, *r.min)
	}
	if r.max != nil && v > *r.max {
		return newErr(ierr.KindRange, r.kind(), "value %d above maximum %d", v, *r.max)
	}
	return nil
}

// ── IntValue ─────────────────────────────────────────────────

type intValue[M any] struct {
	accessor func(M) int64
	min, max *int64
}

// IntValue fails if accessor(payload) falls outside [min, max] (inclusive).
func IntValue[M any](accessor func(M) int64, min, max *int64) Rule[M] {
	return intValue[M]{accessor: accessor, min: min, max: max}
}

func (r intValue[M]) isGate() bool { return false }
func (r intValue[M]) kind() string { return "int_value" }
func (r intValue[M]) evaluate(_ *ictx.EvalContext, payload M) error {
	v := r.accessor(payload)
	if r.min != nil && v < *r.min {
		return newErr(ierr.KindRange, r.kind(), "value %d below minimum %d", v, *r.min)
	}
	if r.max != nil && v > *r.max {
		return newErr(ierr.KindRange, r.kind(), "value %d above maximum %d", v, *r.max)
	}
	return nil
}
