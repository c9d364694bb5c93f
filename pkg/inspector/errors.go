package inspector

import "github.com/icdevs/inspect-mo-sub000/pkg/ierr"

// Kind and Error are re-exported from pkg/ierr so callers of pkg/inspector
// never need to import the leaf error package directly.
type (
	Kind  = ierr.Kind
	Error = ierr.Error
)

const (
	KindSize           = ierr.KindSize
	KindRange          = ierr.KindRange
	KindType           = ierr.KindType
	KindStructure      = ierr.KindStructure
	KindDepth          = ierr.KindDepth
	KindAuth           = ierr.KindAuth
	KindPhaseForbidden = ierr.KindPhaseForbidden
	KindBlocked        = ierr.KindBlocked
	KindCustom         = ierr.KindCustom
	KindRateLimit      = ierr.KindRateLimit
	KindDispatch       = ierr.KindDispatch
)

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool { return ierr.Is(err, kind) }
