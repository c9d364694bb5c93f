package dvm

import "regexp"

// PatternKind is one of CandyPattern's fixed, non-extensible named
// pattern kinds. Anything beyond this finite set is a CustomCheck,
// per spec.md §4.2.
type PatternKind string

const (
	PatternAlphanumeric PatternKind = "alphanumeric"
	PatternEmail        PatternKind = "email"
	PatternURL          PatternKind = "url"
	PatternHex          PatternKind = "hex"
	PatternIdentifier   PatternKind = "identifier"
)

var (
	alphanumericRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	emailRe        = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	urlRe          = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://[^\s]+$`)
	hexRe          = regexp.MustCompile(`^(0[xX])?[0-9a-fA-F]+$`)
	identifierRe   = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// MatchPattern reports whether s satisfies the named pattern kind. Unknown
// kinds never match; CandyPattern does not check the kind when it is
// constructed, so a rule with an unknown kind rejects every value.
func MatchPattern(kind PatternKind, s string) bool {
	switch kind {
	case PatternAlphanumeric:
		return alphanumericRe.MatchString(s)
	case PatternEmail:
		return emailRe.MatchString(s)
	case PatternURL:
		return urlRe.MatchString(s)
	case PatternHex:
		return hexRe.MatchString(s)
	case PatternIdentifier:
		return identifierRe.MatchString(s)
	default:
		return false
	}
}
