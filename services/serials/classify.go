package serials

import (
	"regexp"
	"strings"
)

// Kind is the identifier family of a single code.
type Kind string

const (
	KindIMEI    Kind = "imei"
	KindICCID   Kind = "iccid"
	KindPackage Kind = "package"
	KindUnknown Kind = "unknown"
)

var (
	imeiPattern    = regexp.MustCompile(`^\d{15}$`)
	iccidPattern   = regexp.MustCompile(`(?i)^[0-9A-F]{19,22}$`)
	packagePattern = regexp.MustCompile(`^99\d{23}$`)
)

// Classify reports which identifier format code matches. IMEI wins over ICCID, and a
// 25-digit "99" code is a package number.
func Classify(code string) Kind {
	code = strings.TrimSpace(code)
	switch {
	case isPackage(code):
		return KindPackage
	case imeiPattern.MatchString(code):
		return KindIMEI
	case iccidPattern.MatchString(code):
		return KindICCID
	default:
		return KindUnknown
	}
}

// IsIMEI reports whether code is a 15-digit IMEI.
func IsIMEI(code string) bool { return imeiPattern.MatchString(code) }

// IsICCID reports whether code is a 19 to 22 character ICCID.
func IsICCID(code string) bool { return iccidPattern.MatchString(code) }

func isPackage(code string) bool { return packagePattern.MatchString(code) }

// Canonical normalizes a code for lookups: trimmed, ICCIDs upper-cased.
func Canonical(code string) string {
	code = strings.TrimSpace(code)
	if Classify(code) == KindICCID {
		return strings.ToUpper(code)
	}
	return code
}
