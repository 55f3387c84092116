package flow

import (
	"errors"
	"regexp"
	"strconv"
)

// ErrTypeMismatch indicates a function received something other than a
// constructed Flow.
var ErrTypeMismatch = errors.New("not a flow")

// externalVersionRe matches the "-v<digits>." revision convention used in
// external version strings such as "R_3.2.4-v2.b4a3f309".
var externalVersionRe = regexp.MustCompile(`-v(\d+)\.`)

// ExternalVersionNumber derives an integer revision from a flow's free-text
// external version. The field is convention-based, so a missing field or an
// unmatched pattern yields 0 rather than an error.
func ExternalVersionNumber(f *Flow) (int, error) {
	if f == nil {
		return 0, ErrTypeMismatch
	}
	if f.ExternalVersion == nil {
		return 0, nil
	}
	m := externalVersionRe.FindStringSubmatch(*f.ExternalVersion)
	if m == nil {
		return 0, nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, nil
	}
	return v, nil
}
