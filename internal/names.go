package internal

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// HDF4 names dimensions without an explicit name fakeDim0, fakeDim1, ...
	fakeDimMarker = "fakeDim"
	// Matches names containing fillvalue or fill_value, case-insensitively.
	fillPattern = `(?i)fill_?value`
)

var (
	fillRe *regexp.Regexp
)

func init() {
	var err error
	fillRe, err = regexp.Compile(fillPattern)
	if err != nil {
		panic(err)
	}
}

// IsFakeDim returns true if name carries the synthetic dimension marker.
func IsFakeDim(name string) bool {
	return strings.Contains(name, fakeDimMarker)
}

// FakeDimName is the name HDF4 gives to unnamed dimension i.
func FakeDimName(i int) string {
	return fakeDimMarker + strconv.Itoa(i)
}

// IsInternalName returns true for underscore-prefixed names.
func IsInternalName(name string) bool {
	return strings.HasPrefix(name, "_")
}

// IsFillValueName returns true if name spells a fill value attribute,
// e.g. "_FillValue", "fillvalue" or "Fill_Value".
func IsFillValueName(name string) bool {
	return fillRe.MatchString(name)
}
