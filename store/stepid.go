package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedStepID is returned when a packed step id can't be parsed.
var ErrMalformedStepID = errors.New("malformed step id")

// PackStepID encodes page coordinates in the compact form used for the
// names of step objects: "<page>/<pageOccurrence>/<stepInPageOccurrence>".
// Links that were handed out rely on this exact format.
func PackStepID(page string, pageOccurrence, stepInPageOccurrence int) string {
	return page + "/" + strconv.Itoa(pageOccurrence) + "/" + strconv.Itoa(stepInPageOccurrence)
}

// UnpackStepID is the inverse of PackStepID. The page name is everything
// before the last two slashes, so page names may contain slashes.
func UnpackStepID(packed string) (page string, pageOccurrence, stepInPageOccurrence int, err error) {
	last := strings.LastIndex(packed, "/")
	if last < 0 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformedStepID, packed)
	}

	middle := strings.LastIndex(packed[:last], "/")
	if middle <= 0 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformedStepID, packed)
	}

	pageOccurrence, err = parseOccurrence(packed[middle+1 : last])
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformedStepID, packed)
	}

	stepInPageOccurrence, err = parseOccurrence(packed[last+1:])
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformedStepID, packed)
	}

	return packed[:middle], pageOccurrence, stepInPageOccurrence, nil
}

// parseOccurrence only accepts plain decimal digits, so that a parsed id
// always packs back to the same string.
func parseOccurrence(s string) (int, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, errors.New("not a canonical occurrence")
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.New("not a canonical occurrence")
		}
	}

	return strconv.Atoi(s)
}
