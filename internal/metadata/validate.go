package metadata

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode"
)

// ErrInvalidValue is wrapped by every error returned from Validate.
var ErrInvalidValue = errors.New("invalid metadata value")

// Keys whose values must be non-negative integers.
var numericKeys = []string{
	"tracknumber", "totaltracks",
	"discnumber", "totaldiscs",
	"movementnumber", "movementtotal",
}

// Validate checks values that are later converted to numbers or raw bytes.
// Every offending key is reported; the result wraps ErrInvalidValue.
func (m *Metadata) Validate() error {
	var errs []error
	for _, key := range numericKeys {
		for _, v := range m.values[key] {
			if _, err := strconv.ParseUint(v, 10, 32); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q is not a non-negative integer", ErrInvalidValue, key, v))
			}
		}
	}
	for _, v := range m.values["~rating"] {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, fmt.Errorf("%w: ~rating=%q is not a non-negative number", ErrInvalidValue, v))
		}
	}
	for _, v := range m.values["musicbrainz_recordingid"] {
		if !isASCII(v) {
			errs = append(errs, fmt.Errorf("%w: musicbrainz_recordingid=%q is not ASCII", ErrInvalidValue, v))
		}
	}
	return errors.Join(errs...)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
