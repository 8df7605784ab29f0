package tags

import (
	"fmt"
	"regexp"
	"strconv"
)

var dateSepRe = regexp.MustCompile(`[^0-9]+`)

// SanitizeDate normalizes a free form date to YYYY, YYYY-MM or YYYY-MM-DD.
// Trailing zero parts are dropped ("1980-00-00" becomes "1980"). It returns
// an empty string when no year can be found.
func SanitizeDate(date string) string {
	var parts []int
	for _, s := range dateSepRe.Split(date, -1) {
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			break
		}
		parts = append(parts, n)
		if len(parts) == 3 {
			break
		}
	}
	for len(parts) > 0 && parts[len(parts)-1] == 0 {
		parts = parts[:len(parts)-1]
	}

	switch len(parts) {
	case 1:
		return fmt.Sprintf("%04d", parts[0])
	case 2:
		return fmt.Sprintf("%04d-%02d", parts[0], parts[1])
	case 3:
		return fmt.Sprintf("%04d-%02d-%02d", parts[0], parts[1], parts[2])
	}
	return ""
}
