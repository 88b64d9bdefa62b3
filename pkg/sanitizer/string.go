package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeLocation(location string) string {
	return TrimAndNormalize(location)
}

var (
	reNonAlnum       = regexp.MustCompile(`[^0-9\p{L}]+`)
	reMultiUnderbars = regexp.MustCompile(`_+`)
)

// NormalizeAmenity converts free-form amenity labels to the snake_case keys
// stored on spaces, e.g. "High-Speed WiFi" -> "high_speed_wifi".
func NormalizeAmenity(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = reNonAlnum.ReplaceAllString(s, "_")
	s = reMultiUnderbars.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
