package sanitizer

import (
	"regexp"
	"strings"
)

var (
	rePhoneNoise = regexp.MustCompile(`[\s\-().]+`)
	reE164       = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
)

// NormalizePhone strips formatting characters and returns the number in E.164
// form. Numbers that do not reduce to a valid E.164 string are dropped.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	phone = rePhoneNoise.ReplaceAllString(phone, "")

	if !reE164.MatchString(phone) {
		return ""
	}

	return phone
}
