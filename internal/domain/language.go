package domain

import "regexp"

// languageCode accepts "en" or "en-US".
var languageCode = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

// IsValidLanguageCode checks a target language code before any backend call.
func IsValidLanguageCode(code string) bool {
	return languageCode.MatchString(code)
}
