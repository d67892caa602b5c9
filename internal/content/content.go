package content

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxDisplayNameLength bounds display names in runes.
const MaxDisplayNameLength = 64

var policy = bluemonday.StrictPolicy()

// Sanitize strips every HTML element from user text. Entities are decoded
// afterwards so plain text such as "it's" or "a < b" round-trips unchanged;
// clients render messages as text, never as markup.
func Sanitize(input string) string {
	return html.UnescapeString(policy.Sanitize(input))
}

// ValidateDisplayName checks a sanitized display name.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("display name cannot be empty")
	}
	if n := utf8.RuneCountInString(name); n > MaxDisplayNameLength {
		return fmt.Errorf("display name is %d characters, at most %d allowed", n, MaxDisplayNameLength)
	}
	return nil
}
