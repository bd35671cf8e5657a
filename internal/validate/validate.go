// Package validate holds the field-shape checks applied to request
// bodies before any business logic runs.
package validate

import "regexp"

var (
	usernameRe = regexp.MustCompile(`(?i)^[A-Z0-9_]{3,50}$`)
	emailRe    = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,6}$`)
)

// Username accepts 3-50 word characters (letters, digits, underscore).
func Username(s string) bool { return usernameRe.MatchString(s) }

// Password accepts any 8-50 characters.
func Password(s string) bool { return len(s) >= 8 && len(s) <= 50 }

// Email accepts a 3-50 character address of the usual shape.
func Email(s string) bool {
	return len(s) >= 3 && len(s) <= 50 && emailRe.MatchString(s)
}
