package phone

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/suqapp/backend/internal/domain"
)

// localRe matches the local subscriber form: exactly 9 digits, leading 9.
var localRe = regexp.MustCompile(`^9\d{8}$`)

// Canonicalize converts a mobile number to its canonical +<countrycode><subscriber>
// form. It accepts either the local 9-digit form ("911223344") or a number that
// already carries the expected country code ("+251911223344").
func Canonicalize(raw, countryCode string) (string, error) {
	raw = strings.TrimSpace(raw)
	if localRe.MatchString(raw) {
		return countryCode + raw, nil
	}
	if sub, ok := strings.CutPrefix(raw, countryCode); ok && localRe.MatchString(sub) {
		return raw, nil
	}
	return "", fmt.Errorf("invalid mobile number %q: %w", raw, domain.ErrBadRequest)
}
