package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"weatherdesk.app/models"
)

// minQueryLength is the shortest query worth a network round trip; the UI
// throttles keystroke-driven searches below it.
const minQueryLength = 2

var validate = validator.New()

// ValidatePlace checks a place's coordinate ranges.
func ValidatePlace(place *models.Place) error {
	return validate.Struct(place)
}

// IsSearchableQuery reports whether the trimmed query is long enough for a
// suggestion search.
func IsSearchableQuery(query string) bool {
	return len(strings.TrimSpace(query)) >= minQueryLength
}

// IsNotEmpty checks if string is not empty after trimming
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// TrimAndValidate trims string and validates it's not empty
func TrimAndValidate(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}
