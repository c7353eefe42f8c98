package export

import (
	"strings"
	"time"
)

// FallbackTitle names exports whose title sanitizes to nothing.
const FallbackTitle = "document"

// SanitizeTitle lowercases title and turns every run of characters outside
// [a-z0-9] into a single underscore. Leading and trailing underscores are
// dropped.
func SanitizeTitle(title string) string {
	var b strings.Builder
	pending := false

	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	if b.Len() == 0 {
		return FallbackTitle
	}
	return b.String()
}

// FileName builds "{title}_customized_{YYYY-MM-DD}.{ext}".
func FileName(title string, date time.Time, format Format) string {
	return SanitizeTitle(title) + "_customized_" + date.Format(time.DateOnly) + "." + string(format)
}
