package export

import "strings"

// DefaultBaseName is used when a title sanitizes to nothing.
const DefaultBaseName = "guide"

// SafeName derives a filename base from a title: lowercased, with every
// character outside [a-z0-9] replaced by an underscore.
func SafeName(title string) string {
	if title == "" {
		return DefaultBaseName
	}
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
