package utils

import "strings"

// Slugify derives a URL-safe slug from a listing's display name: lowercase,
// runs of non-alphanumeric characters collapsed to a single hyphen, leading
// and trailing hyphens trimmed. The derivation is lossy but deterministic.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
