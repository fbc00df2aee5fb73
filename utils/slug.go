// File: /utils/slug.go
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

const maxSlugLength = 100

// Slugify converts a title into a URL-safe slug: lowercase, with runs of
// non-alphanumeric characters collapsed into single dashes, capped at 100
// characters.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash

	for _, r := range strings.ToLower(title) {
		// ASCII only: the length cap below slices bytes, so multi-byte runes
		// must never reach the slug.
		if (unicode.IsLetter(r) || unicode.IsDigit(r)) && r < 128 {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	return slug
}

// SlugSuffix returns a short stable suffix derived from an external identity,
// used to disambiguate slug collisions between distinct events.
func SlugSuffix(externalID string) string {
	sum := sha256.Sum256([]byte(externalID))
	return hex.EncodeToString(sum[:4])
}
