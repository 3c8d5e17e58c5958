package tracker

import (
	"regexp"
	"strings"
	"unicode"
)

// rawBase64Pattern matches a bare base64 payload of plausible image size.
var rawBase64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/=]{50,}$`)

// looksLikeImage reports whether s has the shape of an image upload: a data
// URI with an image media type, or a bare base64 string once whitespace is
// removed. The payload is never decoded.
func looksLikeImage(s string) bool {
	if strings.HasPrefix(s, "data:image/") {
		return true
	}
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return rawBase64Pattern.MatchString(compact)
}
