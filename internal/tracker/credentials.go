package tracker

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// Credentials is the Basic Auth pair participants must present for tasks 2 and 3.
type Credentials struct {
	Username string
	Password string
}

// Match reports whether an Authorization header value carries these credentials.
//
// The header must use the Basic scheme. The decoded value is split at the
// first colon into user and password (RFC 7617), and both fields must match.
// Base64 without padding is accepted.
func (c Credentials) Match(authorization string) bool {
	const prefix = "Basic "
	if !strings.HasPrefix(authorization, prefix) {
		return false
	}

	encoded := strings.TrimSpace(authorization[len(prefix):])
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return false
		}
	}

	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(c.Password)) == 1
	return userOK && passOK
}
