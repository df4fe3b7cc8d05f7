package http

import (
	"net/http"
	"strings"
)

// sanitizeInput removes control characters other than tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// pathID returns the {id} path segment, or "" when it is blank.
func pathID(r *http.Request) string {
	return sanitizeInput(r.PathValue("id"))
}
