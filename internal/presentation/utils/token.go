// Package utils holds small helpers shared by the HTTP handlers.
package utils

import (
	"net/http"
	"strings"
)

// ExtractToken pulls the access token from the Authorization header, falling
// back to the token query parameter. Browser websocket clients cannot set
// headers, so the query form matters for the upgrade endpoints.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
