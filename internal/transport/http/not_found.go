package http

import "net/http"

// NotFoundHandler is the catch-all route. Paths outside the API
// surface get the same JSON error envelope as everything else.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(notFound)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, codeNotFound, "not found")
}
