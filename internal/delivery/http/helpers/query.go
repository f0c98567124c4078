package helpers

import (
	"net/http"
	"strconv"
)

// QueryInt reads an optional integer query parameter. Missing or malformed
// values return nil.
func QueryInt(r *http.Request, name string) *int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

// QueryIntDefault reads an integer query parameter, falling back to def when
// the parameter is missing, malformed, or not positive.
func QueryIntDefault(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
