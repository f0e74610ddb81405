// Package params reads typed values out of chi route and query parameters.
package params

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/student-rating/internal/models"
)

// ID parses the positive integer route parameter name.
func ID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("params.ID %q: %w", name, models.ErrInvalidInput)
	}
	return id, nil
}

// Limit parses the query parameter name, returning def when it is absent.
// Values outside [1, max] are clamped.
func Limit(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}
