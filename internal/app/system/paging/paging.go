// internal/app/system/paging/paging.go
package paging

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultLimit is the number of rows returned when the caller asks for none.
const DefaultLimit = 50

// MaxLimit caps any requested page size.
const MaxLimit = 200

// Clamp maps a requested limit onto [1, MaxLimit]; zero or negative means
// DefaultLimit.
func Clamp(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// ParseLimit reads the "limit" query parameter. A missing value yields 0
// (let Clamp pick the default); a malformed or negative one is an error.
func ParseLimit(r *http.Request) (int, error) {
	s := query.Get(r, "limit")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", s)
	}
	return n, nil
}
