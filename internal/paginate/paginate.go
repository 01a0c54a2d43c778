// Package paginate holds the arithmetic behind the paginated post listing.
package paginate

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrPageOutOfRange is returned for a page index outside 1..total.
var ErrPageOutOfRange = errors.New("page out of range")

// Pagination describes one list page's position among all list pages.
// PrevPath and NextPath are empty when the corresponding link is absent.
type Pagination struct {
	Current  int
	Total    int
	PrevPath string
	NextPath string
}

// HasPrev reports whether a link to the previous page should be shown.
func (p Pagination) HasPrev() bool { return p.PrevPath != "" }

// HasNext reports whether a link to the next page should be shown.
func (p Pagination) HasNext() bool { return p.NextPath != "" }

// PageCount returns how many list pages n posts need at size posts per page.
func PageCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// PagePath maps a 1-based page index to its URL path. The first page lives
// at the site root.
func PagePath(k int) string {
	if k <= 1 {
		return "/"
	}
	return "/blog/" + strconv.Itoa(k)
}

// New returns the pagination state for page current of total.
func New(current, total int) (Pagination, error) {
	if current < 1 || current > total {
		return Pagination{}, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, current, total)
	}
	p := Pagination{Current: current, Total: total}
	if current > 1 {
		p.PrevPath = PagePath(current - 1)
	}
	if current < total {
		p.NextPath = PagePath(current + 1)
	}
	return p, nil
}

// Window returns the half-open index range [start, end) of the posts shown
// on page k, clamped to n.
func Window(n, size, k int) (start, end int) {
	if k < 1 || size <= 0 {
		return 0, 0
	}
	start = (k - 1) * size
	if start > n {
		start = n
	}
	end = start + size
	if end > n {
		end = n
	}
	return start, end
}
