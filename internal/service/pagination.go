package service

import "github.com/andriinero/inkspace-backend/internal/config"

// PageRequest carries the raw limit and page query values. Nil means the
// parameter was absent.
type PageRequest struct {
	Limit *int
	Page  *int
}

// Page is a resolved page window. Limit 0 means no limit.
type Page struct {
	Limit  int
	Index  int
	Offset int
}

// Number is the 1-based page number.
func (p Page) Number() int { return p.Index + 1 }

// PageResult is one page of items with the size of the whole set.
type PageResult[T any] struct {
	Items []T
	Total int64
	Page  Page
}

// ResolvePage turns req into a window over total items.
//
// The limit defaults to defaultLimit and any limit outside 1..MaxPageSize
// becomes 0. The page defaults to 1; a page below 1 or past the last page
// resolves to the first page, as does any page when the limit is 0.
func ResolvePage(req PageRequest, defaultLimit int, total int64) Page {
	limit := defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if limit < 1 || limit > config.MaxPageSize {
		limit = 0
	}

	number := 1
	if req.Page != nil {
		number = *req.Page
	}
	if limit == 0 {
		return Page{}
	}

	pages := (total + int64(limit) - 1) / int64(limit)
	if number < 1 || int64(number) > pages {
		return Page{Limit: limit}
	}
	index := number - 1
	return Page{Limit: limit, Index: index, Offset: index * limit}
}
