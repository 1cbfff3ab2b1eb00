package appointment

import (
	"context"
	"time"
)

// Page is one page of the registry listing for a date window.
type Page struct {
	Records []Record
	HasMore bool
}

// Source fetches appointment pages from the external registry.
// Pagination starts at page 0. Authentication and transport belong to
// the implementation.
type Source interface {
	FetchPage(ctx context.Context, from, to time.Time, page int) (*Page, error)
}
