package catalog

import (
	"context"
	"errors"
)

var ErrPagerDone = errors.New("catalog pager exhausted")

// Pager walks the feed page by page until the backend stops returning a cursor.
type Pager struct {
	svc    Service
	limit  int
	cursor string
	done   bool
}

func NewPager(svc Service, cursor string, limit int) *Pager {
	return &Pager{svc: svc, cursor: cursor, limit: clampLimit(limit)}
}

func (p *Pager) HasMore() bool { return !p.done }

// Cursor is the position the next call to Next will read from.
func (p *Pager) Cursor() string { return p.cursor }

func (p *Pager) Next(ctx context.Context) (Page, error) {
	if p.done {
		return Page{}, ErrPagerDone
	}

	page, err := p.svc.Feed(ctx, p.cursor, p.limit)
	if err != nil {
		return Page{}, err
	}

	if page.NextCursor == "" || page.NextCursor == p.cursor {
		p.done = true
	}
	p.cursor = page.NextCursor
	return page, nil
}

// Collect reads up to maxPages pages and merges them into one page whose
// NextCursor continues after the last page read.
func (p *Pager) Collect(ctx context.Context, maxPages int) (Page, error) {
	merged := Page{Items: []Product{}}
	for i := 0; i < maxPages && p.HasMore(); i++ {
		page, err := p.Next(ctx)
		if err != nil {
			return Page{}, err
		}
		merged.Items = append(merged.Items, page.Items...)
	}
	if p.HasMore() {
		merged.NextCursor = p.cursor
	}
	return merged, nil
}
