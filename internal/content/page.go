// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"strconv"

	"github.com/olegiv/diocese-go/internal/backend"
)

// Page is one page of a listing. Number is 1-based.
type Page[T any] struct {
	Items  []T
	Number int
	Size   int
	Total  int
}

// TotalPages returns the number of pages, at least 1.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.Size - 1) / p.Size
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages() }

// Empty reports whether the page has no items.
func (p Page[T]) Empty() bool { return len(p.Items) == 0 }

// ParsePage reads a page number from a query parameter. Anything that is
// not a positive integer is page 1.
func ParsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate slices an already loaded list. A page past the end is empty,
// never an error.
func Paginate[T any](items []T, page, size int) Page[T] {
	if page < 1 {
		page = 1
	}
	p := Page[T]{Number: page, Size: size, Total: len(items), Items: []T{}}
	if size <= 0 {
		p.Items = items
		return p
	}
	if page-1 > len(items)/size {
		return p
	}
	start := (page - 1) * size
	if start >= len(items) {
		return p
	}
	end := min(start+size, len(items))
	p.Items = items[start:end]
	return p
}

// fetchPage loads one page of q from the backend with COUNT plus
// LIMIT/OFFSET, then applies gate to the returned rows.
func fetchPage[T any](ctx context.Context, c backend.Client, q backend.Query, page, size int, gate func(T) bool) (Page[T], error) {
	if page < 1 {
		page = 1
	}
	p := Page[T]{Number: page, Size: size, Items: []T{}}

	total, err := c.Count(ctx, q)
	if err != nil {
		return p, err
	}
	p.Total = total

	if page-1 > total/size {
		return p, nil
	}
	offset := (page - 1) * size
	if offset >= total {
		return p, nil
	}

	items, err := list[T](ctx, c, q.Limit(size).Offset(offset))
	if err != nil {
		return p, err
	}
	p.Items = keepN(items, gate, size)
	return p, nil
}
