package query

import "strconv"

// Page is a validated pagination window.
type Page struct {
	Number int // 1-based page number
	Size   int // documents per page
}

// ParsePage builds a Page from raw page/limit query parameters. Invalid or
// missing values fall back to page 1 and defSize; limit is clamped to
// maxSize so a single request cannot dump the whole collection.
func ParsePage(pageStr, limitStr string, defSize, maxSize int) Page {
	p := Page{Number: 1, Size: defSize}

	if n, err := strconv.Atoi(pageStr); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
		p.Size = n
	}
	if maxSize > 0 && p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

// Skip returns the number of documents to skip for this page.
func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Size)
}

// Limit returns the page size as an int64 for driver options.
func (p Page) Limit() int64 {
	return int64(p.Size)
}

// TotalPages returns how many pages a result set of total documents spans.
func (p Page) TotalPages(total int64) int {
	if p.Size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
