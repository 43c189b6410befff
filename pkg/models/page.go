package models

// Page describes one page of a paginated list.
type Page struct {
	Number   int
	Size     int
	Total    int
	NumPages int
}

// NewPage computes pagination for total items. NumPages is at least 1 so an
// empty list still has a valid first page.
func NewPage(number, size, total int) Page {
	numPages := 1
	if size > 0 && total > 0 {
		numPages = (total + size - 1) / size
	}
	return Page{Number: number, Size: size, Total: total, NumPages: numPages}
}

func (p Page) Valid() bool {
	return p.Number >= 1 && p.Number <= p.NumPages
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.NumPages }
func (p Page) Previous() int     { return p.Number - 1 }
func (p Page) Next() int         { return p.Number + 1 }
func (p Page) IsPaginated() bool { return p.NumPages > 1 }
