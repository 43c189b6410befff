package models

// ListFilter narrows a list query. Search is a case-insensitive substring
// match on the entity's search field; empty means no filtering.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}
