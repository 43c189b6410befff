package admin

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"taxipark/pkg/models"
)

const (
	pageParam          = "p"
	defaultListPerPage = 100
)

// Filter is one list_filter block of the changelist sidebar.
type Filter struct {
	Field   string
	Title   string
	Options []FilterOption
}

type FilterOption struct {
	Label    string
	URL      string
	Selected bool
}

// search keeps rows where any of fields contains q, ignoring case.
func search(rows []Row, fields []string, q string) []Row {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" || len(fields) == 0 {
		return rows
	}
	var out []Row
	for _, r := range rows {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(r.Values[f]), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// filter keeps rows whose values equal every active filter.
func filter(rows []Row, active map[string]string) []Row {
	if len(active) == 0 {
		return rows
	}
	var out []Row
	for _, r := range rows {
		match := true
		for f, v := range active {
			if r.Values[f] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, r)
		}
	}
	return out
}

// activeFilters picks the list_filter parameters present in query.
func activeFilters(fields []string, query url.Values) map[string]string {
	active := make(map[string]string)
	for _, f := range fields {
		if v, ok := query[f]; ok && len(v) > 0 {
			active[f] = v[0]
		}
	}
	return active
}

// buildFilters lists the distinct values of each filter field. Option links
// keep the rest of the query string.
func buildFilters(fields []string, rows []Row, query url.Values) []Filter {
	filters := make([]Filter, 0, len(fields))
	for _, f := range fields {
		distinct := make(map[string]bool)
		for _, r := range rows {
			distinct[r.Values[f]] = true
		}
		values := make([]string, 0, len(distinct))
		for v := range distinct {
			values = append(values, v)
		}
		sort.Strings(values)

		current, selected := query[f]
		options := []FilterOption{{Label: "All", URL: withParam(query, f, ""), Selected: !selected}}
		for _, v := range values {
			label := v
			if label == "" {
				label = "(None)"
			}
			options = append(options, FilterOption{
				Label:    label,
				URL:      withParam(query, f, v),
				Selected: selected && len(current) > 0 && current[0] == v,
			})
		}
		filters = append(filters, Filter{Field: f, Title: title(f), Options: options})
	}
	return filters
}

// withParam returns a query string with key set to value, or removed when
// value is empty.
func withParam(query url.Values, key, value string) string {
	q := url.Values{}
	for k, v := range query {
		if k != key {
			q[k] = v
		}
	}
	if value != "" {
		q.Set(key, value)
	}
	if len(q) == 0 {
		return "?"
	}
	return "?" + q.Encode()
}

func title(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// without copies query minus key.
func without(query url.Values, key string) url.Values {
	out := url.Values{}
	for k, v := range query {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// pageRows cuts page number out of rows. ok is false for a page past the end.
func pageRows(rows []Row, number, size int) ([]Row, models.Page, bool) {
	page := models.NewPage(number, size, len(rows))
	if !page.Valid() {
		return nil, page, false
	}
	start := page.Offset()
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], page, true
}

// pager links changelist pages, keeping search and filter parameters.
type pager struct {
	models.Page
	query url.Values
}

func (p pager) URL(number int) string {
	return withParam(p.query, pageParam, strconv.Itoa(number))
}
