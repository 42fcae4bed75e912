// Package listquery is the shared filter/search/sort/paginate helper every
// list operation goes through, so pagination envelopes and sort allow-lists
// stay uniform across the module.
package listquery

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type Params struct {
	Search  string
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// ApplySearch ORs a case-insensitive LIKE over the given columns. Columns are
// caller-controlled identifiers, never user input.
func ApplySearch(q *gorm.DB, p Params, columns []string) *gorm.DB {
	term := strings.TrimSpace(p.Search)
	if term == "" || len(columns) == 0 {
		return q
	}
	pattern := "%" + strings.ToLower(term) + "%"
	var clauses []string
	var args []interface{}
	for _, col := range columns {
		clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", col))
		args = append(args, pattern)
	}
	return q.Where(strings.Join(clauses, " OR "), args...)
}

// ApplySort orders by p.SortBy when allow-listed, else by the default.
// Direction falls back to defaultDir on anything but asc/desc.
func ApplySort(q *gorm.DB, p Params, allowed []string, defaultCol, defaultDir string) *gorm.DB {
	col := defaultCol
	for _, a := range allowed {
		if p.SortBy == a {
			col = a
			break
		}
	}
	dir := strings.ToLower(strings.TrimSpace(p.SortDir))
	if dir != "asc" && dir != "desc" {
		dir = defaultDir
	}
	return q.Order(fmt.Sprintf("%s %s", col, dir))
}

// Paginate counts, clamps limit/offset, finds into out and returns the
// pagination envelope.
func Paginate(q *gorm.DB, p Params, out interface{}) (Pagination, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}
	if err := q.Limit(limit).Offset(offset).Find(out).Error; err != nil {
		return Pagination{}, err
	}
	return Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	}, nil
}
