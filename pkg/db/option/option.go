// Package option holds composable gorm query modifiers shared by repositories.
package option

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/rentbook/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a statement before it is executed.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

type Operator string

const (
	EQ  Operator = "="
	NEQ Operator = "<>"
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
	IN  Operator = "IN"
)

// Condition is a single column comparison.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// ApplyOperator adds a WHERE clause for the condition. Unknown operators are ignored.
func ApplyOperator(cond Condition) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		field := strings.TrimSpace(cond.Field)
		if field == "" {
			return db
		}
		switch cond.Operator {
		case EQ, NEQ, GT, GTE, LT, LTE:
			return db.Where(fmt.Sprintf("%s %s ?", field, cond.Operator), cond.Value)
		case IN:
			return db.Where(fmt.Sprintf("%s IN ?", field), cond.Value)
		default:
			return db
		}
	})
}

// QuerySortBy orders by SortBy when it is whitelisted in Allow.
type QuerySortBy struct {
	SortBy  string
	OrderBy string
	Allow   map[string]bool
}

func WithQuerySortBy(sortBy, orderBy string, allow map[string]bool) QuerySortBy {
	return QuerySortBy{SortBy: sortBy, OrderBy: orderBy, Allow: allow}
}

// WithSortBy falls back to created_at descending; stable ties on id.
func WithSortBy(q QuerySortBy) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		column := strings.ToLower(strings.TrimSpace(q.SortBy))
		if column == "" || !q.Allow[column] {
			column = "created_at"
		}
		direction := "DESC"
		if strings.EqualFold(strings.TrimSpace(q.OrderBy), "asc") {
			direction = "ASC"
		}
		return db.Order(column + " " + direction).Order("id " + direction)
	})
}

// ApplyPagination limits the result to PageSize+1 rows so callers can detect
// another page, resuming after the id encoded in PageToken.
func ApplyPagination(p pagination.Pagination) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		size := p.PageSize
		if size <= 0 {
			size = pagination.DefaultPageSize
		}
		if size > pagination.MaxPageSize {
			size = pagination.MaxPageSize
		}
		if token := strings.TrimSpace(p.PageToken); token != "" {
			if cursor, err := pagination.DecodeCursor(token); err == nil && cursor.ID != "" {
				db = db.Where("id < ?", cursor.ID)
			}
		}
		return db.Limit(size + 1)
	})
}

// OrderBy appends raw ORDER BY terms, e.g. "year DESC".
func OrderBy(terms ...string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		for _, term := range terms {
			if term = strings.TrimSpace(term); term != "" {
				db = db.Order(term)
			}
		}
		return db
	})
}
