package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	ListByType(ctx context.Context, categoryType CategoryType) ([]ExpenseCategory, error)
	Create(ctx context.Context, req CreateRequest) (*ExpenseCategory, error)
	Update(ctx context.Context, req UpdateRequest) (*ExpenseCategory, error)
	Get(ctx context.Context, categoryType CategoryType, code string) (*ExpenseCategory, error)
	Label(ctx context.Context, categoryType CategoryType, code string) string
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Type      CategoryType `json:"type"`
	Code      string       `json:"code"`
	Label     string       `json:"label"`
	SortOrder *int         `json:"sort_order,omitempty"`
}

type UpdateRequest struct {
	ID        string  `json:"id"`
	Label     *string `json:"label,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
}

var (
	ErrInvalidType     = errors.New("invalid_type")
	ErrInvalidCode     = errors.New("invalid_code")
	ErrInvalidLabel    = errors.New("invalid_label")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("category_not_found")
	ErrDuplicateCode   = errors.New("category_code_exists")
	ErrCategoryInUse   = errors.New("category_in_use")
	ErrUnknownCategory = errors.New("invalid_category")
)

// CategoryInUseError blocks a delete while ledger rows still reference the category.
type CategoryInUseError struct {
	Type  CategoryType
	Code  string
	Count int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category %s/%s is used by %d record(s)", e.Type, e.Code, e.Count)
}

func (e *CategoryInUseError) Is(target error) bool {
	return target == ErrCategoryInUse
}

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
