package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	categorydomain "github.com/smallbiznis/rentbook/internal/category/domain"
	obsmetrics "github.com/smallbiznis/rentbook/internal/observability/metrics"
	"github.com/smallbiznis/rentbook/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    categorydomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    categorydomain.Repository
	genID   *snowflake.Node
	metrics *obsmetrics.Metrics
}

func New(p Params) categorydomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("category.service"),
		repo:    p.Repo,
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

func (s *Service) ListByType(ctx context.Context, categoryType categorydomain.CategoryType) ([]categorydomain.ExpenseCategory, error) {
	if !categoryType.Valid() {
		return nil, categorydomain.ErrInvalidType
	}
	return s.repo.ListByType(ctx, s.db, categoryType)
}

func (s *Service) Create(ctx context.Context, req categorydomain.CreateRequest) (*categorydomain.ExpenseCategory, error) {
	if !req.Type.Valid() {
		return nil, categorydomain.ErrInvalidType
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, categorydomain.ErrInvalidLabel
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = codeFromLabel(label)
	}
	if code == "" {
		return nil, categorydomain.ErrInvalidCode
	}

	existing, err := s.repo.FindByCode(ctx, s.db, req.Type, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, categorydomain.ErrDuplicateCode
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	} else {
		maxOrder, ok, err := s.repo.MaxSortOrder(ctx, s.db, req.Type)
		if err != nil {
			return nil, err
		}
		if ok {
			sortOrder = maxOrder + 1
		}
	}

	now := time.Now().UTC()
	item := &categorydomain.ExpenseCategory{
		ID:        s.genID.Generate(),
		Type:      req.Type,
		Code:      code,
		Label:     label,
		SortOrder: sortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, categorydomain.ErrDuplicateCode
		}
		return nil, err
	}

	return item, nil
}

func (s *Service) Update(ctx context.Context, req categorydomain.UpdateRequest) (*categorydomain.ExpenseCategory, error) {
	id, err := categorydomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, categorydomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, categorydomain.ErrNotFound
	}

	if req.Label != nil {
		label := strings.TrimSpace(*req.Label)
		if label == "" {
			return nil, categorydomain.ErrInvalidLabel
		}
		item.Label = label
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, categoryType categorydomain.CategoryType, code string) (*categorydomain.ExpenseCategory, error) {
	if !categoryType.Valid() {
		return nil, categorydomain.ErrInvalidType
	}
	item, err := s.repo.FindByCode(ctx, s.db, categoryType, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, categorydomain.ErrNotFound
	}
	return item, nil
}

// Label resolves a display label, falling back to the raw code.
func (s *Service) Label(ctx context.Context, categoryType categorydomain.CategoryType, code string) string {
	item, err := s.Get(ctx, categoryType, code)
	if err != nil || item == nil {
		return code
	}
	return item.Label
}

func (s *Service) Delete(ctx context.Context, id string) error {
	categoryID, err := categorydomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return categorydomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, categoryID)
	if err != nil {
		return err
	}
	if item == nil {
		return categorydomain.ErrNotFound
	}

	count, err := s.repo.CountUsage(ctx, s.db, item.Type, item.Code)
	if err != nil {
		return err
	}
	if count > 0 {
		s.metrics.RecordCategoryDeleteDenied(ctx, string(item.Type))
		s.log.Info("category delete blocked",
			zap.String("type", string(item.Type)),
			zap.String("code", item.Code),
			zap.Int64("usage", count),
		)
		return &categorydomain.CategoryInUseError{Type: item.Type, Code: item.Code, Count: count}
	}

	return s.repo.Delete(ctx, s.db, categoryID)
}

func codeFromLabel(label string) string {
	return strings.ReplaceAll(slug.Make(label), "-", "_")
}
