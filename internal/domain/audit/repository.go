package audit

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const DefaultPageSize = 20

type Repository interface {
	Insert(ctx context.Context, rec *Log) error
	// Query runs the count and the page window under one predicate set and
	// returns the window ordered by creation time, newest first.
	Query(ctx context.Context, f Filters, page, pageSize int) ([]Log, int64, error)
	// CountAll reports whether any records exist system-wide.
	CountAll(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, rec *Log) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) Query(ctx context.Context, f Filters, page, pageSize int) ([]Log, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pred := Predicates(f, time.Now())

	// Count and page window run concurrently off the same predicate set;
	// the caller needs both before it can render pagination controls.
	var (
		total int64
		logs  []Log
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pred(r.db.WithContext(gctx).Model(&Log{})).Count(&total).Error
	})
	g.Go(func() error {
		return pred(r.db.WithContext(gctx).Model(&Log{})).
			Order("created_at DESC").
			Limit(pageSize).
			Offset((page - 1) * pageSize).
			Find(&logs).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *repository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&Log{}).Count(&total).Error
	return total, err
}
