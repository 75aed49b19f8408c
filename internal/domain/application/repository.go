package application

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, a *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]*Application, error)
	// SetDocumentURL persists a single slot pointer. It is the only write
	// the document registry performs, so it stays a single-column UPDATE.
	SetDocumentURL(ctx context.Context, id int64, slot Slot, url string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *Application) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Application, error) {
	var a Application
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) GetByOwner(ctx context.Context, ownerID int64) ([]*Application, error) {
	var apps []*Application
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *repository) SetDocumentURL(ctx context.Context, id int64, slot Slot, url string) error {
	if !slot.Valid() {
		return ErrInvalidSlot
	}
	res := r.db.WithContext(ctx).
		Model(&Application{}).
		Where("id = ?", id).
		Update(slot.Column(), url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
