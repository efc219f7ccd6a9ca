package store

import (
	"context"

	"bmr-backend/internal/models"
)

var bmrSearchColumns = []string{"batch_no", "product_name", "product_code"}

func (s *Store) ListBMR(ctx context.Context, q ListQuery) (Page[models.BMR], error) {
	return list[models.BMR](s.db.WithContext(ctx), q, "created_at desc", bmrSearchColumns)
}

// AllBMR returns every record, newest first, for the register export.
func (s *Store) AllBMR(ctx context.Context) ([]models.BMR, error) {
	var rows []models.BMR
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) GetBMR(ctx context.Context, id uint) (models.BMR, error) {
	var row models.BMR
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return models.BMR{}, notFound(err)
	}
	return row, nil
}

// SaveBMR inserts when row.ID is zero and replaces the stored row otherwise.
func (s *Store) SaveBMR(ctx context.Context, row *models.BMR) error {
	db := s.db.WithContext(ctx)
	if row.ID == 0 {
		return db.Create(row).Error
	}
	return updateAll(db, row)
}

func (s *Store) DeleteBMR(ctx context.Context, id uint) error {
	return deleteByID[models.BMR](s.db.WithContext(ctx), id)
}
