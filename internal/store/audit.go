package store

import (
	"context"

	"bmr-backend/internal/models"
)

// AuditQuery filters the audit trail. Zero values match everything.
type AuditQuery struct {
	EntityType string
	EntityID   uint
	UserID     uint
	Page       int
	PageSize   int
}

func (s *Store) CreateAuditLog(ctx context.Context, row *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *Store) ListAuditLogs(ctx context.Context, q AuditQuery) (Page[models.AuditLog], error) {
	db := s.db.WithContext(ctx)
	if q.EntityType != "" {
		db = db.Where("entity_type = ?", q.EntityType)
	}
	if q.EntityID != 0 {
		db = db.Where("entity_id = ?", q.EntityID)
	}
	if q.UserID != 0 {
		db = db.Where("user_id = ?", q.UserID)
	}
	return list[models.AuditLog](db, ListQuery{Page: q.Page, PageSize: q.PageSize}, "created_at desc", nil)
}
