package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"bmr-backend/internal/models"
)

// ReportSummary is the lookup row for choosing a specification report.
type ReportSummary struct {
	ID          uint   `json:"id"`
	ReportNo    string `json:"report_no"`
	ProductName string `json:"product_name"`
	BatchNo     string `json:"batch_no"`
}

var reportSearchColumns = []string{"report_no", "product_name", "batch_no"}

func withSupplier(db *gorm.DB) *gorm.DB {
	return db.Preload("Supplier", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name")
	})
}

func (s *Store) ListReports(ctx context.Context, q ListQuery) (Page[models.RMTestReport], error) {
	return list[models.RMTestReport](s.db.WithContext(ctx), q, "created_at desc", reportSearchColumns, withSupplier)
}

// SearchReports matches q against report number or product name.
func (s *Store) SearchReports(ctx context.Context, q string, limit int) ([]ReportSummary, error) {
	q = strings.TrimSpace(q)
	out := []ReportSummary{}
	if q == "" {
		return out, nil
	}
	where, args := searchClause(q, "report_no", "product_name")
	err := s.db.WithContext(ctx).
		Model(&models.RMTestReport{}).
		Select("id", "report_no", "product_name", "batch_no").
		Where(where, args...).
		Order("created_at desc").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetReportSummary(ctx context.Context, id uint) (ReportSummary, error) {
	var out ReportSummary
	res := s.db.WithContext(ctx).
		Model(&models.RMTestReport{}).
		Select("id", "report_no", "product_name", "batch_no").
		Where("id = ?", id).
		Limit(1).
		Scan(&out)
	if res.Error != nil {
		return ReportSummary{}, res.Error
	}
	if res.RowsAffected == 0 {
		return ReportSummary{}, ErrNotFound
	}
	return out, nil
}

func (s *Store) GetReport(ctx context.Context, id uint) (models.RMTestReport, error) {
	var row models.RMTestReport
	if err := withSupplier(s.db.WithContext(ctx)).First(&row, id).Error; err != nil {
		return models.RMTestReport{}, notFound(err)
	}
	return row, nil
}

func (s *Store) SaveReport(ctx context.Context, row *models.RMTestReport) error {
	db := s.db.WithContext(ctx)
	row.Supplier = nil
	if row.ID == 0 {
		return db.Create(row).Error
	}
	return updateAll(db, row)
}

func (s *Store) DeleteReport(ctx context.Context, id uint) error {
	return deleteByID[models.RMTestReport](s.db.WithContext(ctx), id)
}
