package store

import (
	"context"

	"bmr-backend/internal/models"
)

func (s *Store) ListSuppliers(ctx context.Context, q ListQuery) (Page[models.Supplier], error) {
	return list[models.Supplier](s.db.WithContext(ctx), q, "name asc", []string{"name"})
}

func (s *Store) GetSupplier(ctx context.Context, id uint) (models.Supplier, error) {
	var row models.Supplier
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return models.Supplier{}, notFound(err)
	}
	return row, nil
}

func (s *Store) CreateSupplier(ctx context.Context, row *models.Supplier) error {
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *Store) UpdateSupplier(ctx context.Context, row *models.Supplier) error {
	return updateAll(s.db.WithContext(ctx), row)
}

// DeleteSupplier does not check for fabrics or reports that still point at
// the supplier; those keep a dangling supplier_id.
func (s *Store) DeleteSupplier(ctx context.Context, id uint) error {
	return deleteByID[models.Supplier](s.db.WithContext(ctx), id)
}

func (s *Store) ListFabrics(ctx context.Context, q ListQuery) (Page[models.Fabric], error) {
	return list[models.Fabric](s.db.WithContext(ctx), q, "name asc", []string{"name"}, withSupplier)
}

func (s *Store) GetFabric(ctx context.Context, id uint) (models.Fabric, error) {
	var row models.Fabric
	if err := withSupplier(s.db.WithContext(ctx)).First(&row, id).Error; err != nil {
		return models.Fabric{}, notFound(err)
	}
	return row, nil
}

// FabricByName finds the fabric a report's product name refers to.
func (s *Store) FabricByName(ctx context.Context, name string) (models.Fabric, error) {
	var row models.Fabric
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error; err != nil {
		return models.Fabric{}, notFound(err)
	}
	return row, nil
}

func (s *Store) CreateFabric(ctx context.Context, row *models.Fabric) error {
	row.Supplier = nil
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *Store) UpdateFabric(ctx context.Context, row *models.Fabric) error {
	row.Supplier = nil
	return updateAll(s.db.WithContext(ctx), row)
}

func (s *Store) DeleteFabric(ctx context.Context, id uint) error {
	return deleteByID[models.Fabric](s.db.WithContext(ctx), id)
}

// SupplierByName matches case-insensitively, for spreadsheet imports.
func (s *Store) SupplierByName(ctx context.Context, name string) (models.Supplier, error) {
	var row models.Supplier
	if err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&row).Error; err != nil {
		return models.Supplier{}, notFound(err)
	}
	return row, nil
}
