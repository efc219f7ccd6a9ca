// Package masterdata serves supplier and fabric CRUD.
package masterdata

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"bmr-backend/internal/audit"
	"bmr-backend/internal/models"
	"bmr-backend/internal/store"
)

// Catalog is the storage behind the master data views. *store.Store
// implements it.
type Catalog interface {
	ListSuppliers(ctx context.Context, q store.ListQuery) (store.Page[models.Supplier], error)
	GetSupplier(ctx context.Context, id uint) (models.Supplier, error)
	SupplierByName(ctx context.Context, name string) (models.Supplier, error)
	CreateSupplier(ctx context.Context, row *models.Supplier) error
	UpdateSupplier(ctx context.Context, row *models.Supplier) error
	DeleteSupplier(ctx context.Context, id uint) error

	ListFabrics(ctx context.Context, q store.ListQuery) (store.Page[models.Fabric], error)
	GetFabric(ctx context.Context, id uint) (models.Fabric, error)
	CreateFabric(ctx context.Context, row *models.Fabric) error
	UpdateFabric(ctx context.Context, row *models.Fabric) error
	DeleteFabric(ctx context.Context, id uint) error
}

type Deps struct {
	Catalog Catalog
	Audit   *audit.Trail
	Logger  *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

func listQuery(c *fiber.Ctx) store.ListQuery {
	return store.ListQuery{
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", store.DefaultPageSize),
	}
}

func fmtTime(t time.Time) string { return t.Format(timeLayout) }

// saveError maps a store error to the response for entity ("Supplier").
func saveError(d Deps, entity, op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, entity+" not found")
	}
	d.logger().Error(strings.ToLower(entity)+" "+op, zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, "Failed to "+op+" "+strings.ToLower(entity)+": "+err.Error())
}
