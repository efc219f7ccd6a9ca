// Package production serves the batch manufacturing record views.
package production

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"bmr-backend/internal/audit"
	"bmr-backend/internal/bmr"
	"bmr-backend/internal/documents"
	"bmr-backend/internal/models"
	"bmr-backend/internal/store"
)

// Records is the storage the BMR views need. *store.Store implements it.
type Records interface {
	ListBMR(ctx context.Context, q store.ListQuery) (store.Page[models.BMR], error)
	AllBMR(ctx context.Context) ([]models.BMR, error)
	GetBMR(ctx context.Context, id uint) (models.BMR, error)
	SaveBMR(ctx context.Context, row *models.BMR) error
	DeleteBMR(ctx context.Context, id uint) error
	SearchReports(ctx context.Context, q string, limit int) ([]store.ReportSummary, error)
}

type Deps struct {
	Records   Records
	Mapper    bmr.Mapper
	Generator *documents.Generator
	Audit     *audit.Trail
	Logger    *zap.Logger
	// Now dates the transfer slip.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

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
