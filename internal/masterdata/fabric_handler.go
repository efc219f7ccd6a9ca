package masterdata

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"bmr-backend/internal/audit"
	"bmr-backend/internal/metrics"
	"bmr-backend/internal/models"
	"bmr-backend/internal/store"
)

type FabricRequest struct {
	Name       string `json:"name"`
	SupplierID *uint  `json:"supplier_id"`
	Width      string `json:"width"`
}

type SupplierRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type FabricResponse struct {
	ID         uint         `json:"id"`
	Name       string       `json:"name"`
	SupplierID *uint        `json:"supplier_id"`
	Supplier   *SupplierRef `json:"supplier"`
	Width      string       `json:"width"`
	CreatedAt  string       `json:"created_at"`
}

func fabricResponse(f models.Fabric) FabricResponse {
	resp := FabricResponse{
		ID:         f.ID,
		Name:       f.Name,
		SupplierID: f.SupplierID,
		Width:      f.Width,
		CreatedAt:  fmtTime(f.CreatedAt),
	}
	if f.Supplier != nil {
		resp.Supplier = &SupplierRef{ID: f.Supplier.ID, Name: f.Supplier.Name}
	}
	return resp
}

// fabric validates body. A supplier, when given, must exist.
func (d Deps) fabric(c *fiber.Ctx, body FabricRequest) (models.Fabric, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return models.Fabric{}, fiber.NewError(fiber.StatusBadRequest, "Fabric name is required")
	}
	f := models.Fabric{Name: name, SupplierID: body.SupplierID, Width: strings.TrimSpace(body.Width)}
	if f.SupplierID != nil {
		s, err := d.Catalog.GetSupplier(c.UserContext(), *f.SupplierID)
		if errors.Is(err, store.ErrNotFound) {
			return models.Fabric{}, fiber.NewError(fiber.StatusBadRequest, "Supplier not found")
		}
		if err != nil {
			return models.Fabric{}, saveError(d, "Supplier", "fetch", err)
		}
		f.Supplier = &s
	}
	return f, nil
}

// GET /api/fabrics?search=&page=&page_size=
func ListFabricsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		metrics.RecordLookup("fabric")
		page, err := d.Catalog.ListFabrics(c.UserContext(), listQuery(c))
		if err != nil {
			d.logger().Error("list fabrics", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch fabrics")
		}
		rows := make([]FabricResponse, len(page.Rows))
		for i, f := range page.Rows {
			rows[i] = fabricResponse(f)
		}
		return c.JSON(store.Page[FabricResponse]{Rows: rows, Total: page.Total, Page: page.Page, PageSize: page.PageSize})
	}
}

// GET /api/fabrics/:id
func GetFabricHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		f, err := d.Catalog.GetFabric(c.UserContext(), id)
		if err != nil {
			return saveError(d, "Fabric", "fetch", err)
		}
		return c.JSON(fabricResponse(f))
	}
}

// POST /api/fabrics
func CreateFabricHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body FabricRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		f, err := d.fabric(c, body)
		if err != nil {
			return err
		}
		supplier := f.Supplier
		err = d.Catalog.CreateFabric(c.UserContext(), &f)
		metrics.RecordSave("fabric", "create", err)
		if err != nil {
			return saveError(d, "Fabric", "create", err)
		}
		f.Supplier = supplier
		d.Audit.Record(c, audit.LogOptions{
			EntityType:  "fabric",
			EntityID:    f.ID,
			Action:      models.AuditActionCreate,
			Description: "Fabric created: " + f.Name,
			After:       fabricResponse(f),
		})
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Fabric created successfully",
			"fabric":  fabricResponse(f),
		})
	}
}

// PUT /api/fabrics/:id
func UpdateFabricHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		var body FabricRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		f, err := d.fabric(c, body)
		if err != nil {
			return err
		}
		f.ID = id
		supplier := f.Supplier
		err = d.Catalog.UpdateFabric(c.UserContext(), &f)
		metrics.RecordSave("fabric", "update", err)
		if err != nil {
			return saveError(d, "Fabric", "update", err)
		}
		f.Supplier = supplier
		d.Audit.Record(c, audit.LogOptions{
			EntityType:  "fabric",
			EntityID:    f.ID,
			Action:      models.AuditActionUpdate,
			Description: "Fabric updated: " + f.Name,
			After:       fabricResponse(f),
		})
		return c.JSON(fiber.Map{
			"message": "Fabric updated successfully",
			"fabric":  fabricResponse(f),
		})
	}
}

// DELETE /api/fabrics/:id
func DeleteFabricHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		if err := d.Catalog.DeleteFabric(c.UserContext(), id); err != nil {
			return saveError(d, "Fabric", "delete", err)
		}
		d.Audit.Record(c, audit.LogOptions{
			EntityType:  "fabric",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Fabric deleted",
		})
		return c.JSON(fiber.Map{"message": "Fabric deleted successfully"})
	}
}
