package masterdata

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"bmr-backend/internal/audit"
	"bmr-backend/internal/metrics"
	"bmr-backend/internal/models"
	"bmr-backend/internal/store"
)

// -------------------------
// Request/Response Types
// -------------------------

type SupplierRequest struct {
	Name string `json:"name"`
}

type SupplierResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ImportResult struct {
	Message  string   `json:"message"`
	Created  int      `json:"created"`
	Existing []string `json:"existing"`
}

func supplierResponse(s models.Supplier) SupplierResponse {
	return SupplierResponse{ID: s.ID, Name: s.Name, CreatedAt: fmtTime(s.CreatedAt), UpdatedAt: fmtTime(s.UpdatedAt)}
}

func (b SupplierRequest) name() (string, error) {
	name := strings.TrimSpace(b.Name)
	if name == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "Supplier name is required")
	}
	return name, nil
}

// GET /api/suppliers?search=&page=&page_size=
func ListSuppliersHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		metrics.RecordLookup("supplier")
		page, err := d.Catalog.ListSuppliers(c.UserContext(), listQuery(c))
		if err != nil {
			d.logger().Error("list suppliers", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch suppliers")
		}
		rows := make([]SupplierResponse, len(page.Rows))
		for i, s := range page.Rows {
			rows[i] = supplierResponse(s)
		}
		return c.JSON(store.Page[SupplierResponse]{Rows: rows, Total: page.Total, Page: page.Page, PageSize: page.PageSize})
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		s, err := d.Catalog.GetSupplier(c.UserContext(), id)
		if err != nil {
			return saveError(d, "Supplier", "fetch", err)
		}
		return c.JSON(supplierResponse(s))
	}
}

// POST /api/suppliers
func CreateSupplierHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		name, err := body.name()
		if err != nil {
			return err
		}
		s := models.Supplier{Name: name}
		err = d.Catalog.CreateSupplier(c.UserContext(), &s)
		metrics.RecordSave("supplier", "create", err)
		if err != nil {
			return saveError(d, "Supplier", "create", err)
		}
		d.Audit.Record(c, audit.LogOptions{
			EntityType:  "supplier",
			EntityID:    s.ID,
			Action:      models.AuditActionCreate,
			Description: "Supplier created: " + s.Name,
			After:       s,
		})
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Supplier created successfully",
			"supplier": supplierResponse(s),
		})
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		name, err := body.name()
		if err != nil {
			return err
		}
		s := models.Supplier{ID: id, Name: name}
		err = d.Catalog.UpdateSupplier(c.UserContext(), &s)
		metrics.RecordSave("supplier", "update", err)
		if err != nil {
			return saveError(d, "Supplier", "update", err)
		}
		d.Audit.Record(c, audit.LogOptions{
			EntityType:  "supplier",
			EntityID:    s.ID,
			Action:      models.AuditActionUpdate,
			Description: "Supplier updated: " + s.Name,
			After:       s,
		})
		return c.JSON(fiber.Map{
			"message":  "Supplier updated successfully",
			"supplier": supplierResponse(s),
		})
	}
}

// DELETE /api/suppliers/:id
func DeleteSupplierHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		if err := d.Catalog.DeleteSupplier(c.UserContext(), id); err != nil {
			return saveError(d, "Supplier", "delete", err)
		}
		d.Audit.Record(c, audit.LogOptions{
			EntityType:  "supplier",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Supplier deleted",
		})
		return c.JSON(fiber.Map{"message": "Supplier deleted successfully"})
	}
}

// POST /api/suppliers/import
// Reads supplier names from the first column of the first sheet of an
// uploaded .xlsx. A "name" or "supplier" header row is skipped and names
// already on file are reported, not duplicated.
func ImportSuppliersHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "File upload failed: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files can be imported")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not open file: "+err.Error())
		}
		defer file.Close()

		book, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read workbook: "+err.Error())
		}
		defer book.Close()

		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Workbook has no sheets")
		}
		rows, err := book.GetRows(sheets[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read sheet: "+err.Error())
		}

		names := supplierNames(rows)
		if len(names) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "No supplier names found")
		}

		ctx := c.UserContext()
		res := ImportResult{Existing: []string{}}
		for _, name := range names {
			_, err := d.Catalog.SupplierByName(ctx, name)
			if err == nil {
				res.Existing = append(res.Existing, name)
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return saveError(d, "Supplier", "import", err)
			}
			s := models.Supplier{Name: name}
			err = d.Catalog.CreateSupplier(ctx, &s)
			metrics.RecordSave("supplier", "import", err)
			if err != nil {
				return saveError(d, "Supplier", "import", err)
			}
			d.Audit.Record(c, audit.LogOptions{
				EntityType:  "supplier",
				EntityID:    s.ID,
				Action:      models.AuditActionImport,
				Description: "Supplier imported from " + fileHeader.Filename + ": " + s.Name,
				After:       s,
			})
			res.Created++
		}
		d.logger().Info("suppliers imported",
			zap.String("file", fileHeader.Filename),
			zap.Int("created", res.Created),
			zap.Int("existing", len(res.Existing)),
		)
		res.Message = "Suppliers imported successfully"
		return c.JSON(res)
	}
}

// supplierNames returns the distinct non-blank first-column values.
func supplierNames(rows [][]string) []string {
	seen := map[string]bool{}
	var out []string
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		if i == 0 {
			head := strings.ToLower(name)
			if strings.Contains(head, "supplier") || head == "name" {
				continue
			}
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
