// Package quality serves the incoming raw material test report views.
package quality

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"bmr-backend/internal/audit"
	"bmr-backend/internal/auth"
	"bmr-backend/internal/documents"
	"bmr-backend/internal/form"
	"bmr-backend/internal/metrics"
	"bmr-backend/internal/models"
	"bmr-backend/internal/store"
	"bmr-backend/internal/testreport"
)

// Reports is the storage the report views need. *store.Store implements it.
type Reports interface {
	ListReports(ctx context.Context, q store.ListQuery) (store.Page[models.RMTestReport], error)
	SearchReports(ctx context.Context, q string, limit int) ([]store.ReportSummary, error)
	GetReport(ctx context.Context, id uint) (models.RMTestReport, error)
	SaveReport(ctx context.Context, row *models.RMTestReport) error
	DeleteReport(ctx context.Context, id uint) error
	FabricByName(ctx context.Context, name string) (models.Fabric, error)
	GetSupplier(ctx context.Context, id uint) (models.Supplier, error)
}

type Deps struct {
	Reports   Reports
	Defaults  testreport.Defaults
	Generator *documents.Generator
	Audit     *audit.Trail
	// Signature images drawn on certificates requested with signature=true.
	TestedBySignature   string
	ReviewedBySignature string
	Logger              *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

// -------------------------
// Request/Response Types
// -------------------------

type ReportListItem struct {
	ID               uint   `json:"id"`
	ReportNo         string `json:"report_no"`
	ProductName      string `json:"product_name"`
	BatchNo          string `json:"batch_no"`
	SupplierName     string `json:"supplier_name"`
	PerformanceLevel string `json:"performance_level"`
	Result           string `json:"result"`
	CreatedAt        string `json:"created_at"`
}

type ApplyLevelRequest struct {
	Level      testreport.Level `json:"level"`
	Parameters []testreport.Row `json:"parametersResults"`
}

type FabricAutofillResponse struct {
	FabricID     uint   `json:"fabric_id"`
	SupplierID   *uint  `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

// GET /api/rm-test-reports?search=&page=&page_size=
func ListReportsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		metrics.RecordLookup("rm_test_report")
		page, err := d.Reports.ListReports(c.UserContext(), store.ListQuery{
			Search:   c.Query("search"),
			Page:     c.QueryInt("page", 1),
			PageSize: c.QueryInt("page_size", store.DefaultPageSize),
		})
		if err != nil {
			d.logger().Error("list reports", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch test reports")
		}
		rows := make([]ReportListItem, len(page.Rows))
		for i, r := range page.Rows {
			rows[i] = ReportListItem{
				ID:               r.ID,
				ReportNo:         r.ReportNo,
				ProductName:      r.ProductName,
				BatchNo:          r.BatchNo,
				PerformanceLevel: r.PerformanceLevel,
				Result:           r.Result,
				CreatedAt:        r.CreatedAt.Format(time.RFC3339),
			}
			if r.Supplier != nil {
				rows[i].SupplierName = r.Supplier.Name
			}
		}
		return c.JSON(store.Page[ReportListItem]{Rows: rows, Total: page.Total, Page: page.Page, PageSize: page.PageSize})
	}
}

// GET /api/rm-test-reports/search?q=
func SearchReportsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		metrics.RecordLookup("specification")
		rows, err := form.LookupSpecification(c.UserContext(), d.Reports, c.Query("q"))
		if err != nil {
			d.logger().Error("search reports", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to search test reports")
		}
		return c.JSON(rows)
	}
}

// GET /api/rm-test-reports/new?level=
func NewReportHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r := testreport.NewReport(d.Defaults)
		if lv := c.Query("level"); lv != "" {
			r.PerformanceLevel = testreport.ParseLevel(lv)
			r.Parameters = testreport.DefaultParameters(r.PerformanceLevel)
		}
		return c.JSON(r)
	}
}

// POST /api/rm-test-reports/level
// Rebuilds the parameter table for a new performance level, keeping results.
func ApplyLevelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ApplyLevelRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		level := testreport.ParseLevel(string(body.Level))
		return c.JSON(fiber.Map{
			"performanceLevel":  level,
			"parametersResults": testreport.ApplyLevel(body.Parameters, level),
		})
	}
}

// GET /api/rm-test-reports/fabric?name=
// Supplier autofill for a fabric chosen as the product name.
func FabricAutofillHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := strings.TrimSpace(c.Query("name"))
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Fabric name is required")
		}
		fabric, err := d.Reports.FabricByName(c.UserContext(), name)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Fabric not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch fabric")
		}
		resp := FabricAutofillResponse{FabricID: fabric.ID, SupplierID: fabric.SupplierID}
		if fabric.SupplierID != nil {
			if s, err := d.Reports.GetSupplier(c.UserContext(), *fabric.SupplierID); err == nil {
				resp.SupplierName = s.Name
			}
		}
		return c.JSON(resp)
	}
}

func loadReport(c *fiber.Ctx, d Deps, id uint) (testreport.Report, error) {
	row, err := d.Reports.GetReport(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return testreport.Report{}, fiber.NewError(fiber.StatusNotFound, "Test report not found")
	}
	if err != nil {
		d.logger().Error("get report", zap.Uint("id", id), zap.Error(err))
		return testreport.Report{}, fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch test report")
	}
	r, err := testreport.ToDomain(row)
	if err != nil {
		return testreport.Report{}, fiber.NewError(fiber.StatusInternalServerError, "Failed to read test report: "+err.Error())
	}
	return r, nil
}

// GET /api/rm-test-reports/:id
func GetReportHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		r, err := loadReport(c, d, id)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

// POST /api/rm-test-reports
func CreateReportHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return saveReport(c, d, 0)
	}
}

// PUT /api/rm-test-reports/:id
func UpdateReportHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		return saveReport(c, d, id)
	}
}

func saveReport(c *fiber.Ctx, d Deps, id uint) error {
	var r testreport.Report
	if err := c.BodyParser(&r); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	r.ID = id
	if strings.TrimSpace(r.ProductName) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Product name is required")
	}
	r, err := r.Prepare()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	row, err := testreport.ToPersisted(r, auth.UserID(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save test report: "+err.Error())
	}

	op := "update"
	if id == 0 {
		op = "create"
	}
	err = d.Reports.SaveReport(c.UserContext(), &row)
	metrics.RecordSave("rm_test_report", op, err)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Test report not found")
	}
	if err != nil {
		d.logger().Error("save report", zap.Uint("id", id), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save test report: "+err.Error())
	}

	r.ID = row.ID
	action := models.AuditActionUpdate
	if op == "create" {
		action = models.AuditActionCreate
	}
	d.Audit.Record(c, audit.LogOptions{
		EntityType:  "rm_test_report",
		EntityID:    r.ID,
		Action:      action,
		Description: "Test report " + op + "d: " + r.ReportNo,
		After:       r,
	})
	if op == "create" {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Test report saved successfully", "report": r})
	}
	return c.JSON(fiber.Map{"message": "Test report updated successfully", "report": r})
}

// DELETE /api/rm-test-reports/:id
func DeleteReportHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		err = d.Reports.DeleteReport(c.UserContext(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Test report not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete test report: "+err.Error())
		}
		d.Audit.Record(c, audit.LogOptions{
			EntityType:  "rm_test_report",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Test report deleted",
		})
		return c.JSON(fiber.Map{"message": "Test report deleted successfully"})
	}
}

// GET /api/rm-test-reports/:id/certificate?signature=true|false
func CertificateHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		r, err := loadReport(c, d, id)
		if err != nil {
			return err
		}
		opts := documents.CertificateOptions{
			WithSignature:       c.QueryBool("signature", false),
			TestedBySignature:   d.TestedBySignature,
			ReviewedBySignature: d.ReviewedBySignature,
		}
		render := func(context.Context) (documents.Document, error) {
			return documents.RenderCertificate(r, r.SupplierName, opts), nil
		}

		out, err := d.Generator.Generate(c.UserContext(), fmt.Sprintf("report:%d:certificate", id), "certificate", render)
		if errors.Is(err, documents.ErrBusy) {
			return fiber.NewError(fiber.StatusConflict, "PDF is already being generated")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate PDF: "+err.Error())
		}
		filename := "Raw_Material_Test_Report_" + strings.ReplaceAll(r.ReportNo, "/", "-") + ".pdf"
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(out)
	}
}
