package production

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"bmr-backend/internal/bmr"
)

const registerSheet = "BMR Register"

var registerColumns = []string{
	"S.No.", "Type", "Product Name", "Product Code", "Batch No", "Batch Size",
	"Mfg. Date", "Exp. Date", "Final Packed", "Actual Yield", "Test Report No", "Status",
}

// BuildRegister writes one line per record into a new workbook.
func BuildRegister(records []bmr.Record) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return nil, err
	}

	header := make([]any, len(registerColumns))
	for i, col := range registerColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(registerSheet, "A1", &header); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E0E0"}},
	})
	if err != nil {
		return nil, err
	}
	last, _ := excelize.ColumnNumberToName(len(registerColumns))
	if err := f.SetCellStyle(registerSheet, "A1", last+"1", style); err != nil {
		return nil, err
	}

	for i, r := range records {
		row := []any{
			i + 1,
			string(r.Type),
			r.ProductName,
			r.ProductCode,
			r.BatchNo,
			r.BatchSize,
			r.MfgDate.Display("02-01-2006"),
			r.ExpDate.Display("02-01-2006"),
			r.FinalPacking.FinalPackedQty,
			r.FinalPacking.ActualYield,
			r.Declarations.TestReportNo,
			string(r.Status),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(registerSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(registerSheet, "B", last, 18); err != nil {
		return nil, err
	}
	return f, nil
}

// GET /api/bmr/export.xlsx
func ExportRegisterHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := d.Records.AllBMR(c.UserContext())
		if err != nil {
			d.logger().Error("export register", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch BMR records")
		}

		records := make([]bmr.Record, 0, len(rows))
		for _, row := range rows {
			rec, err := d.Mapper.ToDomain(row)
			if err != nil {
				d.logger().Warn("skipping undecodable bmr", zap.Uint("id", row.ID), zap.Error(err))
				continue
			}
			records = append(records, rec)
		}

		f, err := BuildRegister(records)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to build register: "+err.Error())
		}
		defer f.Close()

		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to build register: "+err.Error())
		}
		filename := fmt.Sprintf("BMR_Register_%s.xlsx", d.now().Format("2006-01-02"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}
