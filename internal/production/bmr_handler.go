package production

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"bmr-backend/internal/audit"
	"bmr-backend/internal/auth"
	"bmr-backend/internal/bmr"
	"bmr-backend/internal/form"
	"bmr-backend/internal/metrics"
	"bmr-backend/internal/models"
	"bmr-backend/internal/store"
)

// -------------------------
// Request/Response Types
// -------------------------

type BMRListItem struct {
	ID          uint   `json:"id"`
	BMRType     string `json:"bmr_type"`
	ProductName string `json:"product_name"`
	ProductCode string `json:"product_code"`
	BatchNo     string `json:"batch_no"`
	BatchSize   string `json:"batch_size"`
	MfgDate     string `json:"mfg_date"`
	ExpDate     string `json:"exp_date"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

type FormStepRequest struct {
	State  form.State      `json:"state"`
	Action json.RawMessage `json:"action"`
}

type SubmitResponse struct {
	Message string       `json:"message"`
	Record  bmr.Record   `json:"record"`
	Notices []form.Notice `json:"notices"`
}

func listItem(row models.BMR) BMRListItem {
	return BMRListItem{
		ID:          row.ID,
		BMRType:     row.BMRType,
		ProductName: row.ProductName,
		ProductCode: row.ProductCode,
		BatchNo:     row.BatchNo,
		BatchSize:   row.BatchSize,
		MfgDate:     row.MfgDate,
		ExpDate:     row.ExpDate,
		Status:      row.Status,
		CreatedAt:   row.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/bmr?search=&page=&page_size=
func ListBMRHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		metrics.RecordLookup("bmr")
		page, err := d.Records.ListBMR(c.UserContext(), listQuery(c))
		if err != nil {
			d.logger().Error("list bmr", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch BMR records")
		}
		rows := make([]BMRListItem, len(page.Rows))
		for i, r := range page.Rows {
			rows[i] = listItem(r)
		}
		return c.JSON(store.Page[BMRListItem]{Rows: rows, Total: page.Total, Page: page.Page, PageSize: page.PageSize})
	}
}

// GET /api/bmr/new?type=standard|kit
func NewBMRHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := bmr.ParseType(c.Query("type"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(form.NewState(bmr.NewRecord(t, d.Mapper.Defaults)))
	}
}

// POST /api/bmr/form
// Applies one edit to the posted form state and returns the next state.
func FormStepHandler(d Deps) fiber.Handler {
	reducer := form.Reducer{Defaults: d.Mapper.Defaults}
	return func(c *fiber.Ctx) error {
		var body FormStepRequest
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid form state: "+err.Error())
		}
		if body.State.Record.Steps == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid form state: process steps missing")
		}
		action, err := form.DecodeAction(body.Action)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		next, err := reducer.Update(body.State, action)
		if errors.Is(err, form.ErrSubmitInProgress) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return c.JSON(next)
	}
}

// GET /api/bmr/:id
func GetBMRHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		rec, err := loadRecord(c, d, id)
		if err != nil {
			return err
		}
		return c.JSON(form.NewState(rec))
	}
}

func loadRecord(c *fiber.Ctx, d Deps, id uint) (bmr.Record, error) {
	row, err := d.Records.GetBMR(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return bmr.Record{}, fiber.NewError(fiber.StatusNotFound, "BMR not found")
	}
	if err != nil {
		d.logger().Error("get bmr", zap.Uint("id", id), zap.Error(err))
		return bmr.Record{}, fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch BMR")
	}
	rec, err := d.Mapper.ToDomain(row)
	if err != nil {
		d.logger().Error("decode bmr", zap.Uint("id", id), zap.Error(err))
		return bmr.Record{}, fiber.NewError(fiber.StatusInternalServerError, "Failed to read BMR: "+err.Error())
	}
	return rec, nil
}

// POST /api/bmr
func CreateBMRHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := decodeRecord(c)
		if err != nil {
			return err
		}
		rec.ID = 0
		return submit(c, d, rec, "create")
	}
}

// PUT /api/bmr/:id
func UpdateBMRHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		rec, err := decodeRecord(c)
		if err != nil {
			return err
		}
		rec.ID = id
		return submit(c, d, rec, "update")
	}
}

// decodeRecord accepts either a bare record or a form state wrapping one.
func decodeRecord(c *fiber.Ctx) (bmr.Record, error) {
	var probe struct {
		Record json.RawMessage `json:"record"`
	}
	raw := c.Body()
	if err := json.Unmarshal(raw, &probe); err != nil {
		return bmr.Record{}, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if len(probe.Record) > 0 {
		raw = probe.Record
	}
	var rec bmr.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return bmr.Record{}, fiber.NewError(fiber.StatusBadRequest, "Invalid BMR: "+err.Error())
	}
	if rec.Steps == nil {
		rec.Steps = bmr.EmptySteps(rec.Type)
	}
	return rec, nil
}

func submit(c *fiber.Ctx, d Deps, rec bmr.Record, op string) error {
	notices := &form.Notices{}
	ctrl := form.NewController(rec, form.Deps{
		Mapper:   d.Mapper,
		Saver:    d.Records,
		Specs:    d.Records,
		Notifier: notices,
		Logger:   d.logger(),
	})

	var saved bmr.Record
	err := ctrl.Submit(c.UserContext(), auth.UserID(c), func(r bmr.Record) { saved = r })
	metrics.RecordSave("bmr", op, err)

	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":       verr.Error(),
			"fieldErrors": verr.Fields,
		})
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "BMR not found")
	case errors.Is(err, bmr.ErrStepsMismatch), errors.Is(err, bmr.ErrMissingSteps):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case err != nil:
		msg := "Failed to save BMR"
		if all := notices.All(); len(all) > 0 {
			msg = all[len(all)-1].Message
		}
		return fiber.NewError(fiber.StatusInternalServerError, msg)
	}

	status, action := fiber.StatusOK, models.AuditActionUpdate
	if op == "create" {
		status, action = fiber.StatusCreated, models.AuditActionCreate
	}
	d.Audit.Record(c, audit.LogOptions{
		EntityType:  "bmr",
		EntityID:    saved.ID,
		Action:      action,
		Description: "BMR " + op + "d: " + saved.BatchNo,
		After:       saved,
	})
	all := notices.All()
	return c.Status(status).JSON(SubmitResponse{
		Message: all[len(all)-1].Message,
		Record:  saved,
		Notices: all,
	})
}

// DELETE /api/bmr/:id
func DeleteBMRHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		err = d.Records.DeleteBMR(c.UserContext(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "BMR not found")
		}
		if err != nil {
			d.logger().Error("delete bmr", zap.Uint("id", id), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete BMR: "+err.Error())
		}
		d.Audit.Record(c, audit.LogOptions{
			EntityType:  "bmr",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "BMR deleted",
		})
		return c.JSON(fiber.Map{"message": "BMR deleted successfully"})
	}
}

// GET /api/bmr/specifications?q=
func SearchSpecificationsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		metrics.RecordLookup("specification")
		rows, err := form.LookupSpecification(c.UserContext(), d.Records, c.Query("q"))
		if err != nil {
			d.logger().Error("lookup specification", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to search test reports")
		}
		return c.JSON(rows)
	}
}
