package production

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bmr-backend/internal/bmr"
	"bmr-backend/internal/documents"
	"bmr-backend/internal/form"
	"bmr-backend/internal/models"
	"bmr-backend/internal/store"
)

type memRecords struct {
	mu      sync.Mutex
	rows    map[uint]models.BMR
	next    uint
	saveErr error
}

func newMemRecords() *memRecords {
	return &memRecords{rows: map[uint]models.BMR{}, next: 1}
}

func (m *memRecords) ListBMR(_ context.Context, q store.ListQuery) (store.Page[models.BMR], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []models.BMR
	for id := uint(1); id < m.next; id++ {
		if r, ok := m.rows[id]; ok && strings.Contains(strings.ToLower(r.BatchNo+r.ProductName), strings.ToLower(q.Search)) {
			rows = append(rows, r)
		}
	}
	return store.Page[models.BMR]{Rows: rows, Total: int64(len(rows)), Page: 1, PageSize: 10}, nil
}

func (m *memRecords) AllBMR(ctx context.Context) ([]models.BMR, error) {
	p, err := m.ListBMR(ctx, store.ListQuery{})
	return p.Rows, err
}

func (m *memRecords) GetBMR(_ context.Context, id uint) (models.BMR, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return models.BMR{}, store.ErrNotFound
	}
	return r, nil
}

func (m *memRecords) SaveBMR(_ context.Context, row *models.BMR) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if row.ID == 0 {
		row.ID = m.next
		m.next++
	} else if _, ok := m.rows[row.ID]; !ok {
		return store.ErrNotFound
	}
	m.rows[row.ID] = *row
	return nil
}

func (m *memRecords) DeleteBMR(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memRecords) SearchReports(_ context.Context, q string, limit int) ([]store.ReportSummary, error) {
	out := make([]store.ReportSummary, 25)
	for i := range out {
		out[i] = store.ReportSummary{ID: uint(i + 1), ReportNo: q}
	}
	return out, nil
}

var defaults = bmr.DefaultAssignees{ProductionVerifier: "Ravi", QAVerifier: "Meena", Brand: "SHI"}

func newApp(recs *memRecords) *fiber.App {
	d := Deps{
		Records:   recs,
		Mapper:    bmr.NewMapper(defaults),
		Generator: documents.NewGenerator(documents.NewPDFExporter(), nil, nil, nil),
		Now:       func() time.Time { return time.Date(2025, time.May, 2, 8, 0, 0, 0, time.UTC) },
	}
	app := fiber.New()
	app.Get("/bmr", ListBMRHandler(d))
	app.Get("/bmr/new", NewBMRHandler(d))
	app.Get("/bmr/export.xlsx", ExportRegisterHandler(d))
	app.Get("/bmr/specifications", SearchSpecificationsHandler(d))
	app.Post("/bmr/form", FormStepHandler(d))
	app.Post("/bmr", CreateBMRHandler(d))
	app.Get("/bmr/:id", GetBMRHandler(d))
	app.Put("/bmr/:id", UpdateBMRHandler(d))
	app.Delete("/bmr/:id", DeleteBMRHandler(d))
	app.Get("/bmr/:id/documents/:kind", DownloadDocumentHandler(d))
	app.Get("/bmr/:id/print/:kind", PrintDocumentHandler(d))
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte, *httptestResponse) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw, &httptestResponse{contentType: resp.Header.Get("Content-Type"), disposition: resp.Header.Get("Content-Disposition")}
}

type httptestResponse struct {
	contentType string
	disposition string
}

func validRecord() bmr.Record {
	rec := bmr.NewRecord(bmr.TypeStandard, defaults)
	rec.ProductType = "Gown"
	rec.ProductName = "Surgical Gown"
	rec.ProductCode = "SG-1"
	rec.BatchNo = "B/01"
	rec.BatchSize = "42 Set"
	rec.TypeOfPacking = "Pouch"
	spec := uint(3)
	rec.RawMaterialForSpecification = &spec
	return rec
}

func TestNewAndFormStep(t *testing.T) {
	app := newApp(newMemRecords())

	code, raw, _ := do(t, app, "GET", "/bmr/new?type=kit", nil)
	require.Equal(t, fiber.StatusOK, code)
	var state form.State
	require.NoError(t, json.Unmarshal(raw, &state))
	assert.Equal(t, bmr.TypeKit, state.Record.Type)
	assert.Equal(t, "SHI", state.Record.BrandName)

	code, _, _ = do(t, app, "GET", "/bmr/new?type=other", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	state = form.NewState(validRecord())
	steps := []map[string]any{
		{"type": "setField", "path": []string{"finalPacking", "finalPackedQty"}, "value": "40"},
		{"type": "setField", "path": "finalPacking.testingQty", "value": "2"},
	}
	for _, action := range steps {
		code, raw, _ = do(t, app, "POST", "/bmr/form", map[string]any{"state": state, "action": action})
		require.Equal(t, fiber.StatusOK, code, string(raw))
		state = form.State{}
		require.NoError(t, json.Unmarshal(raw, &state))
	}
	assert.Equal(t, "100.00%", state.Record.FinalPacking.ActualYield)

	code, _, _ = do(t, app, "POST", "/bmr/form", map[string]any{
		"state":  state,
		"action": map[string]any{"type": "setField", "path": "finalPacking.actualYield", "value": "1%"},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
}

func TestCreateValidationAndSave(t *testing.T) {
	recs := newMemRecords()
	app := newApp(recs)

	code, raw, _ := do(t, app, "POST", "/bmr", bmr.NewRecord(bmr.TypeStandard, defaults))
	require.Equal(t, fiber.StatusUnprocessableEntity, code)
	var invalid struct {
		FieldErrors map[string]string `json:"fieldErrors"`
	}
	require.NoError(t, json.Unmarshal(raw, &invalid))
	assert.Equal(t, "Please select a raw material test report", invalid.FieldErrors["rawMaterialForSpecification"])
	assert.Empty(t, recs.rows)

	code, raw, _ = do(t, app, "POST", "/bmr", form.NewState(validRecord()))
	require.Equal(t, fiber.StatusCreated, code, string(raw))
	var created SubmitResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, "BMR saved successfully", created.Message)
	assert.Equal(t, uint(1), created.Record.ID)
	require.Contains(t, recs.rows, uint(1))

	rec := created.Record
	rec.ProductName = "Isolation Gown"
	code, raw, _ = do(t, app, "PUT", "/bmr/1", rec)
	require.Equal(t, fiber.StatusOK, code, string(raw))
	assert.Contains(t, string(raw), "BMR updated successfully")
	assert.Equal(t, "Isolation Gown", recs.rows[1].ProductName)

	code, _, _ = do(t, app, "PUT", "/bmr/9", rec)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestSaveFailureReportsMessage(t *testing.T) {
	recs := newMemRecords()
	recs.saveErr = assert.AnError
	app := newApp(recs)

	code, raw, _ := do(t, app, "POST", "/bmr", validRecord())
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Contains(t, string(raw), "Failed to save BMR: ")
}

func TestGetListDelete(t *testing.T) {
	recs := newMemRecords()
	app := newApp(recs)
	code, _, _ := do(t, app, "POST", "/bmr", validRecord())
	require.Equal(t, fiber.StatusCreated, code)

	code, raw, _ := do(t, app, "GET", "/bmr/1", nil)
	require.Equal(t, fiber.StatusOK, code)
	var state form.State
	require.NoError(t, json.Unmarshal(raw, &state))
	assert.Equal(t, "B/01", state.Record.BatchNo)

	code, raw, _ = do(t, app, "GET", "/bmr?search=b/0", nil)
	require.Equal(t, fiber.StatusOK, code)
	var page store.Page[BMRListItem]
	require.NoError(t, json.Unmarshal(raw, &page))
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "standard", page.Rows[0].BMRType)

	code, _, _ = do(t, app, "GET", "/bmr/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, raw, _ = do(t, app, "DELETE", "/bmr/1", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, string(raw), "BMR deleted successfully")

	code, _, _ = do(t, app, "GET", "/bmr/1", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	code, _, _ = do(t, app, "DELETE", "/bmr/1", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestDocuments(t *testing.T) {
	recs := newMemRecords()
	app := newApp(recs)
	code, _, _ := do(t, app, "POST", "/bmr", validRecord())
	require.Equal(t, fiber.StatusCreated, code)

	for _, kind := range []string{KindSheet, KindTransferSlip, KindSamplingAdvice} {
		code, raw, resp := do(t, app, "GET", "/bmr/1/documents/"+kind, nil)
		require.Equal(t, fiber.StatusOK, code, kind)
		assert.Equal(t, "application/pdf", resp.contentType)
		assert.True(t, strings.HasPrefix(resp.disposition, "attachment;"))
		assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
	}

	code, _, resp := do(t, app, "GET", "/bmr/1/print/sheet", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, `inline; filename="BMR_B-01.pdf"`, resp.disposition)

	code, _, _ = do(t, app, "GET", "/bmr/1/documents/label", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	code, _, _ = do(t, app, "GET", "/bmr/7/documents/sheet", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestExportRegister(t *testing.T) {
	recs := newMemRecords()
	app := newApp(recs)
	code, _, _ := do(t, app, "POST", "/bmr", validRecord())
	require.Equal(t, fiber.StatusCreated, code)

	code, raw, resp := do(t, app, "GET", "/bmr/export.xlsx", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, resp.disposition, "BMR_Register_2025-05-02.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(registerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "S.No.", rows[0][0])
	assert.Equal(t, "B/01", rows[1][4])
}

func TestSpecificationSearchIsBounded(t *testing.T) {
	app := newApp(newMemRecords())
	code, raw, _ := do(t, app, "GET", "/bmr/specifications?q=TR", nil)
	require.Equal(t, fiber.StatusOK, code)
	var rows []store.ReportSummary
	require.NoError(t, json.Unmarshal(raw, &rows))
	assert.Len(t, rows, form.SpecificationLookupLimit)

	_, raw, _ = do(t, app, "GET", "/bmr/specifications?q=", nil)
	assert.JSONEq(t, "[]", string(raw))
}
