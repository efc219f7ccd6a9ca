package masterdata

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bmr-backend/internal/audit"
	"bmr-backend/internal/models"
	"bmr-backend/internal/store"
)

type memCatalog struct {
	mu        sync.Mutex
	suppliers map[uint]models.Supplier
	fabrics   map[uint]models.Fabric
	next      uint
}

func newMemCatalog() *memCatalog {
	return &memCatalog{suppliers: map[uint]models.Supplier{}, fabrics: map[uint]models.Fabric{}, next: 1}
}

func (m *memCatalog) ListSuppliers(_ context.Context, q store.ListQuery) (store.Page[models.Supplier], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := []models.Supplier{}
	for id := uint(1); id < m.next; id++ {
		if s, ok := m.suppliers[id]; ok && strings.Contains(strings.ToLower(s.Name), strings.ToLower(q.Search)) {
			rows = append(rows, s)
		}
	}
	return store.Page[models.Supplier]{Rows: rows, Total: int64(len(rows)), Page: 1, PageSize: 10}, nil
}

func (m *memCatalog) GetSupplier(_ context.Context, id uint) (models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suppliers[id]
	if !ok {
		return models.Supplier{}, store.ErrNotFound
	}
	return s, nil
}

func (m *memCatalog) SupplierByName(_ context.Context, name string) (models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.suppliers {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return models.Supplier{}, store.ErrNotFound
}

func (m *memCatalog) CreateSupplier(_ context.Context, row *models.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.next
	m.next++
	m.suppliers[row.ID] = *row
	return nil
}

func (m *memCatalog) UpdateSupplier(_ context.Context, row *models.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.suppliers[row.ID]; !ok {
		return store.ErrNotFound
	}
	m.suppliers[row.ID] = *row
	return nil
}

func (m *memCatalog) DeleteSupplier(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.suppliers[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.suppliers, id)
	return nil
}

func (m *memCatalog) ListFabrics(_ context.Context, _ store.ListQuery) (store.Page[models.Fabric], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := []models.Fabric{}
	for id := uint(1); id < m.next; id++ {
		if f, ok := m.fabrics[id]; ok {
			if f.SupplierID != nil {
				if s, ok := m.suppliers[*f.SupplierID]; ok {
					f.Supplier = &s
				}
			}
			rows = append(rows, f)
		}
	}
	return store.Page[models.Fabric]{Rows: rows, Total: int64(len(rows)), Page: 1, PageSize: 10}, nil
}

func (m *memCatalog) GetFabric(_ context.Context, id uint) (models.Fabric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fabrics[id]
	if !ok {
		return models.Fabric{}, store.ErrNotFound
	}
	return f, nil
}

func (m *memCatalog) CreateFabric(_ context.Context, row *models.Fabric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.Supplier = nil
	row.ID = m.next
	m.next++
	m.fabrics[row.ID] = *row
	return nil
}

func (m *memCatalog) UpdateFabric(_ context.Context, row *models.Fabric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fabrics[row.ID]; !ok {
		return store.ErrNotFound
	}
	row.Supplier = nil
	m.fabrics[row.ID] = *row
	return nil
}

func (m *memCatalog) DeleteFabric(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fabrics[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.fabrics, id)
	return nil
}

func newApp(cat *memCatalog) *fiber.App {
	d := Deps{Catalog: cat}
	app := fiber.New()
	app.Get("/suppliers", ListSuppliersHandler(d))
	app.Post("/suppliers", CreateSupplierHandler(d))
	app.Post("/suppliers/import", ImportSuppliersHandler(d))
	app.Get("/suppliers/:id", GetSupplierHandler(d))
	app.Put("/suppliers/:id", UpdateSupplierHandler(d))
	app.Delete("/suppliers/:id", DeleteSupplierHandler(d))
	app.Get("/fabrics", ListFabricsHandler(d))
	app.Post("/fabrics", CreateFabricHandler(d))
	app.Get("/fabrics/:id", GetFabricHandler(d))
	app.Put("/fabrics/:id", UpdateFabricHandler(d))
	app.Delete("/fabrics/:id", DeleteFabricHandler(d))
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
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
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestSupplierCRUD(t *testing.T) {
	cat := newMemCatalog()
	app := newApp(cat)

	status, _ := do(t, app, "POST", "/suppliers", SupplierRequest{Name: "  "})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := do(t, app, "POST", "/suppliers", SupplierRequest{Name: " Sutlej Textiles "})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Contains(t, string(body), "Supplier created successfully")
	assert.Equal(t, "Sutlej Textiles", cat.suppliers[1].Name)

	status, _ = do(t, app, "PUT", "/suppliers/1", SupplierRequest{Name: "Sutlej Mills"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Sutlej Mills", cat.suppliers[1].Name)

	status, body = do(t, app, "GET", "/suppliers?search=mills", nil)
	require.Equal(t, fiber.StatusOK, status)
	var page store.Page[SupplierResponse]
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Sutlej Mills", page.Rows[0].Name)

	status, _ = do(t, app, "DELETE", "/suppliers/1", nil)
	assert.Equal(t, fiber.StatusOK, status)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/suppliers/1"},
		{"PUT", "/suppliers/1"},
		{"DELETE", "/suppliers/1"},
	} {
		status, _ := do(t, app, tc.method, tc.path, SupplierRequest{Name: "x"})
		assert.Equal(t, fiber.StatusNotFound, status, tc.method+" "+tc.path)
	}

	status, _ = do(t, app, "GET", "/suppliers/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestFabricCRUDEmbedsSupplier(t *testing.T) {
	cat := newMemCatalog()
	require.NoError(t, cat.CreateSupplier(context.Background(), &models.Supplier{Name: "Sutlej Textiles"}))
	app := newApp(cat)
	supplier := uint(1)
	missing := uint(42)

	status, _ := do(t, app, "POST", "/fabrics", FabricRequest{Name: "SMS", SupplierID: &missing})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := do(t, app, "POST", "/fabrics", FabricRequest{Name: "SMS 45 GSM", SupplierID: &supplier, Width: "1.5 m"})
	require.Equal(t, fiber.StatusCreated, status)
	var created struct {
		Fabric FabricResponse `json:"fabric"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotNil(t, created.Fabric.Supplier)
	assert.Equal(t, "Sutlej Textiles", created.Fabric.Supplier.Name)

	status, body = do(t, app, "GET", "/fabrics", nil)
	require.Equal(t, fiber.StatusOK, status)
	var page store.Page[FabricResponse]
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "1.5 m", page.Rows[0].Width)
	require.NotNil(t, page.Rows[0].Supplier)

	id := created.Fabric.ID
	status, _ = do(t, app, "PUT", "/fabrics/"+strconv.FormatUint(uint64(id), 10), FabricRequest{Name: "SMS 50 GSM"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, cat.fabrics[id].SupplierID)

	status, _ = do(t, app, "DELETE", "/fabrics/"+strconv.FormatUint(uint64(id), 10), nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = do(t, app, "GET", "/fabrics/"+strconv.FormatUint(uint64(id), 10), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func workbook(t *testing.T, names ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, n := range names {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, n))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func upload(t *testing.T, app *fiber.App, filename string, content []byte) (int, []byte) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/suppliers/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestImportSuppliers(t *testing.T) {
	cat := newMemCatalog()
	require.NoError(t, cat.CreateSupplier(context.Background(), &models.Supplier{Name: "Sutlej Textiles"}))
	app := newApp(cat)

	status, body := upload(t, app, "suppliers.xlsx", workbook(t, "Supplier Name", "Arvind Ltd", "sutlej textiles", "", "Arvind Ltd", "Welspun"))
	require.Equal(t, fiber.StatusOK, status, string(body))
	var res ImportResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, []string{"sutlej textiles"}, res.Existing)
	assert.Len(t, cat.suppliers, 3)

	status, _ = upload(t, app, "suppliers.csv", []byte("a,b"))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = upload(t, app, "broken.xlsx", []byte("not a workbook"))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSupplierNames(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want []string
	}{
		{"header skipped", [][]string{{"Name"}, {"A"}}, []string{"A"}},
		{"first row kept when not a header", [][]string{{"A"}, {"B"}}, []string{"A", "B"}},
		{"blank and duplicate rows dropped", [][]string{{"A"}, {}, {" "}, {"a"}}, []string{"A"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, supplierNames(tt.rows))
		})
	}
}

type memAudit struct{ rows []models.AuditLog }

func (m *memAudit) CreateAuditLog(_ context.Context, row *models.AuditLog) error {
	m.rows = append(m.rows, *row)
	return nil
}

func TestSupplierChangesAreAudited(t *testing.T) {
	logs := &memAudit{}
	d := Deps{Catalog: newMemCatalog(), Audit: audit.NewTrail(logs, nil)}
	app := fiber.New()
	app.Post("/suppliers", CreateSupplierHandler(d))
	app.Delete("/suppliers/:id", DeleteSupplierHandler(d))

	status, _ := do(t, app, "POST", "/suppliers", SupplierRequest{Name: "Welspun"})
	require.Equal(t, fiber.StatusCreated, status)
	status, _ = do(t, app, "DELETE", "/suppliers/1", nil)
	require.Equal(t, fiber.StatusOK, status)

	require.Len(t, logs.rows, 2)
	assert.Equal(t, models.AuditActionCreate, logs.rows[0].Action)
	assert.Equal(t, "supplier", logs.rows[0].EntityType)
	assert.Equal(t, "Supplier created: Welspun", logs.rows[0].Description)
	assert.Equal(t, models.AuditActionDelete, logs.rows[1].Action)
	assert.Equal(t, uint(1), logs.rows[1].EntityID)
}
