package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmr-backend/internal/models"
	"bmr-backend/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memUsers struct {
	mu    sync.Mutex
	users []models.User
}

func (m *memUsers) CountUsersByRole(_ context.Context, role models.UserRole) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = uint(len(m.users) + 1)
	m.users = append(m.users, *u)
	return nil
}

func (m *memUsers) UserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (m *memUsers) GetUser(_ context.Context, id uint) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (m *memUsers) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.User(nil), m.users...), nil
}

func newApp(users Users) *fiber.App {
	app := fiber.New()
	app.Post("/register-admin", RegisterAdminHandler(users))
	app.Post("/login", LoginHandler(users, testSecret))
	protected := app.Group("", JWTMiddleware(testSecret))
	protected.Get("/me", MeHandler(users))
	protected.Post("/users", RequireRole(models.RoleAdmin), CreateUserHandler(users))
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestRegisterLoginMe(t *testing.T) {
	users := &memUsers{}
	app := newApp(users)

	code, _ := call(t, app, "POST", "/register-admin", "", `{"name":"Asha","email":" Asha@Example.com ","password":"secret-pass"}`)
	require.Equal(t, fiber.StatusCreated, code)

	code, _ = call(t, app, "POST", "/register-admin", "", `{"name":"Bo","email":"bo@example.com","password":"secret-pass"}`)
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = call(t, app, "POST", "/login", "", `{"email":"asha@example.com","password":"wrong-pass"}`)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, body := call(t, app, "POST", "/login", "", `{"email":"asha@example.com","password":"secret-pass"}`)
	require.Equal(t, fiber.StatusOK, code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	code, body = call(t, app, "GET", "/me", token, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "asha@example.com", body["email"])
	assert.Equal(t, "admin", body["role"])

	code, _ = call(t, app, "POST", "/users", token, `{"name":"Sam","email":"sam@example.com","password":"secret-pass"}`)
	require.Equal(t, fiber.StatusCreated, code)
	code, _ = call(t, app, "POST", "/users", token, `{"name":"Sam","email":"sam@example.com","password":"secret-pass"}`)
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestStaffCannotCreateUsers(t *testing.T) {
	users := &memUsers{}
	app := newApp(users)
	staff := models.User{ID: 0, Name: "Sam", Email: "sam@example.com", Role: models.RoleStaff}
	require.NoError(t, users.CreateUser(context.Background(), &staff))
	token, err := GenerateToken(testSecret, &staff)
	require.NoError(t, err)

	code, _ := call(t, app, "POST", "/users", token, `{"name":"X","email":"x@example.com","password":"secret-pass"}`)
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	app := newApp(&memUsers{})
	code, _ := call(t, app, "GET", "/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = call(t, app, "GET", "/me", "not-a-token", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	other, err := GenerateToken(strings.Repeat("x", 32), &models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	code, _ = call(t, app, "GET", "/me", other, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
}
