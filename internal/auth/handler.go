package auth

import (
	"context"
	"errors"
	"strings"

	"bmr-backend/internal/models"
	"bmr-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Users is the user storage the handlers need.
type Users interface {
	CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error)
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (models.User, error)
	GetUser(ctx context.Context, id uint) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type RegisterRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func userJSON(u models.User) fiber.Map {
	return fiber.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

func newUser(body RegisterRequest, role models.UserRole) (models.User, error) {
	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	body.Name = strings.TrimSpace(body.Name)
	if body.Email == "" || body.Password == "" || body.Name == "" {
		return models.User{}, fiber.NewError(fiber.StatusBadRequest, "Name, email and password are required")
	}
	if len(body.Password) < 8 {
		return models.User{}, fiber.NewError(fiber.StatusBadRequest, "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fiber.NewError(fiber.StatusInternalServerError, "Password could not be hashed")
	}
	return models.User{
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: string(hash),
		Role:         role,
	}, nil
}

// RegisterAdminHandler creates the first admin. It refuses once one exists.
func RegisterAdminHandler(users Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		count, err := users.CountUsersByRole(c.UserContext(), models.RoleAdmin)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Users could not be read")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "An admin already exists")
		}

		user, err := newUser(body, models.RoleAdmin)
		if err != nil {
			return err
		}
		if err := users.CreateUser(c.UserContext(), &user); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "User could not be created")
		}

		return c.Status(fiber.StatusCreated).JSON(userJSON(user))
	}
}

// CreateUserHandler lets an admin add staff or admin accounts.
func CreateUserHandler(users Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		role := body.Role
		if role == "" {
			role = models.RoleStaff
		}
		if role != models.RoleStaff && role != models.RoleAdmin {
			return fiber.NewError(fiber.StatusBadRequest, "Role must be admin or staff")
		}

		user, err := newUser(body, role)
		if err != nil {
			return err
		}
		if _, err := users.UserByEmail(c.UserContext(), user.Email); err == nil {
			return fiber.NewError(fiber.StatusConflict, "Email is already registered")
		}
		if err := users.CreateUser(c.UserContext(), &user); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "User could not be created")
		}

		return c.Status(fiber.StatusCreated).JSON(userJSON(user))
	}
}

func ListUsersHandler(users Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := users.ListUsers(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Users could not be read")
		}
		out := make([]fiber.Map, len(list))
		for i, u := range list {
			out[i] = userJSON(u)
		}
		return c.JSON(out)
	}
}

func LoginHandler(users Users, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		user, err := users.UserByEmail(c.UserContext(), body.Email)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Wrong email or password")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Wrong email or password")
		}

		token, err := GenerateToken(secret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token could not be created")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  userJSON(user),
		})
	}
}

func MeHandler(users Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := UserID(c)
		if id == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Not signed in")
		}
		user, err := users.GetUser(c.UserContext(), *id)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "User no longer exists")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "User could not be read")
		}
		return c.JSON(userJSON(user))
	}
}
