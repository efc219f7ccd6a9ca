package audit

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"bmr-backend/internal/models"
	"bmr-backend/internal/store"
)

type Reader interface {
	ListAuditLogs(ctx context.Context, q store.AuditQuery) (store.Page[models.AuditLog], error)
}

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      *uint              `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	AfterData   datatypes.JSON     `json:"after_data,omitempty"`
}

// GET /api/audit-logs?entity_type=bmr&entity_id=1&user_id=&page=&page_size=
func ListAuditLogsHandler(r Reader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := store.AuditQuery{
			EntityType: c.Query("entity_type"),
			Page:       c.QueryInt("page", 1),
			PageSize:   c.QueryInt("page_size", store.DefaultPageSize),
		}
		if id := c.QueryInt("entity_id", 0); id > 0 {
			q.EntityID = uint(id)
		}
		if id := c.QueryInt("user_id", 0); id > 0 {
			q.UserID = uint(id)
		}
		// the full snapshot is only sent when one entity is asked for
		withData := q.EntityType != "" && q.EntityID != 0

		page, err := r.ListAuditLogs(c.UserContext(), q)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch audit logs")
		}
		rows := make([]AuditLogResponse, len(page.Rows))
		for i, l := range page.Rows {
			rows[i] = AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format(time.RFC3339),
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
			}
			if withData {
				rows[i].AfterData = l.AfterData
			}
		}
		return c.JSON(store.Page[AuditLogResponse]{Rows: rows, Total: page.Total, Page: page.Page, PageSize: page.PageSize})
	}
}
