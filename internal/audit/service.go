// Package audit keeps the change history of records.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"bmr-backend/internal/auth"
	"bmr-backend/internal/models"
)

type Writer interface {
	CreateAuditLog(ctx context.Context, row *models.AuditLog) error
}

type LogOptions struct {
	UserID      *uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	After       any
}

// Trail writes audit logs. A nil *Trail records nothing.
type Trail struct {
	w      Writer
	logger *zap.Logger
}

func NewTrail(w Writer, logger *zap.Logger) *Trail {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trail{w: w, logger: logger}
}

func (t *Trail) WriteLog(ctx context.Context, opts LogOptions) error {
	after := datatypes.JSON("null")
	if opts.After != nil {
		b, err := json.Marshal(opts.After)
		if err != nil {
			return fmt.Errorf("encode audit data: %w", err)
		}
		after = b
	}
	row := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: truncate(opts.Description, 255),
		AfterData:   after,
	}
	if err := t.w.CreateAuditLog(ctx, &row); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Record writes a log for the request's user. A failed write is logged and
// never fails the change it describes.
func (t *Trail) Record(c *fiber.Ctx, opts LogOptions) {
	if t == nil {
		return
	}
	opts.UserID = auth.UserID(c)
	opts.UserName = auth.UserName(c)
	if err := t.WriteLog(c.UserContext(), opts); err != nil {
		t.logger.Warn("audit log not written",
			zap.String("entity_type", opts.EntityType),
			zap.Uint("entity_id", opts.EntityID),
			zap.Error(err),
		)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
