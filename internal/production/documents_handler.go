package production

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bmr-backend/internal/bmr"
	"bmr-backend/internal/documents"
)

const (
	KindSheet          = "sheet"
	KindTransferSlip   = "transfer-slip"
	KindSamplingAdvice = "sampling-advice"
)

func renderer(d Deps, kind string, rec bmr.Record) (documents.RenderFunc, string, bool) {
	batch := strings.ReplaceAll(rec.BatchNo, "/", "-")
	switch kind {
	case KindSheet:
		return func(context.Context) (documents.Document, error) {
			return documents.RenderBMRSheet(rec), nil
		}, "BMR_" + batch + ".pdf", true
	case KindTransferSlip:
		return func(context.Context) (documents.Document, error) {
			return documents.RenderTransferSlip(rec, d.now()), nil
		}, "Material_Transfer_" + batch + ".pdf", true
	case KindSamplingAdvice:
		return func(context.Context) (documents.Document, error) {
			return documents.RenderSamplingAdvice(rec), nil
		}, "Sampling_Advice_" + batch + ".pdf", true
	}
	return nil, "", false
}

func generationError(err error) error {
	if errors.Is(err, documents.ErrBusy) {
		return fiber.NewError(fiber.StatusConflict, "PDF is already being generated")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate PDF: "+err.Error())
}

// GET /api/bmr/:id/documents/:kind
func DownloadDocumentHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		kind := c.Params("kind")
		rec, err := loadRecord(c, d, id)
		if err != nil {
			return err
		}
		render, filename, ok := renderer(d, kind, rec)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Unknown document "+kind)
		}

		out, err := d.Generator.Generate(c.UserContext(), fmt.Sprintf("bmr:%d:%s", id, kind), kind, render)
		if err != nil {
			return generationError(err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(out)
	}
}

// GET /api/bmr/:id/print/:kind
// Streams the PDF inline once it is fully generated, for the browser's print view.
func PrintDocumentHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		kind := c.Params("kind")
		rec, err := loadRecord(c, d, id)
		if err != nil {
			return err
		}
		render, filename, ok := renderer(d, kind, rec)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Unknown document "+kind)
		}

		key := fmt.Sprintf("bmr:%d:%s", id, kind)
		err = d.Generator.PrintWhenReady(c.UserContext(), key, kind, render, func(out []byte) error {
			c.Set(fiber.HeaderContentType, "application/pdf")
			c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
			return c.Send(out)
		})
		if err != nil {
			return generationError(err)
		}
		return nil
	}
}
